package conf

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	z "github.com/Oudwins/zog"
)

type Config struct {
	Version    string           `json:"-"`
	Server     ServerConfig     `json:"server"`
	Poll       PollConfig       `json:"poll"`
	Transcribe TranscribeConfig `json:"transcribe"`
}

type ServerConfig struct {
	BaseURL string `json:"base_url"`
	DataDir string `json:"data_dir"`
}

type PollConfig struct {
	IntervalMS int `json:"interval_ms"`
}

// PollIntervalDuration returns the configured poll cadence.
func (c *Config) PollIntervalDuration() time.Duration {
	return time.Duration(c.Poll.IntervalMS) * time.Millisecond
}

type TranscribeConfig struct {
	DefaultProvider string `json:"default_provider"`
	DefaultModel    string `json:"default_model"`
}

var serverSchema = z.Struct(z.Shape{
	"BaseURL": z.String().Default("http://localhost:8000").Trim(),
	"DataDir": z.String().Default("~/.podscript").Transform(expandPathTransform),
})

var pollSchema = z.Struct(z.Shape{
	"IntervalMS": z.Int().Default(1000).GT(0),
})

var transcribeSchema = z.Struct(z.Shape{
	"DefaultProvider": z.String().Default("whisper").Trim(),
	"DefaultModel":    z.String().Default("base").Trim(),
})

var ConfigSchema = z.Struct(z.Shape{
	"server":     serverSchema,
	"poll":       pollSchema,
	"transcribe": transcribeSchema,
})

var config *Config

func GetConfig() *Config {
	if config == nil {
		defaults := &Config{}
		if err := ConfigSchema.Parse(map[string]any{}, defaults); err != nil {
			log.Fatal("[podscript] Failed to parse config defaults", err)
		}
		defaults.Version = "0.1.0"

		configPath := filepath.Join(defaults.Server.DataDir, "podscript.json")
		data, err := os.ReadFile(configPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				config = defaults
				return config
			}
			log.Fatal("[podscript] Failed to read config file", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			config = defaults
			return config
		}

		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			log.Fatal("[podscript] Failed to parse config file", err)
		}
		parsed := &Config{}
		if err := ConfigSchema.Parse(payload, parsed); err != nil {
			log.Fatal("[podscript] Failed to parse config", err)
		}
		parsed.Version = defaults.Version
		config = parsed
	}

	return config
}

func expandPathTransform(ptr *string, c z.Ctx) error {
	expanded, err := expandPath(*ptr)
	*ptr = expanded
	return err
}

func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
	}
	return path, nil
}
