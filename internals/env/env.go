package env

import (
	"log"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zenv"
	"github.com/joho/godotenv"
)

type EnvStruct struct {
	HOME      string `zog:"HOME"`
	BASE_URL  string `zog:"PODSCRIPT_BASE_URL"`
	TOKEN     string `zog:"PODSCRIPT_TOKEN"`
	LOG_LEVEL string `zog:"PODSCRIPT_LOG_LEVEL"`
}

var env *EnvStruct

var EnvSchema = z.Struct(z.Shape{
	"HOME":      z.String(),
	"BASE_URL":  z.String().Optional(),
	"TOKEN":     z.String().Optional(),
	"LOG_LEVEL": z.String().Default("info"),
})

func Get() *EnvStruct {
	if env == nil {
		// Best effort: a missing .env is not an error.
		_ = godotenv.Load()

		env = &EnvStruct{}
		errs := EnvSchema.Parse(zenv.NewDataProvider(), env)
		if errs != nil {
			log.Fatal("[podscript] Failed to parse environment variables", errs)
		}
	}
	return env
}
