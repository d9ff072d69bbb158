// Package auth persists the access token between invocations and runs
// the interactive login form. Identity itself lives on the server; this
// package only stores the token and reacts to 401s.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	z "github.com/Oudwins/zog"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"

	"github.com/podscript/podscript-cli/internals/schemas"
	"github.com/podscript/podscript-cli/sdk"
)

const credentialsFile = "credentials.json"

type credentials struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email,omitempty"`
}

// LoadToken returns the stored token, or empty when none is saved.
func LoadToken(dataDir string) string {
	data, err := os.ReadFile(filepath.Join(dataDir, credentialsFile))
	if err != nil {
		return ""
	}
	var creds credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return ""
	}
	return creds.AccessToken
}

// SaveToken persists the token with owner-only permissions.
func SaveToken(dataDir, email, token string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(credentials{AccessToken: token, Email: email})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dataDir, credentialsFile), data, 0o600)
}

// ClearToken removes the stored token.
func ClearToken(dataDir string) error {
	err := os.Remove(filepath.Join(dataDir, credentialsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// RunLoginForm prompts for credentials, exchanges them for a token and
// persists it. When register is true a new account is created instead.
func RunLoginForm(ctx context.Context, client *sdk.Client, dataDir string, register bool) error {
	var email, password string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	req := schemas.LoginRequest{Email: email, Password: password}
	if issues := schemas.LoginSchema.Validate(&req); len(issues) > 0 {
		return fmt.Errorf("invalid credentials:\n%s", z.Issues.Prettify(issues))
	}

	var resp *schemas.LoginResponse
	var callErr error
	action := func() {
		if register {
			resp, callErr = client.Register(ctx, req)
		} else {
			resp, callErr = client.Login(ctx, req)
		}
	}
	if err := spinner.New().Title("Signing in...").Action(action).Run(); err != nil {
		return err
	}
	if callErr != nil {
		return callErr
	}

	return SaveToken(dataDir, email, resp.AccessToken)
}
