// Package cli wires the podscript commands. Every command talks to the
// backend through the sdk client; the orchestrator owns the task
// lifecycle and the local history store plays the history collaborator.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/podscript/podscript-cli/internals/auth"
	"github.com/podscript/podscript-cli/internals/conf"
	"github.com/podscript/podscript-cli/internals/env"
	"github.com/podscript/podscript-cli/internals/logging"
	"github.com/podscript/podscript-cli/sdk"
)

type App struct {
	Config  *conf.Config
	Client  *sdk.Client
	Logger  *slog.Logger
	logFile *os.File

	baseURL string
	dataDir string
	verbose bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:           "podscript",
		Short:         "Transcribe podcasts and videos through the podscript service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logFile != nil {
				app.logFile.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&app.baseURL, "base-url", "", "backend base URL (overrides config)")
	root.PersistentFlags().StringVar(&app.dataDir, "data-dir", "", "data directory (overrides config)")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newDownloadCmd(app),
		newTranscribeCmd(app),
		newStatusCmd(app),
		newHistoryCmd(app),
		newExportCmd(app),
		newBalanceCmd(app),
		newAuthCmd(app),
		newUICmd(app),
		newStubCmd(app),
	)
	return root
}

func (a *App) init() error {
	a.Config = conf.GetConfig()
	envs := env.Get()

	if a.dataDir != "" {
		a.Config.Server.DataDir = a.dataDir
	}
	if a.baseURL == "" {
		a.baseURL = envs.BASE_URL
	}
	if a.baseURL == "" {
		a.baseURL = a.Config.Server.BaseURL
	}

	level := logging.ParseLevel(envs.LOG_LEVEL)
	if a.verbose {
		level = slog.LevelDebug
	}
	a.Logger, a.logFile = logging.InitLogger(a.Config.Server.DataDir, level)

	token := envs.TOKEN
	if token == "" {
		token = auth.LoadToken(a.Config.Server.DataDir)
	}
	a.Client = sdk.NewClient(a.baseURL, sdk.WithToken(token))
	return nil
}

// withAuthRetry runs fn; on a 401 it runs the interactive login form
// once and retries. The action the user asked for is resumed instead of
// being lost to the login round trip.
func (a *App) withAuthRetry(cmd *cobra.Command, fn func() error) error {
	err := fn()
	if !sdk.IsUnauthenticated(err) {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Authentication required.")
	if loginErr := auth.RunLoginForm(cmd.Context(), a.Client, a.Config.Server.DataDir, false); loginErr != nil {
		return loginErr
	}
	return fn()
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if sdk.IsInsufficientBalance(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			fmt.Fprintln(os.Stderr, "Your credit balance is too low. Top up your account and retry.")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
