package cli

import (
	"github.com/spf13/cobra"

	"github.com/podscript/podscript-cli/internals/history"
	"github.com/podscript/podscript-cli/tui"
)

func newUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Interactive transcription UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(app.Config.Server.DataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			return tui.Run(tui.Options{
				Client:   app.Client,
				Logger:   app.Logger,
				History:  store,
				Interval: app.Config.PollIntervalDuration(),
				BaseURL:  app.baseURL,
			})
		},
	}
}
