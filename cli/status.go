package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id>",
		Short: "Show the current snapshot of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAuthRetry(cmd, func() error {
				task, err := app.Client.GetTask(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "task: %s\nstatus: %s\nprogress: %d%%\n",
					task.ID, task.Status.Label(), int(task.Progress*100))
				if task.Error != nil && task.Error.Message != "" {
					fmt.Fprintf(out, "error: %s\n", task.Error.Message)
				}
				if n := len(task.PartialSegments); n > 0 {
					fmt.Fprintf(out, "segments so far: %d\n", n)
				}
				for _, line := range app.Client.GetLogs(cmd.Context(), args[0]) {
					fmt.Fprintf(out, "[%s] %s: %s\n", line.Time, line.Level, line.Message)
				}
				return nil
			})
		},
	}
}

func newBalanceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show your credit balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAuthRetry(cmd, func() error {
				balance, err := app.Client.Balance(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "balance: %d credits\n", balance)
				return nil
			})
		},
	}
}
