package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/podscript/podscript-cli/internals/history"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List locally recorded transcriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(app.Config.Server.DataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "no transcriptions yet")
				return nil
			}
			for _, rec := range records {
				fmt.Fprintf(out, "%s  %s  %s  %s\n",
					rec.CreatedAt.Local().Format(time.DateTime),
					rec.TaskID, formatDuration(rec.Duration), rec.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum records to show")

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <task-id>",
		Short: "Remove a record from local history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(app.Config.Server.DataDir)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Delete(cmd.Context(), args[0])
		},
	})
	return cmd
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
