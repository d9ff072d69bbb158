package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podscript/podscript-cli/internals/transcript"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		format string
		output string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "export <task-id>",
		Short: "Export a completed transcript as SRT or markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withAuthRetry(cmd, func() error {
				full, err := app.Client.GetTranscript(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(full.Segments) == 0 {
					return fmt.Errorf("task %s has no transcript segments", args[0])
				}

				var rendered string
				switch format {
				case "srt":
					rendered = transcript.FormatSRT(full.Segments)
				case "md", "markdown":
					rendered = transcript.FormatMarkdown(title, full.Segments)
				default:
					return fmt.Errorf("unknown format %q (want srt or md)", format)
				}

				if output == "" || output == "-" {
					fmt.Fprint(cmd.OutOrStdout(), rendered)
					return nil
				}
				return os.WriteFile(output, []byte(rendered), 0o644)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "srt", "output format: srt or md")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&title, "title", "", "markdown document title")
	return cmd
}
