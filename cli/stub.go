package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/podscript/podscript-cli/internals/schemas"
	"github.com/podscript/podscript-cli/internals/stubserver"
)

// newStubCmd runs a local fake backend. Development only: it lets the
// TUI and CLI be exercised without a real podscript deployment.
func newStubCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:    "stub",
		Short:  "Run a local stub backend (development)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := stubserver.New(app.Logger)
			server.DownloadScript = []schemas.Task{
				{Status: schemas.TaskStatusDownloading, Progress: 0.3},
				{Status: schemas.TaskStatusDownloading, Progress: 0.7},
				{Status: schemas.TaskStatusDownloaded, Progress: 1.0},
			}
			server.TranscribeScript = []schemas.Task{
				{Status: schemas.TaskStatusTranscribing, Progress: 0.2, PartialSegments: []schemas.Segment{
					{Start: 0, End: 4.2, Text: "Welcome back to the show."},
				}},
				{Status: schemas.TaskStatusTranscribing, Progress: 0.6, PartialSegments: []schemas.Segment{
					{Start: 0, End: 4.2, Text: "Welcome back to the show."},
					{Start: 4.2, End: 9.8, Speaker: "S1", Text: "Today we talk about shipping software."},
				}},
				{Status: schemas.TaskStatusFormatting, Progress: 0.9, PartialSegments: []schemas.Segment{
					{Start: 0, End: 4.2, Text: "Welcome back to the show."},
					{Start: 4.2, End: 9.8, Speaker: "S1", Text: "Today we talk about shipping software."},
				}},
				{Status: schemas.TaskStatusCompleted, Progress: 1.0, PartialSegments: []schemas.Segment{
					{Start: 0, End: 4.2, Text: "Welcome back to the show."},
					{Start: 4.2, End: 9.8, Speaker: "S1", Text: "Today we talk about shipping software."},
					{Start: 9.8, End: 14.0, Speaker: "S2", Text: "And how not to."},
				}},
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stub backend listening on %s\n", addr)
			return http.ListenAndServe(addr, server.Router())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8000", "listen address")
	return cmd
}
