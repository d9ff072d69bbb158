package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/podscript/podscript-cli/internals/history"
	"github.com/podscript/podscript-cli/internals/orchestrator"
	"github.com/podscript/podscript-cli/internals/schemas"
)

func newDownloadCmd(app *App) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "download <source-url>",
		Short: "Download audio from a page or video URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := orchestrator.New(app.Client, app.Logger)

			return app.withAuthRetry(cmd, func() error {
				task, err := orch.StartDownload(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "task: %s\nstatus: %s\n", task.ID, task.Status.Label())

				final := runPollLoop(cmd.Context(), cmd, orch, interval)
				if final.PollError != "" {
					return fmt.Errorf("%s", final.PollError)
				}
				if final.Failure != "" {
					return fmt.Errorf("%s", final.Failure)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ready to transcribe: podscript transcribe --task %s\n", task.ID)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", orchestrator.DefaultPollInterval, "poll interval")
	return cmd
}

func newTranscribeCmd(app *App) *cobra.Command {
	var (
		filePath string
		audioURL string
		taskID   string
		provider string
		model    string
		prompt   string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "transcribe [source-url]",
		Short: "Transcribe a remote source, local file or direct audio URL",
		Long: `Transcribe media through the podscript service.

Exactly one input is used, in this order of precedence: an existing
acquisition task (--task), a local file (--file), a direct audio URL
(--audio-url). A positional source URL downloads the audio first and
then transcribes it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := schemas.TranscribeOptions{Provider: provider, ModelName: model, Prompt: prompt}
			if issues := schemas.TranscribeOptionsSchema.Validate(&opts); len(issues) > 0 {
				return fmt.Errorf("invalid transcription options")
			}

			store, err := history.Open(app.Config.Server.DataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			source := historySource(args, filePath, audioURL, taskID)
			orch := orchestrator.New(app.Client, app.Logger,
				orchestrator.WithRefreshHook(historyHook(store, source, app.Logger)))

			switch {
			case taskID != "":
				orch.AdoptTask(taskID)
			case filePath != "":
				orch.AttachFile(filePath)
			case audioURL != "":
				orch.SetAudioURL(audioURL)
			}

			return app.withAuthRetry(cmd, func() error {
				// A positional URL means download first, transcribe after.
				if len(args) == 1 {
					task, err := orch.StartDownload(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "task: %s\n", task.ID)
					final := runPollLoop(cmd.Context(), cmd, orch, interval)
					if final.PollError != "" {
						return fmt.Errorf("%s", final.PollError)
					}
					if final.Failure != "" {
						return fmt.Errorf("%s", final.Failure)
					}
				}

				task, mode, err := orch.Transcribe(cmd.Context(), opts)
				if err != nil {
					return err
				}
				app.Logger.Debug("transcription requested", "task", task.ID, "mode", mode.String())

				final := runPollLoop(cmd.Context(), cmd, orch, interval)
				if final.PollError != "" {
					return fmt.Errorf("%s", final.PollError)
				}
				if final.Failure != "" {
					return fmt.Errorf("%s", final.Failure)
				}
				if final.Results != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "\nsrt:      %s%s\nmarkdown: %s%s\n",
						app.baseURL, final.Results.SRTURL, app.baseURL, final.Results.MarkdownURL)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "local media file to upload")
	cmd.Flags().StringVar(&audioURL, "audio-url", "", "direct audio URL (skips acquisition)")
	cmd.Flags().StringVar(&taskID, "task", "", "existing acquisition task id")
	cmd.Flags().StringVar(&provider, "provider", "whisper", "ASR provider")
	cmd.Flags().StringVar(&model, "model", "", "provider model name")
	cmd.Flags().StringVar(&prompt, "prompt", "", "custom transcription prompt")
	cmd.Flags().DurationVar(&interval, "interval", orchestrator.DefaultPollInterval, "poll interval")
	return cmd
}

// runPollLoop drives the orchestrator on a fixed cadence and renders
// each tick, returning the terminal tick. The runner guarantees the
// previous loop's timer is gone before the next starts.
func runPollLoop(ctx context.Context, cmd *cobra.Command, orch *orchestrator.Orchestrator, interval time.Duration) orchestrator.Tick {
	out := cmd.OutOrStdout()
	runner := orchestrator.NewRunner(interval)

	var final orchestrator.Tick
	lastLabel := ""
	shownLogs := 0
	runner.Start(ctx, func(tickCtx context.Context) bool {
		tick := orch.Poll(tickCtx)
		if tick.Discarded {
			return false
		}

		if tick.PollError == "" && (tick.Label != lastLabel || tick.Terminal) {
			fmt.Fprintf(out, "%s (%d%%)\n", tick.Label, int(tick.Progress*100))
			lastLabel = tick.Label
		}
		// Logs accumulate server side, so only the unseen suffix is
		// printed, the same way segments are.
		if n := len(tick.Logs); n > shownLogs {
			for _, line := range tick.Logs[shownLogs:] {
				fmt.Fprintf(out, "  [%s] %s\n", line.Level, line.Message)
			}
			shownLogs = n
		}
		for _, seg := range tick.NewSegments {
			fmt.Fprintf(out, "  %s\n", seg.Text)
		}

		if tick.Terminal {
			final = tick
			return false
		}
		return true
	})
	runner.Wait()
	return final
}

func historySource(args []string, filePath, audioURL, taskID string) string {
	switch {
	case len(args) == 1:
		return args[0]
	case taskID != "":
		return "task:" + taskID
	case filePath != "":
		return filePath
	default:
		return audioURL
	}
}

// historyHook records completed jobs in the local history store. The
// orchestrator only knows it as an opaque refresh signal.
func historyHook(store *history.Store, source string, logger *slog.Logger) orchestrator.RefreshHook {
	return func(ctx context.Context, pub orchestrator.Published) {
		rec := history.Record{
			TaskID:       pub.TaskID,
			Title:        source,
			SourceType:   "cli",
			SRTURL:       pub.Results.SRTURL,
			MarkdownURL:  pub.Results.MarkdownURL,
			SegmentCount: len(pub.Segments),
		}
		if n := len(pub.Segments); n > 0 {
			rec.Duration = pub.Segments[n-1].End
		}
		if err := store.Record(ctx, rec); err != nil {
			logger.Warn("failed to record history", "task", pub.TaskID, "err", err)
		}
	}
}
