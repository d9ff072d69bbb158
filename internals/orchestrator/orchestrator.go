// Package orchestrator drives a server executed transcription job to
// completion by repeated polling: it reconciles the three creation
// paths into one progress pipeline, advances the session from each
// snapshot and stops each phase loop exactly once a terminal status is
// observed.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	z "github.com/Oudwins/zog"

	"github.com/podscript/podscript-cli/internals/inputmode"
	"github.com/podscript/podscript-cli/internals/schemas"
	"github.com/podscript/podscript-cli/internals/transcript"
	"github.com/podscript/podscript-cli/sdk"
)

// ErrNoInput means no creation path is eligible for the requested
// action.
var ErrNoInput = errors.New("no source url, file or audio url provided")

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAcquisition
	PhaseTranscription
)

// Tick is the projection of one poll into the UI. Every field is
// populated unconditionally from the snapshot; Terminal tells the
// driving loop to stop.
type Tick struct {
	// Discarded is set when the response belongs to a session that was
	// reset while the request was in flight. The caller must ignore
	// everything else in the tick.
	Discarded bool

	TaskID      string
	Status      schemas.TaskStatus
	Label       string
	Progress    float64
	Logs        []schemas.TaskLog
	NewSegments []schemas.Segment

	Terminal bool
	Ready    bool
	// Failure carries the server reported job failure message.
	Failure string
	// PollError carries the local-only transport failure message. It is
	// never interpreted as job failure and the loop is not retried.
	PollError string
	Results   *schemas.TaskResults
}

// Published describes a completed job handed to the refresh hook.
type Published struct {
	TaskID   string
	Results  schemas.TaskResults
	Segments []schemas.Segment
}

// RefreshHook lets a collaborator (the history list) react to a newly
// completed job without the orchestrator knowing its implementation.
type RefreshHook func(ctx context.Context, pub Published)

type Orchestrator struct {
	client  *sdk.Client
	session *Session
	stream  *transcript.Stream
	phase   Phase
	logger  *slog.Logger
	refresh RefreshHook
}

type Option func(*Orchestrator)

func WithRefreshHook(hook RefreshHook) Option {
	return func(o *Orchestrator) {
		o.refresh = hook
	}
}

func New(client *sdk.Client, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:  client,
		session: NewSession(),
		stream:  transcript.NewStream(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Session() *Session { return o.session }

func (o *Orchestrator) Stream() *transcript.Stream { return o.stream }

func (o *Orchestrator) Phase() Phase { return o.phase }

// StartDownload begins acquisition of a remote source URL. The session
// is reset first, so any previous loop's responses become stale.
func (o *Orchestrator) StartDownload(ctx context.Context, sourceURL string) (*schemas.Task, error) {
	o.session.Reset()
	o.session.SetSourceURL(sourceURL)
	o.phase = PhaseIdle

	if inputmode.ResolveDownload(o.session.Inputs()) == inputmode.ModeNone {
		return nil, ErrNoInput
	}

	req := schemas.TaskCreateRequest{SourceURL: sourceURL}
	if issues := schemas.TaskCreateSchema.Validate(&req); len(issues) > 0 {
		return nil, fmt.Errorf("invalid source url:\n%s", z.Issues.Prettify(issues))
	}

	task, err := o.client.CreateTask(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	o.session.currentTaskID = task.ID
	o.phase = PhaseAcquisition
	o.logger.Info("acquisition started", "task", task.ID, "status", task.Status)
	return task, nil
}

// AdoptTask resumes from an acquisition task created earlier, e.g. one
// whose id the user saved from a previous download run.
func (o *Orchestrator) AdoptTask(taskID string) {
	o.session.Reset()
	o.session.currentTaskID = taskID
	o.session.ready = true
	o.phase = PhaseIdle
}

// AttachFile arms a local file for deferred upload.
func (o *Orchestrator) AttachFile(path string) {
	o.session.AttachFile(path)
	o.phase = PhaseIdle
}

// SetAudioURL records the direct audio URL field.
func (o *Orchestrator) SetAudioURL(url string) {
	o.session.SetAudioURL(url)
}

// Transcribe resolves the creation path and starts the transcription
// phase. A pending file is uploaded now, as the first step, and must
// yield a task id before transcription is requested. Errors abort the
// attempt without touching the task id beyond what already happened.
func (o *Orchestrator) Transcribe(ctx context.Context, opts schemas.TranscribeOptions) (*schemas.Task, inputmode.Mode, error) {
	mode := inputmode.ResolveTranscribe(o.session.Inputs())
	if mode == inputmode.ModeNone {
		return nil, mode, ErrNoInput
	}

	o.stream.Reset()

	var task *schemas.Task
	var err error
	switch mode {
	case inputmode.ModeExistingTask:
		task, err = o.client.StartTranscription(ctx, o.session.currentTaskID, opts)
	case inputmode.ModePendingFile:
		var uploaded *schemas.Task
		uploaded, err = o.client.UploadTask(ctx, o.session.pendingFile)
		if err != nil {
			return nil, mode, fmt.Errorf("upload: %w", err)
		}
		o.session.currentTaskID = uploaded.ID
		o.session.pendingFile = ""
		task, err = o.client.StartTranscription(ctx, uploaded.ID, opts)
	case inputmode.ModeDirectURL:
		req := schemas.TranscribeURLRequest{
			AudioURL:  o.session.audioURL,
			Provider:  opts.Provider,
			ModelName: opts.ModelName,
			Prompt:    opts.Prompt,
		}
		if issues := schemas.TranscribeURLSchema.Validate(&req); len(issues) > 0 {
			return nil, mode, fmt.Errorf("invalid audio url request:\n%s", z.Issues.Prettify(issues))
		}
		task, err = o.client.CreateFromAudioURL(ctx, req)
		if err == nil {
			o.session.currentTaskID = task.ID
		}
	}
	if err != nil {
		return nil, mode, err
	}

	o.phase = PhaseTranscription
	o.session.ready = false
	o.logger.Info("transcription started", "task", o.session.currentTaskID, "mode", mode.String())
	return task, mode, nil
}

// Poll fetches the task snapshot and the log tail once and advances the
// session. Poll failures are reported inside the tick, never raised: a
// transport failure stops the loop with a generic message and the user
// must re-issue the action.
func (o *Orchestrator) Poll(ctx context.Context) Tick {
	issued := o.session.tag()
	if issued.taskID == "" {
		return Tick{Discarded: true}
	}

	task, err := o.client.GetTask(ctx, issued.taskID)

	// The session may have been reset while the request was in flight.
	// A mismatched response is discarded rather than applied to whatever
	// task is active now.
	if !o.session.matches(issued) {
		return Tick{Discarded: true}
	}

	if err != nil {
		o.logger.Warn("poll failed", "task", issued.taskID, "err", err)
		return Tick{
			TaskID:    issued.taskID,
			Terminal:  true,
			Ready:     o.session.ready,
			PollError: sdk.FallbackPollFailed,
		}
	}

	logs := o.client.GetLogs(ctx, issued.taskID)
	if !o.session.matches(issued) {
		return Tick{Discarded: true}
	}

	tick := Tick{
		TaskID:   task.ID,
		Status:   task.Status,
		Label:    task.Status.Label(),
		Progress: task.Progress,
		Logs:     logs,
	}

	switch o.phase {
	case PhaseAcquisition:
		o.advanceAcquisition(task, &tick)
	case PhaseTranscription:
		o.advanceTranscription(ctx, task, &tick)
	}

	tick.Ready = o.session.ready
	return tick
}

func (o *Orchestrator) advanceAcquisition(task *schemas.Task, tick *Tick) {
	switch {
	case task.Status.AcquisitionDone():
		tick.Terminal = true
		o.session.ready = true
		o.phase = PhaseIdle
		o.logger.Info("acquisition done", "task", task.ID)
	case task.Status.Failed():
		tick.Terminal = true
		tick.Failure = task.ErrorMessage("download failed")
		o.session.ready = false
		o.phase = PhaseIdle
	}
}

func (o *Orchestrator) advanceTranscription(ctx context.Context, task *schemas.Task, tick *Tick) {
	tick.NewSegments = o.stream.Advance(task.PartialSegments)

	switch {
	case task.Status.TranscriptionDone():
		tick.Terminal = true
		o.session.ready = false
		o.phase = PhaseIdle

		// If the final snapshot carried no partial segments, fall back
		// to one full transcript fetch before giving up on rendering.
		if o.stream.Displayed() == 0 {
			if full, err := o.client.GetTranscript(ctx, task.ID); err == nil {
				tick.NewSegments = o.stream.Advance(full.Segments)
			} else {
				o.logger.Warn("transcript fallback failed", "task", task.ID, "err", err)
			}
		}

		tick.Results = o.publish(ctx, task.ID)
	case task.Status.Failed():
		tick.Terminal = true
		tick.Failure = task.ErrorMessage("transcription failed")
		o.session.ready = false
		o.phase = PhaseIdle
	}
}

// publish derives the artifact links purely from the task id, no extra
// round trip, and signals the refresh hook.
func (o *Orchestrator) publish(ctx context.Context, taskID string) *schemas.TaskResults {
	results := ResultLinks(taskID)
	if o.refresh != nil {
		o.refresh(ctx, Published{
			TaskID:   taskID,
			Results:  *results,
			Segments: o.stream.Segments(),
		})
	}
	o.logger.Info("transcription completed", "task", taskID, "segments", o.stream.Displayed())
	return results
}

// ResultLinks returns the stable artifact links for a completed task.
func ResultLinks(taskID string) *schemas.TaskResults {
	return &schemas.TaskResults{
		SRTURL:      "/artifacts/" + taskID + "/result.srt",
		MarkdownURL: "/artifacts/" + taskID + "/result.md",
	}
}
