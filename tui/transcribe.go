// Package tui is the interactive terminal frontend. It drives the same
// orchestrator as the headless commands, one poll per timer message, so
// the single program loop never holds more than one request in flight.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/podscript/podscript-cli/internals/history"
	"github.com/podscript/podscript-cli/internals/orchestrator"
	"github.com/podscript/podscript-cli/internals/schemas"
	"github.com/podscript/podscript-cli/sdk"
)

// Options carries the collaborators the UI needs. Everything is
// constructed by the caller so the UI stays testable.
type Options struct {
	Client   *sdk.Client
	Logger   *slog.Logger
	History  *history.Store
	Interval time.Duration
	BaseURL  string
}

type step int

const (
	stepSelectSource step = iota
	stepEnterInput
	stepDownloading
	stepReady
	stepSelectModel
	stepTranscribing
	stepComplete
	stepError
)

type sourceKind int

const (
	sourceRemoteURL sourceKind = iota
	sourceLocalFile
	sourceAudioURL
	sourceTaskID
)

var sourceOptions = []struct {
	name string
	desc string
}{
	{"Podcast or video page URL", "Server downloads the audio first"},
	{"Local audio file", "Uploaded when transcription starts"},
	{"Direct audio URL", "Link straight to an audio file"},
	{"Existing task id", "Resume a task downloaded earlier"},
}

var modelOptions = []struct {
	name  string
	value string
	desc  string
}{
	{"base", "base", "Fast, good for clean speech"},
	{"small", "small", "Balanced"},
	{"medium", "medium", "Better accuracy, slower"},
	{"large-v3", "large-v3", "Best accuracy"},
}

const (
	segmentWindow = 12
	logWindow     = 5
)

type model struct {
	opts Options
	orch *orchestrator.Orchestrator

	step        step
	source      sourceKind
	sourceIndex int
	modelIndex  int

	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model

	taskID      string
	statusLabel string
	progressVal float64
	logs        []schemas.TaskLog
	segments    []schemas.Segment
	freshAt     time.Time

	results  *schemas.TaskResults
	errMsg   string
	errHint  string
	lastStep step

	width    int
	height   int
	quitting bool

	ctx    context.Context
	cancel context.CancelFunc
}

type downloadStartedMsg struct {
	task *schemas.Task
	err  error
}

type transcribeStartedMsg struct {
	task *schemas.Task
	err  error
}

type pollTickMsg time.Time

type pollResultMsg orchestrator.Tick

func newModel(opts Options) model {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
	)

	ctx, cancel := context.WithCancel(context.Background())

	orch := orchestrator.New(opts.Client, opts.Logger,
		orchestrator.WithRefreshHook(historyHook(opts)))

	return model{
		opts:      opts,
		orch:      orch,
		step:      stepSelectSource,
		textInput: ti,
		spinner:   s,
		progress:  p,
		width:     80,
		height:    24,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// historyHook records completed jobs so the history command and the UI
// agree on what happened.
func historyHook(opts Options) orchestrator.RefreshHook {
	return func(ctx context.Context, pub orchestrator.Published) {
		if opts.History == nil {
			return
		}
		rec := history.Record{
			TaskID:       pub.TaskID,
			Title:        pub.TaskID,
			SourceType:   "ui",
			SRTURL:       pub.Results.SRTURL,
			MarkdownURL:  pub.Results.MarkdownURL,
			SegmentCount: len(pub.Segments),
			CreatedAt:    time.Now(),
		}
		if n := len(pub.Segments); n > 0 {
			rec.Duration = pub.Segments[n-1].End
		}
		if err := opts.History.Record(ctx, rec); err != nil {
			opts.Logger.Warn("history record failed", "task", pub.TaskID, "err", err)
		}
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(m.width-10, 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		case "q":
			// Typing modes own the q key.
			if m.step != stepEnterInput {
				m.quitting = true
				m.cancel()
				return m, tea.Quit
			}
		case "esc":
			return m.goBack()
		}
		return m.handleStepInput(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case downloadStartedMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		m.taskID = msg.task.ID
		m.statusLabel = msg.task.Status.Label()
		m.progressVal = 0
		m.step = stepDownloading
		return m, m.scheduleTick()

	case transcribeStartedMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		if msg.task != nil {
			m.taskID = msg.task.ID
		}
		m.segments = nil
		m.step = stepTranscribing
		return m, m.scheduleTick()

	case pollTickMsg:
		return m, m.pollCmd()

	case pollResultMsg:
		return m.applyTick(orchestrator.Tick(msg))
	}

	if m.step == stepEnterInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) handleStepInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.step {
	case stepSelectSource:
		switch msg.String() {
		case "up", "k":
			if m.sourceIndex > 0 {
				m.sourceIndex--
			}
		case "down", "j":
			if m.sourceIndex < len(sourceOptions)-1 {
				m.sourceIndex++
			}
		case "enter":
			m.source = sourceKind(m.sourceIndex)
			m.step = stepEnterInput
			m.textInput.SetValue("")
			m.textInput.Placeholder = inputPlaceholder(m.source)
			m.textInput.Focus()
			return m, textinput.Blink
		}

	case stepEnterInput:
		if msg.String() != "enter" {
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			return m, cmd
		}
		value := strings.TrimSpace(m.textInput.Value())
		if value == "" {
			return m, nil
		}
		m.textInput.Blur()
		switch m.source {
		case sourceRemoteURL:
			return m, m.startDownloadCmd(value)
		case sourceLocalFile:
			m.orch.AttachFile(value)
			m.taskID = ""
			m.statusLabel = "File attached: " + filepath.Base(value)
			m.step = stepReady
		case sourceAudioURL:
			m.orch.Session().Reset()
			m.orch.SetAudioURL(value)
			m.taskID = ""
			m.statusLabel = "Direct audio URL set"
			m.step = stepReady
		case sourceTaskID:
			m.orch.AdoptTask(value)
			m.taskID = value
			m.statusLabel = "Resuming task " + value
			m.step = stepReady
		}

	case stepReady:
		switch msg.String() {
		case "enter", "t":
			m.step = stepSelectModel
		}

	case stepSelectModel:
		switch msg.String() {
		case "up", "k":
			if m.modelIndex > 0 {
				m.modelIndex--
			}
		case "down", "j":
			if m.modelIndex < len(modelOptions)-1 {
				m.modelIndex++
			}
		case "enter":
			return m, m.transcribeCmd()
		}

	case stepComplete:
		switch msg.String() {
		case "enter":
			return m, tea.Quit
		case "n":
			return m.restart()
		}

	case stepError:
		switch msg.String() {
		case "r", "enter":
			// Re-issue from where the user last stood.
			m.errMsg = ""
			m.errHint = ""
			m.step = m.lastStep
			if m.step == stepEnterInput {
				m.textInput.Focus()
				return m, textinput.Blink
			}
		}
	}

	return m, nil
}

func (m model) goBack() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepEnterInput:
		m.textInput.Blur()
		m.step = stepSelectSource
	case stepSelectModel:
		m.step = stepReady
	case stepError:
		m.errMsg = ""
		m.step = stepSelectSource
	}
	return m, nil
}

// restart keeps the program running but abandons the finished session.
// The reset bumps the session generation, so any response still in
// flight from the old loop is discarded on arrival.
func (m model) restart() (tea.Model, tea.Cmd) {
	m.orch.Session().Reset()
	m.orch.Stream().Reset()
	m.taskID = ""
	m.statusLabel = ""
	m.progressVal = 0
	m.logs = nil
	m.segments = nil
	m.results = nil
	m.errMsg = ""
	m.step = stepSelectSource
	m.sourceIndex = 0
	return m, nil
}

func (m model) fail(err error) model {
	m.lastStep = failReturnStep(m.step)
	m.errMsg = err.Error()
	switch {
	case sdk.IsUnauthenticated(err):
		m.errHint = "Run `podscript auth login` in a terminal, then retry."
	case sdk.IsInsufficientBalance(err):
		m.errHint = "Your credit balance is too low. Top up your account and retry."
	default:
		m.errHint = ""
	}
	m.step = stepError
	return m
}

func failReturnStep(cur step) step {
	switch cur {
	case stepSelectModel, stepTranscribing:
		return stepSelectModel
	case stepEnterInput, stepDownloading:
		return stepEnterInput
	default:
		return stepSelectSource
	}
}

func (m model) startDownloadCmd(url string) tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		task, err := orch.StartDownload(ctx, url)
		return downloadStartedMsg{task: task, err: err}
	}
}

func (m model) transcribeCmd() tea.Cmd {
	orch, ctx := m.orch, m.ctx
	opts := schemas.TranscribeOptions{
		Provider:  "whisper",
		ModelName: modelOptions[m.modelIndex].value,
	}
	return func() tea.Msg {
		task, _, err := orch.Transcribe(ctx, opts)
		return transcribeStartedMsg{task: task, err: err}
	}
}

func (m model) pollCmd() tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		return pollResultMsg(orch.Poll(ctx))
	}
}

func (m model) scheduleTick() tea.Cmd {
	interval := m.opts.Interval
	if interval <= 0 {
		interval = orchestrator.DefaultPollInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

func (m model) applyTick(tick orchestrator.Tick) (tea.Model, tea.Cmd) {
	if tick.Discarded {
		return m, nil
	}

	m.taskID = tick.TaskID
	if tick.Label != "" {
		m.statusLabel = tick.Label
	}
	m.progressVal = tick.Progress
	if len(tick.Logs) > 0 {
		m.logs = tick.Logs
	}
	if len(tick.NewSegments) > 0 {
		m.segments = append(m.segments, tick.NewSegments...)
		m.freshAt = time.Now()
	}

	if tick.PollError != "" {
		m.lastStep = failReturnStep(m.step)
		m.errMsg = tick.PollError
		m.errHint = ""
		m.step = stepError
		return m, nil
	}
	if tick.Failure != "" {
		m.lastStep = failReturnStep(m.step)
		m.errMsg = tick.Failure
		m.errHint = ""
		m.step = stepError
		return m, nil
	}

	if tick.Terminal {
		switch {
		case tick.Results != nil:
			m.results = tick.Results
			m.step = stepComplete
		case tick.Ready:
			m.statusLabel = "Download complete"
			m.step = stepReady
		}
		return m, nil
	}

	return m, tea.Batch(
		m.progress.SetPercent(tick.Progress),
		m.scheduleTick(),
	)
}

func (m model) View() string {
	if m.quitting {
		return labelStyle.Render("Bye.") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("podscript") + "\n")

	switch m.step {
	case stepSelectSource:
		b.WriteString(m.viewSelectSource())
	case stepEnterInput:
		b.WriteString(m.viewEnterInput())
	case stepDownloading:
		b.WriteString(m.viewDownloading())
	case stepReady:
		b.WriteString(m.viewReady())
	case stepSelectModel:
		b.WriteString(m.viewSelectModel())
	case stepTranscribing:
		b.WriteString(m.viewTranscribing())
	case stepComplete:
		b.WriteString(m.viewComplete())
	case stepError:
		b.WriteString(m.viewError())
	}

	b.WriteString(m.viewHelp())
	return b.String()
}

func (m model) viewSelectSource() string {
	var b strings.Builder
	b.WriteString("Where is the audio?\n\n")
	for i, opt := range sourceOptions {
		cursor := "  "
		style := segmentStyle
		if i == m.sourceIndex {
			cursor = "> "
			style = readyStyle
		}
		b.WriteString(style.Render(cursor+opt.name) +
			labelStyle.Render("  "+opt.desc) + "\n")
	}
	return b.String()
}

func (m model) viewEnterInput() string {
	label := map[sourceKind]string{
		sourceRemoteURL: "Page URL to download from:",
		sourceLocalFile: "Path to the audio file:",
		sourceAudioURL:  "Direct audio URL:",
		sourceTaskID:    "Task id:",
	}[m.source]
	return label + "\n\n" + m.textInput.View() + "\n"
}

func (m model) viewDownloading() string {
	var b strings.Builder
	b.WriteString(m.spinner.View() + " " +
		statusStyle.Render(m.statusLabel) +
		labelStyle.Render(fmt.Sprintf("  task %s", m.taskID)) + "\n\n")
	b.WriteString(m.progress.View() + "\n")
	b.WriteString(m.viewLogs())
	return b.String()
}

func (m model) viewReady() string {
	var b strings.Builder
	b.WriteString(readyStyle.Render("Ready to transcribe") + "\n")
	if m.statusLabel != "" {
		b.WriteString(labelStyle.Render(m.statusLabel) + "\n")
	}
	return b.String()
}

func (m model) viewSelectModel() string {
	var b strings.Builder
	b.WriteString("Transcription model:\n\n")
	for i, opt := range modelOptions {
		cursor := "  "
		style := segmentStyle
		if i == m.modelIndex {
			cursor = "> "
			style = readyStyle
		}
		b.WriteString(style.Render(cursor+opt.name) +
			labelStyle.Render("  "+opt.desc) + "\n")
	}
	return b.String()
}

func (m model) viewTranscribing() string {
	var b strings.Builder
	b.WriteString(m.spinner.View() + " " +
		statusStyle.Render(m.statusLabel) +
		labelStyle.Render(fmt.Sprintf("  %.0f%%", m.progressVal*100)) + "\n\n")
	b.WriteString(m.viewSegments())
	b.WriteString(m.viewLogs())
	return b.String()
}

func (m model) viewComplete() string {
	var b strings.Builder
	b.WriteString(readyStyle.Render("Transcription complete") +
		labelStyle.Render(fmt.Sprintf("  %d segments", len(m.segments))) + "\n\n")
	b.WriteString(m.viewSegments())
	if m.results != nil {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Subtitles: ") +
			linkStyle.Render(m.opts.BaseURL+m.results.SRTURL) + "\n")
		b.WriteString(labelStyle.Render("Markdown:  ") +
			linkStyle.Render(m.opts.BaseURL+m.results.MarkdownURL) + "\n")
	}
	return b.String()
}

func (m model) viewError() string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("Error: "+m.errMsg) + "\n")
	if m.errHint != "" {
		b.WriteString(labelStyle.Render(m.errHint) + "\n")
	}
	return b.String()
}

// viewSegments renders the tail of the transcript. The newest batch
// keeps its emphasis for a couple of poll intervals, then blends in on
// the next repaint.
func (m model) viewSegments() string {
	if len(m.segments) == 0 {
		return ""
	}
	start := 0
	if len(m.segments) > segmentWindow {
		start = len(m.segments) - segmentWindow
	}
	freshWindow := 2 * m.opts.Interval
	if freshWindow <= 0 {
		freshWindow = 2 * orchestrator.DefaultPollInterval
	}
	fresh := time.Since(m.freshAt) < freshWindow

	var b strings.Builder
	for i, seg := range m.segments[start:] {
		style := segmentStyle
		if fresh && start+i == len(m.segments)-1 {
			style = freshSegmentStyle
		}
		line := seg.Text
		if seg.Speaker != "" {
			line = speakerStyle.Render(seg.Speaker+": ") + style.Render(seg.Text)
		} else {
			line = style.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m model) viewLogs() string {
	if len(m.logs) == 0 {
		return ""
	}
	start := 0
	if len(m.logs) > logWindow {
		start = len(m.logs) - logWindow
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, l := range m.logs[start:] {
		style := logInfoStyle
		switch strings.ToLower(l.Level) {
		case "warning", "warn":
			style = logWarnStyle
		case "error":
			style = logErrorStyle
		}
		b.WriteString(style.Render(l.Message) + "\n")
	}
	return b.String()
}

func (m model) viewHelp() string {
	var keys string
	switch m.step {
	case stepSelectSource:
		keys = "j/k navigate | enter select | q quit"
	case stepEnterInput:
		keys = "enter confirm | esc back"
	case stepReady:
		keys = "enter transcribe | q quit"
	case stepSelectModel:
		keys = "j/k navigate | enter start | esc back"
	case stepDownloading, stepTranscribing:
		keys = "q quit"
	case stepComplete:
		keys = "n new transcription | enter quit"
	case stepError:
		keys = "r retry | esc start over | q quit"
	}
	return helpStyle.Render(keys)
}

func inputPlaceholder(source sourceKind) string {
	switch source {
	case sourceRemoteURL:
		return "https://example.com/podcast/episode-42"
	case sourceLocalFile:
		return "~/Downloads/episode.mp3"
	case sourceAudioURL:
		return "https://cdn.example.com/audio/episode.mp3"
	case sourceTaskID:
		return "task id from a previous download"
	}
	return ""
}

// Run starts the interactive program and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(newModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
