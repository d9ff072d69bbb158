package tui

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/podscript/podscript-cli/internals/orchestrator"
	"github.com/podscript/podscript-cli/internals/schemas"
)

func newTestModel() model {
	return newModel(Options{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Interval: 10 * time.Millisecond,
		BaseURL:  "http://localhost:8000",
	})
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialStep(t *testing.T) {
	m := newTestModel()
	if m.step != stepSelectSource {
		t.Fatalf("expected source selection first, got %v", m.step)
	}
	if m.Init() == nil {
		t.Fatalf("expected a spinner command from Init")
	}
}

func TestSourceMenuNavigation(t *testing.T) {
	m := newTestModel()

	next, _ := m.Update(keyMsg("j"))
	m = next.(model)
	if m.sourceIndex != 1 {
		t.Fatalf("expected index 1 after j, got %d", m.sourceIndex)
	}

	next, _ = m.Update(keyMsg("k"))
	m = next.(model)
	if m.sourceIndex != 0 {
		t.Fatalf("expected index 0 after k, got %d", m.sourceIndex)
	}

	next, _ = m.Update(keyMsg("k"))
	m = next.(model)
	if m.sourceIndex != 0 {
		t.Fatalf("index must not go negative")
	}
}

func TestEnterMovesToInput(t *testing.T) {
	m := newTestModel()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)

	if m.step != stepEnterInput {
		t.Fatalf("expected input step, got %v", m.step)
	}
	if m.source != sourceRemoteURL {
		t.Fatalf("expected remote url source, got %v", m.source)
	}
	if m.textInput.Placeholder == "" {
		t.Fatalf("expected a placeholder for the selected source")
	}
}

func TestLocalFileArmsDeferredUpload(t *testing.T) {
	m := newTestModel()
	m.step = stepEnterInput
	m.source = sourceLocalFile
	m.textInput.SetValue("/tmp/episode.mp3")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)

	if m.step != stepReady {
		t.Fatalf("selecting a file must not upload, only arm: got step %v", m.step)
	}
	if m.orch.Session().PendingFile() != "/tmp/episode.mp3" {
		t.Fatalf("pending file not armed")
	}
}

func TestApplyTickAppendsSegments(t *testing.T) {
	m := newTestModel()
	m.step = stepTranscribing

	next, cmd := m.applyTick(orchestrator.Tick{
		TaskID:   "t1",
		Status:   schemas.TaskStatusTranscribing,
		Label:    "Transcribing...",
		Progress: 0.5,
		NewSegments: []schemas.Segment{
			{Start: 0, End: 2, Text: "hello"},
		},
	})
	m = next.(model)

	if len(m.segments) != 1 || m.segments[0].Text != "hello" {
		t.Fatalf("segments not appended: %+v", m.segments)
	}
	if m.statusLabel != "Transcribing..." {
		t.Fatalf("label not applied: %q", m.statusLabel)
	}
	if cmd == nil {
		t.Fatalf("non terminal tick must schedule the next poll")
	}
}

func TestApplyTickDiscardedIsIgnored(t *testing.T) {
	m := newTestModel()
	m.step = stepTranscribing
	m.statusLabel = "before"

	next, cmd := m.applyTick(orchestrator.Tick{Discarded: true, Label: "after"})
	m = next.(model)

	if m.statusLabel != "before" {
		t.Fatalf("discarded tick mutated state")
	}
	if cmd != nil {
		t.Fatalf("discarded tick must not reschedule")
	}
}

func TestApplyTickFailure(t *testing.T) {
	m := newTestModel()
	m.step = stepTranscribing

	next, cmd := m.applyTick(orchestrator.Tick{
		TaskID:   "t1",
		Terminal: true,
		Failure:  "transcription failed",
	})
	m = next.(model)

	if m.step != stepError {
		t.Fatalf("failure must land on the error step, got %v", m.step)
	}
	if m.errMsg != "transcription failed" {
		t.Fatalf("unexpected error message %q", m.errMsg)
	}
	if cmd != nil {
		t.Fatalf("terminal tick must stop the loop")
	}
}

func TestApplyTickPollError(t *testing.T) {
	m := newTestModel()
	m.step = stepDownloading

	next, _ := m.applyTick(orchestrator.Tick{
		TaskID:    "t1",
		Terminal:  true,
		PollError: "status check failed",
	})
	m = next.(model)

	if m.step != stepError || m.errMsg != "status check failed" {
		t.Fatalf("poll failure not surfaced: step %v, msg %q", m.step, m.errMsg)
	}
}

func TestApplyTickDownloadedMovesToReady(t *testing.T) {
	m := newTestModel()
	m.step = stepDownloading

	next, cmd := m.applyTick(orchestrator.Tick{
		TaskID:   "t1",
		Status:   schemas.TaskStatusDownloaded,
		Terminal: true,
		Ready:    true,
	})
	m = next.(model)

	if m.step != stepReady {
		t.Fatalf("expected ready step, got %v", m.step)
	}
	if cmd != nil {
		t.Fatalf("terminal tick must stop the loop")
	}
}

func TestApplyTickCompletionShowsResults(t *testing.T) {
	m := newTestModel()
	m.step = stepTranscribing
	m.segments = []schemas.Segment{{Text: "hello"}}

	next, _ := m.applyTick(orchestrator.Tick{
		TaskID:   "t1",
		Status:   schemas.TaskStatusCompleted,
		Terminal: true,
		Results: &schemas.TaskResults{
			SRTURL:      "/artifacts/t1/result.srt",
			MarkdownURL: "/artifacts/t1/result.md",
		},
	})
	m = next.(model)

	if m.step != stepComplete {
		t.Fatalf("expected completion step, got %v", m.step)
	}
	view := m.View()
	if !strings.Contains(view, "http://localhost:8000/artifacts/t1/result.srt") {
		t.Fatalf("view does not show the subtitle link:\n%s", view)
	}
}

func TestErrorRetryReturnsToPreviousStep(t *testing.T) {
	m := newTestModel()
	m.step = stepSelectModel
	m.lastStep = failReturnStep(m.step)
	m.step = stepError
	m.errMsg = "insufficient balance"

	next, _ := m.Update(keyMsg("r"))
	m = next.(model)

	if m.step != stepSelectModel {
		t.Fatalf("retry must return to the model step, got %v", m.step)
	}
	if m.errMsg != "" {
		t.Fatalf("error message not cleared")
	}
}

func TestViewNeverEmpty(t *testing.T) {
	m := newTestModel()
	for _, s := range []step{
		stepSelectSource, stepEnterInput, stepDownloading, stepReady,
		stepSelectModel, stepTranscribing, stepComplete, stepError,
	} {
		m.step = s
		if m.View() == "" {
			t.Fatalf("empty view for step %v", s)
		}
	}
}
