package orchestrator

import (
	"github.com/podscript/podscript-cli/internals/inputmode"
)

// Session is the single source of truth for the current job. It is one
// owned object, not a bag of ambient globals: every new creation attempt
// goes through Reset, which also bumps the generation used to discard
// stale poll responses. All access is serialized by the driving event
// loop (CLI runner or TUI update loop); there is no locking here.
type Session struct {
	generation    uint64
	currentTaskID string
	sourceURL     string
	pendingFile   string
	audioURL      string
	ready         bool
}

func NewSession() *Session {
	return &Session{}
}

// Reset clears the session at the start of a new creation attempt and
// invalidates every poll response issued before it.
func (s *Session) Reset() {
	s.generation++
	s.currentTaskID = ""
	s.pendingFile = ""
	s.ready = false
}

// tag captures the identity a poll request is issued for. A response
// whose tag no longer matches the live session is discarded instead of
// letting whichever response lands last win.
type tag struct {
	taskID     string
	generation uint64
}

func (s *Session) tag() tag {
	return tag{taskID: s.currentTaskID, generation: s.generation}
}

func (s *Session) matches(t tag) bool {
	return s.generation == t.generation && s.currentTaskID == t.taskID
}

func (s *Session) TaskID() string { return s.currentTaskID }

func (s *Session) Ready() bool { return s.ready }

func (s *Session) PendingFile() string { return s.pendingFile }

// SetSourceURL records the remote source field value.
func (s *Session) SetSourceURL(url string) { s.sourceURL = url }

// SetAudioURL records the direct audio URL field value.
func (s *Session) SetAudioURL(url string) { s.audioURL = url }

// AttachFile arms a local file for deferred upload. Selecting a file
// never uploads it; the upload happens when transcription is requested.
func (s *Session) AttachFile(path string) {
	s.Reset()
	s.pendingFile = path
}

// Inputs projects the session into the resolver's view of the world.
func (s *Session) Inputs() inputmode.Inputs {
	return inputmode.Inputs{
		SourceURL:     s.sourceURL,
		PendingFile:   s.pendingFile,
		AudioURL:      s.audioURL,
		CurrentTaskID: s.currentTaskID,
	}
}
