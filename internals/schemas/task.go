package schemas

type TaskStatus string

const (
	TaskStatusQueued       TaskStatus = "queued"
	TaskStatusDownloading  TaskStatus = "downloading"
	TaskStatusDownloaded   TaskStatus = "downloaded"
	TaskStatusTranscribing TaskStatus = "transcribing"
	TaskStatusFormatting   TaskStatus = "formatting"
	TaskStatusCompleted    TaskStatus = "completed"
	TaskStatusFailed       TaskStatus = "failed"
	TaskStatusRetrying     TaskStatus = "retrying"
)

// AcquisitionDone reports whether the download phase has reached its
// success terminal. The transcribe action is gated on this.
func (s TaskStatus) AcquisitionDone() bool {
	return s == TaskStatusDownloaded
}

// TranscriptionDone reports whether the transcription phase has reached
// its success terminal.
func (s TaskStatus) TranscriptionDone() bool {
	return s == TaskStatusCompleted
}

func (s TaskStatus) Failed() bool {
	return s == TaskStatusFailed
}

// Label returns the human readable status text shown in the UI.
func (s TaskStatus) Label() string {
	switch s {
	case TaskStatusQueued:
		return "Queued"
	case TaskStatusDownloading:
		return "Downloading..."
	case TaskStatusDownloaded:
		return "Download complete, ready to transcribe"
	case TaskStatusTranscribing:
		return "Transcribing..."
	case TaskStatusFormatting:
		return "Formatting..."
	case TaskStatusCompleted:
		return "Completed"
	case TaskStatusFailed:
		return "Failed"
	case TaskStatusRetrying:
		return "Retrying..."
	default:
		return string(s)
	}
}

type TaskError struct {
	Message string `json:"message"`
}

// Segment is one transcript span. Segments are immutable once observed:
// the server never rewrites an index it has already issued, which lets
// clients diff by count instead of by identity.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
	Text    string  `json:"text"`
}

type Task struct {
	ID              string     `json:"id"`
	Status          TaskStatus `json:"status"`
	Progress        float64    `json:"progress"`
	Error           *TaskError `json:"error,omitempty"`
	PartialSegments []Segment  `json:"partial_segments,omitempty"`
}

// ErrorMessage returns the server reported failure message, or fallback
// when the task carries none.
func (t *Task) ErrorMessage(fallback string) string {
	if t.Error != nil && t.Error.Message != "" {
		return t.Error.Message
	}
	return fallback
}

type TaskLog struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type TaskResults struct {
	SRTURL      string         `json:"srt_url"`
	MarkdownURL string         `json:"markdown_url"`
	Meta        map[string]any `json:"meta,omitempty"`
}

type Transcript struct {
	Segments  []Segment `json:"segments"`
	MediaType string    `json:"media_type,omitempty"`
	MediaURL  string    `json:"media_url,omitempty"`
	Duration  float64   `json:"duration,omitempty"`
}
