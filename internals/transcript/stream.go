// Package transcript accumulates partial transcript segments across
// polls and renders them to SRT and markdown.
package transcript

import (
	"github.com/podscript/podscript-cli/internals/schemas"
)

// Stream tracks how many segments have already been shown so each poll
// only surfaces the suffix it has not seen. Segments are append only
// from the client's point of view, so diffing by count is safe.
type Stream struct {
	segments  []schemas.Segment
	displayed int
}

func NewStream() *Stream {
	return &Stream{}
}

// Advance takes the full partial segment list from a snapshot and
// returns only the newly visible segments. A snapshot that is empty or
// no longer than what was already rendered is a stale or out of order
// read and yields nothing; already shown content is never discarded or
// re-rendered.
func (s *Stream) Advance(segments []schemas.Segment) []schemas.Segment {
	if len(segments) <= s.displayed {
		return nil
	}
	fresh := segments[s.displayed:]
	s.segments = append(s.segments, fresh...)
	s.displayed = len(segments)
	return fresh
}

// Displayed returns the number of segments rendered so far.
func (s *Stream) Displayed() int {
	return s.displayed
}

// Segments returns everything rendered so far.
func (s *Stream) Segments() []schemas.Segment {
	return s.segments
}

// Reset clears the stream. Called exactly at the start of every new
// transcription attempt.
func (s *Stream) Reset() {
	s.segments = nil
	s.displayed = 0
}
