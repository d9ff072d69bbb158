package transcript

import (
	"strings"
	"testing"

	"github.com/podscript/podscript-cli/internals/schemas"
)

func TestFormatSRT(t *testing.T) {
	segments := []schemas.Segment{
		{Start: 0, End: 2.5, Speaker: "Alice", Text: "Hello there "},
		{Start: 2.5, End: 5, Text: "General greeting"},
	}

	got := FormatSRT(segments)
	want := "1\n" +
		"00:00:00,000 --> 00:00:02,500\n" +
		"[Alice] Hello there\n\n" +
		"2\n" +
		"00:00:02,500 --> 00:00:05,000\n" +
		"General greeting\n\n"
	if got != want {
		t.Fatalf("unexpected srt output:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormatSRTEmpty(t *testing.T) {
	if got := FormatSRT(nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestFormatMarkdown(t *testing.T) {
	segments := []schemas.Segment{
		{Start: 3, End: 6, Speaker: "Bob", Text: "hi"},
		{Start: 65, End: 70, Text: "no speaker here"},
	}

	got := FormatMarkdown("Episode 42", segments)
	if !strings.HasPrefix(got, "# Episode 42\n\n") {
		t.Fatalf("expected title header, got %q", got)
	}
	if !strings.Contains(got, "**[0:03]** Bob: hi\n\n") {
		t.Fatalf("expected speaker line, got %q", got)
	}
	if !strings.Contains(got, "**[1:05]** no speaker here\n\n") {
		t.Fatalf("expected plain line, got %q", got)
	}
}

func TestFormatMarkdownWithoutTitle(t *testing.T) {
	got := FormatMarkdown("", []schemas.Segment{{Start: 0, End: 1, Text: "x"}})
	if strings.HasPrefix(got, "#") {
		t.Fatalf("expected no header, got %q", got)
	}
}

func TestTimestamps(t *testing.T) {
	if got := srtTimestamp(3723.5); got != "01:02:03,500" {
		t.Fatalf("srtTimestamp: got %q", got)
	}
	if got := srtTimestamp(0); got != "00:00:00,000" {
		t.Fatalf("srtTimestamp zero: got %q", got)
	}
	if got := clockTimestamp(3723); got != "1:02:03" {
		t.Fatalf("clockTimestamp hours: got %q", got)
	}
	if got := clockTimestamp(62); got != "1:02" {
		t.Fatalf("clockTimestamp minutes: got %q", got)
	}
}
