package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/podscript/podscript-cli/internals/schemas"
)

// FormatSRT renders segments as a SubRip subtitle file.
func FormatSRT(segments []schemas.Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", srtTimestamp(seg.Start), srtTimestamp(seg.End))
		if seg.Speaker != "" {
			fmt.Fprintf(&b, "[%s] ", seg.Speaker)
		}
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// FormatMarkdown renders segments as a timestamped markdown transcript.
func FormatMarkdown(title string, segments []schemas.Segment) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	for _, seg := range segments {
		fmt.Fprintf(&b, "**[%s]**", clockTimestamp(seg.Start))
		if seg.Speaker != "" {
			fmt.Fprintf(&b, " %s:", seg.Speaker)
		}
		fmt.Fprintf(&b, " %s\n\n", strings.TrimSpace(seg.Text))
	}
	return b.String()
}

// srtTimestamp formats seconds as HH:MM:SS,mmm.
func srtTimestamp(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// clockTimestamp formats seconds as MM:SS or HH:MM:SS.
func clockTimestamp(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
