package subtitle

import (
	"fmt"
	"time"
)

// Cue is one timestamped subtitle entry. Cues are immutable once parsed.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// ParseError reports a malformed transcript. Any malformed block fails the
// whole parse: downstream timing math requires a fully valid timeline.
type ParseError struct {
	Block  int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse srt: block %d: %s", e.Block, e.Reason)
}

// FormatTimestamp renders an offset as HH:MM:SS for display and markdown.
func FormatTimestamp(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
