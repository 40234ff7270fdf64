package subtitle

import "strings"

// ToMarkdown renders cues as markdown lines, one cue per paragraph with its
// start offset as a bold prefix. This is the per-segment text handed to the
// summarization stage.
func ToMarkdown(cues []Cue) string {
	var b strings.Builder
	for _, cue := range cues {
		b.WriteString("**[")
		b.WriteString(FormatTimestamp(cue.Start))
		b.WriteString("]** ")
		b.WriteString(cue.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
