package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reBlockSplit = regexp.MustCompile(`\n\s*\n`)
	reTimeRange  = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}[,.]\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}[,.]\d{3})$`)
)

// Parse parses sequential numbered-cue SRT text into an ordered cue list.
// It fails with *ParseError on the first malformed block or when cue starts
// are not in non-decreasing order.
func Parse(raw string) ([]Cue, error) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var cues []Cue
	for i, block := range reBlockSplit.Split(raw, -1) {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			return nil, &ParseError{Block: i + 1, Reason: "missing timestamp line"}
		}

		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			return nil, &ParseError{Block: i + 1, Reason: fmt.Sprintf("invalid cue number %q", strings.TrimSpace(lines[0]))}
		}

		m := reTimeRange.FindStringSubmatch(strings.TrimSpace(lines[1]))
		if m == nil {
			return nil, &ParseError{Block: i + 1, Reason: fmt.Sprintf("invalid timestamp range %q", strings.TrimSpace(lines[1]))}
		}

		start, err := parseTimestamp(m[1])
		if err != nil {
			return nil, &ParseError{Block: i + 1, Reason: err.Error()}
		}
		end, err := parseTimestamp(m[2])
		if err != nil {
			return nil, &ParseError{Block: i + 1, Reason: err.Error()}
		}
		if end < start {
			return nil, &ParseError{Block: i + 1, Reason: "cue ends before it starts"}
		}
		if len(cues) > 0 && start < cues[len(cues)-1].Start {
			return nil, &ParseError{Block: i + 1, Reason: "cue starts are not in order"}
		}

		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}

	return cues, nil
}

// parseTimestamp converts "HH:MM:SS,mmm" (or with a dot) to a duration.
func parseTimestamp(s string) (time.Duration, error) {
	s = strings.Replace(s, ",", ".", 1)
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q", s)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q", s)
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second)), nil
}
