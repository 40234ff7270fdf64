package segment

import (
	"fmt"
	"time"

	"github.com/nguyentantai21042004/subflow/internal/subtitle"
)

// Segment is one time-bounded window of cues, the unit of work for the
// summarization stage. Segments are produced once per run and never mutated.
type Segment struct {
	Index       int // 1-based
	WindowStart time.Duration
	WindowEnd   time.Duration
	Cues        []subtitle.Cue
}

// ConfigError reports invalid window/overlap parameters.
type ConfigError struct {
	Window  time.Duration
	Overlap time.Duration
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("segment config: window=%s overlap=%s: %s", e.Window, e.Overlap, e.Reason)
}

// Split cuts an ordered cue list into overlapping time windows.
//
// Windows start at the first cue's start and advance by window−overlap.
// A cue belongs to every window whose half-open range [start, end) contains
// its start offset, so cues in the shared tail of one window also appear at
// the head of the next. The final window is clipped to the last cue's end.
//
// Zero cues yield zero segments; that is not an error.
func Split(cues []subtitle.Cue, window, overlap time.Duration) ([]Segment, error) {
	if window <= 0 {
		return nil, &ConfigError{Window: window, Overlap: overlap, Reason: "window must be positive"}
	}
	if overlap < 0 {
		return nil, &ConfigError{Window: window, Overlap: overlap, Reason: "overlap must not be negative"}
	}
	if overlap >= window {
		return nil, &ConfigError{Window: window, Overlap: overlap, Reason: "overlap must be smaller than window"}
	}

	if len(cues) == 0 {
		return nil, nil
	}

	t0 := cues[0].Start
	lastEnd := t0
	for _, cue := range cues {
		if cue.End > lastEnd {
			lastEnd = cue.End
		}
	}

	stride := window - overlap

	var segments []Segment
	for start := t0; start < lastEnd; start += stride {
		end := start + window
		if end > lastEnd {
			end = lastEnd
		}
		segments = append(segments, Segment{
			Index:       len(segments) + 1,
			WindowStart: start,
			WindowEnd:   end,
			Cues:        cuesInRange(cues, start, end, end == lastEnd),
		})
	}

	// All cues collapse onto a single instant: still one segment.
	if len(segments) == 0 {
		segments = append(segments, Segment{
			Index:       1,
			WindowStart: t0,
			WindowEnd:   lastEnd,
			Cues:        cuesInRange(cues, t0, lastEnd, true),
		})
	}

	return segments, nil
}

// cuesInRange returns the subsequence of cues whose start lies in
// [start, end). The final clipped window is closed on the right so a cue
// starting exactly at the transcript's end is not dropped.
func cuesInRange(cues []subtitle.Cue, start, end time.Duration, final bool) []subtitle.Cue {
	var out []subtitle.Cue
	for _, cue := range cues {
		if cue.Start < start {
			continue
		}
		if cue.Start < end || (final && cue.Start == end) {
			out = append(out, cue)
		}
	}
	return out
}
