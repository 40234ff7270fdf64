package pipeline

import "context"

// Orchestrator sequences one full run: parse, segment, summarize each
// segment, assemble the aggregate, optionally generate the article, and
// hand artifacts to the writer. An Orchestrator drives a single run; create
// a new one per transcript.
//
// Run executes on the calling goroutine. RequestStop may be called from any
// other goroutine at any time; it is idempotent and observed cooperatively
// at every stage boundary and every streamed chunk boundary.
type Orchestrator interface {
	Run(ctx context.Context, transcript string) (*Report, error)
	RequestStop()
}
