package pipeline

// Stage names, in pipeline order.
const (
	StageIdle        = "idle"
	StageParsing     = "parsing"
	StageSegmenting  = "segmenting"
	StageSummarizing = "summarizing"
	StageAssembling  = "assembling"
	StageArticle     = "article"
)

// Outcome is the terminal state of a run.
type Outcome string

const (
	OutcomeDone    Outcome = "done"
	OutcomeAborted Outcome = "aborted"
	OutcomeFailed  Outcome = "failed"
)

// Status is the per-unit result status of a stage call.
type Status string

const (
	StatusOK        Status = "ok"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Unit is one piece of work for a stage: a segment's rendered text for the
// summarization stage, the aggregate summary for the article stage.
type Unit struct {
	Index int
	Input string
}

// StageResult is the outcome of one unit's completion call.
type StageResult struct {
	UnitIndex int
	Text      string
	Status    Status
	Err       error
}

// SegmentText pairs a segment index with its rendered transcript text.
type SegmentText struct {
	Index int
	Text  string
}

// RunState is the per-invocation progress snapshot reported to callers.
type RunState struct {
	RunID          string
	Stage          string
	CompletedUnits int
	TotalUnits     int
	OK             int
	Failed         int
	Cancelled      int
}

// Report is the final run summary handed back to the caller. Summaries are
// in segment-index order and enumerate every unit's status so failed
// segments can be re-processed by hand.
type Report struct {
	RunID     string
	Outcome   Outcome
	Segments  []SegmentText
	Summaries []StageResult
	Aggregate string
	Article   string
	Err       error
}

// ProgressFunc receives each streamed chunk together with its stage and
// unit position, synchronously with the network read.
type ProgressFunc func(stage string, unitIndex, totalUnits int, chunk string)

// StageDoneFunc is invoked when a stage finishes with the state snapshot at
// that point.
type StageDoneFunc func(state RunState)

// ArtifactWriter persists run artifacts. The pipeline guarantees ordering
// and completeness of what it hands over; naming and placement are the
// writer's concern. Implementations are called at most once per artifact.
type ArtifactWriter interface {
	WriteSegments(segments []SegmentText) error
	WriteSummaries(results []StageResult) error
	WriteAggregate(text string) error
	WriteArticle(text string) error
}
