package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/subflow/internal/completion"
	"github.com/nguyentantai21042004/subflow/internal/logger"
	"github.com/nguyentantai21042004/subflow/pkg/stopflag"
)

// StageSpec binds a stage to the client and prompt it runs with.
type StageSpec struct {
	Client completion.Client
	Prompt string
}

// Options configures one run.
type Options struct {
	Window  time.Duration
	Overlap time.Duration
	Summary StageSpec
	Article *StageSpec // nil skips the article stage
	Writer  ArtifactWriter

	OnChunk     ProgressFunc
	OnStageDone StageDoneFunc
}

type implOrchestrator struct {
	opts   Options
	logger logger.Logger
	stop   *stopflag.Flag
	state  RunState
}

// New creates an Orchestrator for a single run.
func New(opts Options, log logger.Logger) Orchestrator {
	return &implOrchestrator{
		opts:   opts,
		logger: log,
		stop:   stopflag.New(),
		state: RunState{
			RunID: uuid.NewString(),
			Stage: StageIdle,
		},
	}
}

// RequestStop requests a cooperative stop. Safe from any goroutine.
func (o *implOrchestrator) RequestStop() {
	o.stop.Set()
}
