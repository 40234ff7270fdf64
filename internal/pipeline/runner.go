package pipeline

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/subflow/internal/completion"
	"github.com/nguyentantai21042004/subflow/internal/logger"
	"github.com/nguyentantai21042004/subflow/pkg/stopflag"
)

// stageRunner drives completion calls for one stage. Units are processed
// strictly sequentially: providers rate-limit per call and the caller shows
// one coherent in-progress stream at a time.
type stageRunner struct {
	stage   string
	client  completion.Client
	prompt  string
	stop    *stopflag.Flag
	logger  logger.Logger
	onChunk ProgressFunc
}

// run processes units in order and returns one StageResult per unit, in the
// same order. The stop flag is checked before each unit and, inside the
// client, at every chunk boundary; once it is set all remaining units are
// marked Cancelled without further requests. A NetworkError gets a single
// immediate retry; a ProviderError does not, and processing continues with
// the next unit.
func (r *stageRunner) run(ctx context.Context, units []Unit) []StageResult {
	results := make([]StageResult, 0, len(units))

	for i, unit := range units {
		if r.stop.Stopped() {
			return r.cancelRemaining(results, units[i:])
		}

		result := r.runUnit(ctx, unit, i, len(units))
		if result.Status == StatusCancelled {
			return r.cancelRemaining(results, units[i:])
		}
		results = append(results, result)
	}

	return results
}

func (r *stageRunner) runUnit(ctx context.Context, unit Unit, pos, total int) StageResult {
	onChunk := func(text string) {
		if r.onChunk != nil {
			r.onChunk(r.stage, unit.Index, total, text)
		}
	}

	text, err := r.client.Complete(ctx, r.prompt, unit.Input, onChunk, r.stop)

	var netErr *completion.NetworkError
	if errors.As(err, &netErr) {
		r.logger.Warn(ctx, "[%s %d/%d] network error, retrying once: %v", r.stage, pos+1, total, err)
		text, err = r.client.Complete(ctx, r.prompt, unit.Input, onChunk, r.stop)
	}

	switch {
	case err == nil:
		return StageResult{UnitIndex: unit.Index, Text: text, Status: StatusOK}
	case errors.Is(err, completion.ErrCancelled):
		return StageResult{UnitIndex: unit.Index, Status: StatusCancelled, Err: err}
	default:
		r.logger.Error(ctx, "[%s %d/%d] unit failed: %v", r.stage, pos+1, total, err)
		return StageResult{UnitIndex: unit.Index, Status: StatusFailed, Err: err}
	}
}

func (r *stageRunner) cancelRemaining(results []StageResult, remaining []Unit) []StageResult {
	for _, unit := range remaining {
		results = append(results, StageResult{
			UnitIndex: unit.Index,
			Status:    StatusCancelled,
			Err:       completion.ErrCancelled,
		})
	}
	return results
}
