package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/subflow/internal/segment"
	"github.com/nguyentantai21042004/subflow/internal/subtitle"
)

// Run executes the pipeline over one transcript.
//
// Parse and segmentation errors are fatal: the run fails with no artifacts.
// Per-unit failures during summarization are recorded and replaced with a
// placeholder in the aggregate; they do not abort the run. Cancellation
// aborts remaining work but keeps everything already produced. An article
// stage failure never downgrades an otherwise successful run.
func (o *implOrchestrator) Run(ctx context.Context, transcript string) (*Report, error) {
	report := &Report{RunID: o.state.RunID}

	// Parsing
	o.enterStage(StageParsing)
	cues, err := subtitle.Parse(transcript)
	if err != nil {
		return o.fail(ctx, report, fmt.Errorf("parse transcript: %w", err))
	}
	o.logger.Info(ctx, "parsed %d cues", len(cues))

	if o.stop.Stopped() {
		return o.abort(ctx, report)
	}

	// Segmenting
	o.enterStage(StageSegmenting)
	segments, err := segment.Split(cues, o.opts.Window, o.opts.Overlap)
	if err != nil {
		return o.fail(ctx, report, err)
	}
	if len(segments) == 0 {
		return o.fail(ctx, report, fmt.Errorf("transcript contains no cues"))
	}
	o.logger.Info(ctx, "split into %d segments (window %s, overlap %s)",
		len(segments), o.opts.Window, o.opts.Overlap)

	units := make([]Unit, len(segments))
	for i, seg := range segments {
		text := subtitle.ToMarkdown(seg.Cues)
		report.Segments = append(report.Segments, SegmentText{Index: seg.Index, Text: text})
		units[i] = Unit{Index: seg.Index, Input: text}
		o.logger.Info(ctx, "segment %02d: %s - %s (%d cues)",
			seg.Index, subtitle.FormatTimestamp(seg.WindowStart), subtitle.FormatTimestamp(seg.WindowEnd), len(seg.Cues))
	}

	if err := o.opts.Writer.WriteSegments(report.Segments); err != nil {
		return o.fail(ctx, report, fmt.Errorf("write segments: %w", err))
	}

	if o.stop.Stopped() {
		return o.abort(ctx, report)
	}

	// Summarizing
	o.enterStage(StageSummarizing)
	o.state.TotalUnits = len(units)
	runner := &stageRunner{
		stage:   StageSummarizing,
		client:  o.opts.Summary.Client,
		prompt:  o.opts.Summary.Prompt,
		stop:    o.stop,
		logger:  o.logger,
		onChunk: o.opts.OnChunk,
	}
	report.Summaries = runner.run(ctx, units)
	o.recordResults(report.Summaries)

	if err := o.opts.Writer.WriteSummaries(report.Summaries); err != nil {
		return o.fail(ctx, report, fmt.Errorf("write summaries: %w", err))
	}
	if countStatus(report.Summaries, StatusCancelled) > 0 {
		return o.abort(ctx, report)
	}

	// Assembling
	o.enterStage(StageAssembling)
	report.Aggregate = assembleAggregate(report.Summaries)
	if err := o.opts.Writer.WriteAggregate(report.Aggregate); err != nil {
		return o.fail(ctx, report, fmt.Errorf("write aggregate: %w", err))
	}

	// Article (optional)
	if o.opts.Article != nil {
		if o.stop.Stopped() {
			return o.abort(ctx, report)
		}

		o.enterStage(StageArticle)
		o.state.CompletedUnits = 0
		o.state.TotalUnits = 1
		articleRunner := &stageRunner{
			stage:   StageArticle,
			client:  o.opts.Article.Client,
			prompt:  o.opts.Article.Prompt,
			stop:    o.stop,
			logger:  o.logger,
			onChunk: o.opts.OnChunk,
		}
		results := articleRunner.run(ctx, []Unit{{Index: 1, Input: report.Aggregate}})

		switch results[0].Status {
		case StatusOK:
			report.Article = results[0].Text
			if err := o.opts.Writer.WriteArticle(report.Article); err != nil {
				return o.fail(ctx, report, fmt.Errorf("write article: %w", err))
			}
		case StatusCancelled:
			return o.abort(ctx, report)
		case StatusFailed:
			// Summaries are already complete; the run still succeeds
			// with the article marked absent.
			o.logger.Warn(ctx, "article generation failed, run completes without it: %v", results[0].Err)
		}
		o.state.CompletedUnits = 1
		o.notifyStageDone()
	}

	report.Outcome = OutcomeDone
	o.logger.Info(ctx, "run %s done: %d ok, %d failed", o.state.RunID, o.state.OK, o.state.Failed)
	return report, nil
}

// assembleAggregate joins successful summaries in segment order. Failed
// segments keep their position as a visible placeholder so downstream
// review can identify the gap.
func assembleAggregate(results []StageResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Status == StatusOK {
			parts = append(parts, r.Text)
			continue
		}
		reason := "summarization failed"
		if r.Err != nil {
			reason = r.Err.Error()
		}
		parts = append(parts, fmt.Sprintf("> Part %02d unavailable: %s", r.UnitIndex, reason))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func (o *implOrchestrator) enterStage(stage string) {
	o.state.Stage = stage
}

func (o *implOrchestrator) recordResults(results []StageResult) {
	o.state.OK += countStatus(results, StatusOK)
	o.state.Failed += countStatus(results, StatusFailed)
	o.state.Cancelled += countStatus(results, StatusCancelled)
	o.state.CompletedUnits = len(results)
	o.notifyStageDone()
}

func (o *implOrchestrator) notifyStageDone() {
	if o.opts.OnStageDone != nil {
		o.opts.OnStageDone(o.state)
	}
}

func (o *implOrchestrator) fail(ctx context.Context, report *Report, err error) (*Report, error) {
	report.Outcome = OutcomeFailed
	report.Err = err
	o.logger.Error(ctx, "run %s failed in stage %s: %v", o.state.RunID, o.state.Stage, err)
	return report, err
}

func (o *implOrchestrator) abort(ctx context.Context, report *Report) (*Report, error) {
	report.Outcome = OutcomeAborted
	o.logger.Warn(ctx, "run %s aborted in stage %s", o.state.RunID, o.state.Stage)
	return report, nil
}

func countStatus(results []StageResult, status Status) int {
	n := 0
	for _, r := range results {
		if r.Status == status {
			n++
		}
	}
	return n
}
