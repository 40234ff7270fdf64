package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/subflow/internal/completion"
	"github.com/nguyentantai21042004/subflow/internal/subtitle"
	"github.com/nguyentantai21042004/subflow/pkg/stopflag"
)

// fakeWriter records artifact calls.
type fakeWriter struct {
	segments  []SegmentText
	summaries []StageResult
	aggregate string
	article   string

	wroteSegments  bool
	wroteSummaries bool
	wroteAggregate bool
	wroteArticle   bool
}

func (w *fakeWriter) WriteSegments(segments []SegmentText) error {
	w.segments = segments
	w.wroteSegments = true
	return nil
}

func (w *fakeWriter) WriteSummaries(results []StageResult) error {
	w.summaries = results
	w.wroteSummaries = true
	return nil
}

func (w *fakeWriter) WriteAggregate(text string) error {
	w.aggregate = text
	w.wroteAggregate = true
	return nil
}

func (w *fakeWriter) WriteArticle(text string) error {
	w.article = text
	w.wroteArticle = true
	return nil
}

// transcript builds an SRT with one cue per minute for the given duration.
func transcript(minutes int) string {
	var b strings.Builder
	for i := 0; i < minutes; i++ {
		start := time.Duration(i) * time.Minute
		end := start + 50*time.Second
		fmt.Fprintf(&b, "%d\n%s,000 --> %s,000\nline %d\n\n",
			i+1, subtitle.FormatTimestamp(start), subtitle.FormatTimestamp(end), i+1)
	}
	return b.String()
}

func baseOptions(writer ArtifactWriter, summary completion.Client) Options {
	return Options{
		Window:  10 * time.Minute,
		Overlap: time.Minute,
		Summary: StageSpec{Client: summary, Prompt: "summarize"},
		Writer:  writer,
	}
}

func TestRunHappyPathWithArticle(t *testing.T) {
	writer := &fakeWriter{}
	opts := baseOptions(writer, echoClient())
	opts.Article = &StageSpec{Client: echoClient(), Prompt: "write article"}

	o := New(opts, nopLogger{})
	report, err := o.Run(context.Background(), transcript(30))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Outcome != OutcomeDone {
		t.Errorf("Outcome = %v, want done", report.Outcome)
	}
	if report.RunID == "" {
		t.Error("RunID should be set")
	}
	if !writer.wroteSegments || !writer.wroteSummaries || !writer.wroteAggregate || !writer.wroteArticle {
		t.Error("all artifacts should be written")
	}
	if len(report.Summaries) != len(report.Segments) {
		t.Errorf("summaries = %d, segments = %d, want equal", len(report.Summaries), len(report.Segments))
	}
	for i, s := range report.Summaries {
		if s.UnitIndex != i+1 {
			t.Errorf("Summaries[%d].UnitIndex = %d, want %d", i, s.UnitIndex, i+1)
		}
	}
	if report.Article == "" {
		t.Error("Article should be produced")
	}
	if !strings.Contains(writer.aggregate, "summary of") {
		t.Error("aggregate should contain segment summaries")
	}
}

func TestRunWithoutArticleStage(t *testing.T) {
	writer := &fakeWriter{}
	o := New(baseOptions(writer, echoClient()), nopLogger{})

	report, err := o.Run(context.Background(), transcript(30))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Outcome != OutcomeDone {
		t.Errorf("Outcome = %v, want done", report.Outcome)
	}
	if writer.wroteArticle {
		t.Error("article should not be written when no article stage is configured")
	}
}

func TestRunParseFailureProducesNoArtifacts(t *testing.T) {
	writer := &fakeWriter{}
	o := New(baseOptions(writer, echoClient()), nopLogger{})

	report, err := o.Run(context.Background(), "not a subtitle file")
	if err == nil {
		t.Fatal("Run() should fail")
	}
	var perr *subtitle.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("error = %T, want *subtitle.ParseError", err)
	}
	if report.Outcome != OutcomeFailed {
		t.Errorf("Outcome = %v, want failed", report.Outcome)
	}
	if writer.wroteSegments || writer.wroteSummaries || writer.wroteAggregate {
		t.Error("no artifacts should be written on parse failure")
	}
}

func TestRunEmptyTranscriptFails(t *testing.T) {
	writer := &fakeWriter{}
	o := New(baseOptions(writer, echoClient()), nopLogger{})

	report, err := o.Run(context.Background(), "")
	if err == nil {
		t.Fatal("Run() should fail for an empty transcript")
	}
	if report.Outcome != OutcomeFailed {
		t.Errorf("Outcome = %v, want failed", report.Outcome)
	}
}

func TestRunInvalidWindowFails(t *testing.T) {
	writer := &fakeWriter{}
	opts := baseOptions(writer, echoClient())
	opts.Overlap = opts.Window // non-advancing

	o := New(opts, nopLogger{})
	_, err := o.Run(context.Background(), transcript(30))
	if err == nil {
		t.Fatal("Run() should fail for overlap >= window")
	}
	if writer.wroteSegments {
		t.Error("no artifacts should be written on config failure")
	}
}

func TestRunFailedUnitGetsPlaceholderInAggregate(t *testing.T) {
	client := &fakeClient{
		script: func(call int, input string, onChunk completion.ChunkFunc, stop *stopflag.Flag) (string, error) {
			if call == 3 {
				return "", &completion.ProviderError{Provider: "test", Status: 500, Message: "boom"}
			}
			return fmt.Sprintf("summary %d", call), nil
		},
	}
	writer := &fakeWriter{}
	o := New(baseOptions(writer, client), nopLogger{})

	// 40 minutes with a 10 minute window and 1 minute overlap: 5 segments.
	report, err := o.Run(context.Background(), transcript(40))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Outcome != OutcomeDone {
		t.Errorf("Outcome = %v, want done", report.Outcome)
	}
	if len(report.Summaries) != 5 {
		t.Fatalf("summaries = %d, want 5", len(report.Summaries))
	}

	for i, s := range report.Summaries {
		want := StatusOK
		if i == 2 {
			want = StatusFailed
		}
		if s.Status != want {
			t.Errorf("Summaries[%d].Status = %v, want %v", i, s.Status, want)
		}
	}

	parts := strings.Split(report.Aggregate, "\n\n---\n\n")
	if len(parts) != 5 {
		t.Fatalf("aggregate parts = %d, want 5", len(parts))
	}
	if !strings.HasPrefix(parts[2], "> Part 03 unavailable") {
		t.Errorf("parts[2] = %q, want placeholder for part 3", parts[2])
	}
	if parts[3] == parts[2] {
		t.Error("only the failed part should carry a placeholder")
	}
}

func TestRunCancelledMidSummarizationAborts(t *testing.T) {
	writer := &fakeWriter{}
	var o Orchestrator
	client := &fakeClient{
		script: func(call int, input string, onChunk completion.ChunkFunc, stop *stopflag.Flag) (string, error) {
			if call == 2 {
				o.RequestStop()
				return "", completion.ErrCancelled
			}
			return "summary", nil
		},
	}
	o = New(baseOptions(writer, client), nopLogger{})

	report, err := o.Run(context.Background(), transcript(40))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Outcome != OutcomeAborted {
		t.Fatalf("Outcome = %v, want aborted", report.Outcome)
	}

	if report.Summaries[0].Status != StatusOK {
		t.Errorf("Summaries[0].Status = %v, want ok", report.Summaries[0].Status)
	}
	for i := 1; i < len(report.Summaries); i++ {
		if report.Summaries[i].Status != StatusCancelled {
			t.Errorf("Summaries[%d].Status = %v, want cancelled", i, report.Summaries[i].Status)
		}
	}

	// Partial summaries stay available to the writer; nothing later runs.
	if !writer.wroteSummaries {
		t.Error("partial summaries should be handed to the writer")
	}
	if writer.wroteAggregate || writer.wroteArticle {
		t.Error("aggregate and article must not be written after abort")
	}
}

func TestRunStopBeforeRunAborts(t *testing.T) {
	writer := &fakeWriter{}
	o := New(baseOptions(writer, echoClient()), nopLogger{})
	o.RequestStop()
	o.RequestStop() // idempotent

	report, err := o.Run(context.Background(), transcript(30))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Outcome != OutcomeAborted {
		t.Errorf("Outcome = %v, want aborted", report.Outcome)
	}
	if writer.wroteSummaries {
		t.Error("no summaries should be attempted after an early stop")
	}
}

func TestRunArticleFailureDoesNotFailRun(t *testing.T) {
	writer := &fakeWriter{}
	opts := baseOptions(writer, echoClient())
	opts.Article = &StageSpec{
		Client: &fakeClient{
			script: func(call int, input string, onChunk completion.ChunkFunc, stop *stopflag.Flag) (string, error) {
				return "", &completion.ProviderError{Provider: "test", Status: 500, Message: "overloaded"}
			},
		},
		Prompt: "write article",
	}

	o := New(opts, nopLogger{})
	report, err := o.Run(context.Background(), transcript(30))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Outcome != OutcomeDone {
		t.Errorf("Outcome = %v, want done", report.Outcome)
	}
	if report.Article != "" {
		t.Error("article should be absent after article-stage failure")
	}
	if writer.wroteArticle {
		t.Error("failed article must not be written")
	}
	if !writer.wroteAggregate {
		t.Error("aggregate should still be written")
	}
}

func TestRunArticleCancellationAborts(t *testing.T) {
	writer := &fakeWriter{}
	var o Orchestrator
	opts := baseOptions(writer, echoClient())
	opts.Article = &StageSpec{
		Client: &fakeClient{
			script: func(call int, input string, onChunk completion.ChunkFunc, stop *stopflag.Flag) (string, error) {
				o.RequestStop()
				return "", completion.ErrCancelled
			},
		},
		Prompt: "write article",
	}

	o = New(opts, nopLogger{})
	report, err := o.Run(context.Background(), transcript(30))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Outcome != OutcomeAborted {
		t.Errorf("Outcome = %v, want aborted", report.Outcome)
	}
	if !writer.wroteAggregate {
		t.Error("aggregate written before the article stage should remain")
	}
}

func TestRunStageDoneCallback(t *testing.T) {
	writer := &fakeWriter{}
	var states []RunState
	opts := baseOptions(writer, echoClient())
	opts.OnStageDone = func(state RunState) {
		states = append(states, state)
	}

	o := New(opts, nopLogger{})
	if _, err := o.Run(context.Background(), transcript(30)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(states) == 0 {
		t.Fatal("stage-done callback should fire")
	}
	last := states[len(states)-1]
	if last.OK == 0 || last.Failed != 0 || last.Cancelled != 0 {
		t.Errorf("final state = %+v, want all units ok", last)
	}
	if last.CompletedUnits != last.TotalUnits {
		t.Errorf("CompletedUnits = %d, TotalUnits = %d, want equal", last.CompletedUnits, last.TotalUnits)
	}
}

func TestAssembleAggregateOrdering(t *testing.T) {
	results := []StageResult{
		{UnitIndex: 1, Text: "one", Status: StatusOK},
		{UnitIndex: 2, Status: StatusFailed, Err: errors.New("http 500")},
		{UnitIndex: 3, Text: "three", Status: StatusOK},
	}

	got := assembleAggregate(results)
	parts := strings.Split(got, "\n\n---\n\n")
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want 3", len(parts))
	}
	if parts[0] != "one" || parts[2] != "three" {
		t.Error("successful summaries should keep their positions")
	}
	if !strings.Contains(parts[1], "Part 02") || !strings.Contains(parts[1], "http 500") {
		t.Errorf("parts[1] = %q, want placeholder with reason", parts[1])
	}
}
