// Package artifact persists pipeline output under <output>/<base>/:
//
//	segments/<base>-Part01.md ...   rendered segment transcripts
//	summaries/<base>-Part01.md ...  per-segment summaries (successful units)
//	<base>-summary.md               aggregate summary
//	<base>-article.md               article, when that stage ran
//
// With docx export enabled the aggregate and article are additionally
// rendered as styled .docx documents.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/subflow/internal/logger"
	"github.com/nguyentantai21042004/subflow/internal/pipeline"
)

type implWriter struct {
	root     string
	baseName string
	docx     bool
	logger   logger.Logger
}

// New creates a pipeline.ArtifactWriter rooted at outputDir/baseName.
func New(outputDir, baseName string, docx bool, log logger.Logger) (pipeline.ArtifactWriter, error) {
	root := filepath.Join(outputDir, baseName)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &implWriter{
		root:     root,
		baseName: baseName,
		docx:     docx,
		logger:   log,
	}, nil
}

func (w *implWriter) WriteSegments(segments []pipeline.SegmentText) error {
	dir := filepath.Join(w.root, "segments")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create segments dir: %w", err)
	}

	for _, seg := range segments {
		path := filepath.Join(dir, w.partName(seg.Index))
		if err := os.WriteFile(path, []byte(seg.Text), 0644); err != nil {
			return fmt.Errorf("write segment %d: %w", seg.Index, err)
		}
	}

	w.logger.Info(context.Background(), "wrote %d segment files to %s", len(segments), dir)
	return nil
}

// WriteSummaries persists the text of successful units. Failed and
// cancelled units have no text; their gap is visible in the aggregate.
func (w *implWriter) WriteSummaries(results []pipeline.StageResult) error {
	dir := filepath.Join(w.root, "summaries")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create summaries dir: %w", err)
	}

	written := 0
	for _, res := range results {
		if res.Status != pipeline.StatusOK {
			continue
		}
		path := filepath.Join(dir, w.partName(res.UnitIndex))
		if err := os.WriteFile(path, []byte(res.Text), 0644); err != nil {
			return fmt.Errorf("write summary %d: %w", res.UnitIndex, err)
		}
		written++
	}

	w.logger.Info(context.Background(), "wrote %d summary files to %s", written, dir)
	return nil
}

func (w *implWriter) WriteAggregate(text string) error {
	return w.writeDocument(w.baseName+"-summary", text)
}

func (w *implWriter) WriteArticle(text string) error {
	return w.writeDocument(w.baseName+"-article", text)
}

func (w *implWriter) writeDocument(name, text string) error {
	mdPath := filepath.Join(w.root, name+".md")
	if err := os.WriteFile(mdPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	w.logger.Info(context.Background(), "wrote %s", mdPath)

	if !w.docx {
		return nil
	}

	docxPath := filepath.Join(w.root, name+".docx")
	if err := renderDocx(w.baseName, text, docxPath); err != nil {
		// The markdown copy is the artifact of record; a docx export
		// problem should not fail the run.
		w.logger.Warn(context.Background(), "docx export failed for %s: %v", docxPath, err)
		return nil
	}
	w.logger.Info(context.Background(), "wrote %s", docxPath)
	return nil
}

func (w *implWriter) partName(index int) string {
	return fmt.Sprintf("%s-Part%02d.md", w.baseName, index)
}
