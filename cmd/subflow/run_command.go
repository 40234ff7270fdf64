package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/subflow/internal/artifact"
	"github.com/nguyentantai21042004/subflow/internal/completion"
	"github.com/nguyentantai21042004/subflow/internal/config"
	"github.com/nguyentantai21042004/subflow/internal/logger"
	"github.com/nguyentantai21042004/subflow/internal/pipeline"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "run <transcript.srt>",
		Short: "Run the summarization pipeline for one subtitle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closer, err := cmdCtx.newLogger()
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}
			return executeRun(cmd.Context(), cmdCtx.cfg, log, args[0], !quiet)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not echo streamed model output")

	return cmd
}

// executeRun drives one pipeline run for the given subtitle file. Ctrl+C
// requests a cooperative stop; a second signal kills the process.
func executeRun(ctx context.Context, cfg *config.Config, log logger.Logger, srtPath string, stream bool) error {
	raw, err := os.ReadFile(srtPath)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(srtPath), filepath.Ext(srtPath))

	summary, err := stageSpec(cfg, cfg.Pipeline.Summary)
	if err != nil {
		return err
	}

	var article *pipeline.StageSpec
	if cfg.Pipeline.Article != nil {
		spec, err := stageSpec(cfg, *cfg.Pipeline.Article)
		if err != nil {
			return err
		}
		article = &spec
	}

	writer, err := artifact.New(cfg.Paths.Output, baseName, cfg.Pipeline.Docx, log)
	if err != nil {
		return err
	}

	if cfg.Pipeline.Docx {
		if err := artifact.ExportTranscript(cfg.Paths.Output, baseName, string(raw)); err != nil {
			log.Warn(ctx, "transcript docx export failed: %v", err)
		}
	}

	opts := pipeline.Options{
		Window:  time.Duration(cfg.Pipeline.WindowMinutes * float64(time.Minute)),
		Overlap: time.Duration(cfg.Pipeline.OverlapMinutes * float64(time.Minute)),
		Summary: summary,
		Article: article,
		Writer:  writer,
	}
	if stream {
		opts.OnChunk = func(stage string, unitIndex, totalUnits int, chunk string) {
			fmt.Print(chunk)
		}
	}

	orch := pipeline.New(opts, log)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigs:
			log.Warn(ctx, "Stop requested, finishing current unit")
			orch.RequestStop()
		case <-ctx.Done():
			orch.RequestStop()
		case <-done:
		}
	}()

	report, runErr := orch.Run(ctx, string(raw))
	if stream {
		fmt.Println()
	}

	if report != nil {
		fmt.Println(renderReport(report))
	}

	switch {
	case runErr != nil:
		return fmt.Errorf("run %s: %w", report.RunID, runErr)
	case report.Outcome == pipeline.OutcomeAborted:
		fmt.Println("Run aborted; partial artifacts were kept.")
		return errAborted
	default:
		fmt.Printf("Artifacts written to %s\n", filepath.Join(cfg.Paths.Output, baseName))
		return nil
	}
}

// stageSpec resolves a stage's provider slot into a ready completion client.
func stageSpec(cfg *config.Config, stage config.StageConfig) (pipeline.StageSpec, error) {
	provider, ok := cfg.Provider(stage.Provider)
	if !ok {
		return pipeline.StageSpec{}, fmt.Errorf("unknown provider %q", stage.Provider)
	}

	model := provider.Model
	if stage.Model != "" {
		model = stage.Model
	}

	client, err := completion.New(completion.Provider{
		Name:    provider.Name,
		BaseURL: provider.BaseURL,
		APIKey:  provider.APIKey,
		Model:   model,
		Backend: provider.Backend,
	})
	if err != nil {
		return pipeline.StageSpec{}, err
	}

	return pipeline.StageSpec{Client: client, Prompt: stage.Prompt}, nil
}

func renderReport(report *pipeline.Report) string {
	rows := make([][]string, 0, len(report.Summaries))
	for _, res := range report.Summaries {
		detail := ""
		if res.Err != nil {
			detail = res.Err.Error()
		}
		rows = append(rows, []string{
			fmt.Sprintf("%02d", res.UnitIndex),
			string(res.Status),
			detail,
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s finished: %s\n", report.RunID, report.Outcome)
	b.WriteString(renderTable(
		[]string{"Part", "Status", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	))
	return b.String()
}
