package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/subflow/internal/watcher"
)

func newWatchCommand(cmdCtx *commandContext) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the input directory and run the pipeline for each new subtitle file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cmdCtx.cfg
			if cfg.Paths.Input == "" {
				return errors.New("paths.input must be set for watch mode")
			}

			log, closer, err := cmdCtx.newLogger()
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			handler := func(ctx context.Context, path string) error {
				err := executeRun(ctx, cfg, log, path, !quiet)
				if errors.Is(err, errAborted) {
					return nil
				}
				return err
			}

			w, err := watcher.New(cfg.Paths.Input, handler, log)
			if err != nil {
				return err
			}
			defer w.Stop()

			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not echo streamed model output")

	return cmd
}
