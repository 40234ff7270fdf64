package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/subflow/internal/completion"
)

func newCheckCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe every configured provider with a minimal completion request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cmdCtx.cfg

			rows := make([][]string, 0, len(cfg.Providers))
			failures := 0
			for _, p := range cfg.Providers {
				status := "ok"
				detail := p.Model

				client, err := completion.New(completion.Provider{
					Name:    p.Name,
					BaseURL: p.BaseURL,
					APIKey:  p.APIKey,
					Model:   p.Model,
					Backend: p.Backend,
				})
				if err == nil {
					err = client.Check(cmd.Context())
				}
				if err != nil {
					status = "failed"
					detail = err.Error()
					failures++
				}

				backend := p.Backend
				if backend == "" {
					backend = "openai"
				}
				rows = append(rows, []string{p.Name, backend, status, detail})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Provider", "Backend", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			if failures > 0 {
				return fmt.Errorf("%d of %d providers failed the probe", failures, len(cfg.Providers))
			}
			return nil
		},
	}
}
