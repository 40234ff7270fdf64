package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/subflow/internal/completion"
	"github.com/nguyentantai21042004/subflow/internal/config"
)

func newModelsCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "models [provider]",
		Short: "List the models a configured provider offers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cmdCtx.cfg

			providers := cfg.Providers
			if len(args) == 1 {
				p, ok := cfg.Provider(args[0])
				if !ok {
					return fmt.Errorf("unknown provider %q", args[0])
				}
				providers = []config.ProviderConfig{p}
			}

			out := cmd.OutOrStdout()
			for _, p := range providers {
				client, err := completion.New(completion.Provider{
					Name:    p.Name,
					BaseURL: p.BaseURL,
					APIKey:  p.APIKey,
					Model:   p.Model,
					Backend: p.Backend,
				})
				if err != nil {
					return err
				}

				models, err := client.ListModels(cmd.Context())
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", p.Name, err)
					continue
				}

				fmt.Fprintf(out, "%s (%d models):\n", p.Name, len(models))
				for _, model := range models {
					fmt.Fprintf(out, "  %s\n", model)
				}
			}
			return nil
		},
	}
}
