package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe the configured completion backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			app, err := buildApp(cmd, cfg)
			if err != nil {
				return err
			}
			status := app.HealthService.Status(cmd.Context())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Provider", "Model", "Credential", "Reachable", "Status"},
				[][]string{{
					cfg.LLM.Provider,
					status.Model,
					strconv.FormatBool(status.HasCredential),
					strconv.FormatBool(status.Reachable),
					status.Status,
				}},
				nil,
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the health payload as JSON")
	return cmd
}
