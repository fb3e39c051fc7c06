package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sport-backend/internal/prompt"
	"sport-backend/internal/recommendation"
	"sport-backend/internal/shared/util"
)

func newPromptCommand(ctx *commandContext) *cobra.Command {
	var profilePath string
	var schemaVersion string
	var sport string
	var withSystem bool

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Render the prompt for a profile without calling the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readProfile(profilePath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return err
			}

			var text string
			if strings.TrimSpace(sport) != "" {
				text = prompt.BuildPlan(p, sport)
			} else {
				version := schemaVersion
				if version == "" {
					cfg, err := ctx.ensureConfig()
					if err != nil {
						return err
					}
					version = cfg.SchemaVersion
				}
				schema, err := recommendation.Lookup(version)
				if err != nil {
					return err
				}
				text = prompt.Build(p, schema)
			}

			out := cmd.OutOrStdout()
			if withSystem {
				system := prompt.SystemMessage(p.Language())
				fmt.Fprintf(out, "## system\n%s\n\n## user\n", system)
				fmt.Fprintln(out, text)
				fmt.Fprintf(out, "\n## prompt_hash %s\n", util.HashPrompt(system, text))
				return nil
			}
			fmt.Fprintln(out, text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile JSON file, or - for stdin")
	cmd.Flags().StringVar(&schemaVersion, "schema", "", "Schema version (defaults to SCHEMA_VERSION)")
	cmd.Flags().StringVar(&sport, "plan", "", "Render the training plan prompt for this sport instead")
	cmd.Flags().BoolVar(&withSystem, "system", false, "Also print the system instruction and prompt hash")
	return cmd
}
