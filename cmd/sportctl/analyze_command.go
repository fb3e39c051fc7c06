package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sport-backend/internal/analyses"
	"sport-backend/internal/extract"
	"sport-backend/internal/recommendation"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var profilePath string
	var schemaVersion string
	var sport string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Request a recommendation (or training plan) from the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if schemaVersion != "" {
				cfg.SchemaVersion = schemaVersion
			}
			p, err := readProfile(profilePath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			app, err := buildApp(cmd, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if strings.TrimSpace(sport) != "" {
				res, err := app.AnalysesService.TrainingPlan(cmd.Context(), p, sport)
				if err != nil {
					return describeFailure(err, res.Report)
				}
				if asJSON {
					return writeJSON(out, res.Plan)
				}
				fmt.Fprintln(out, renderPlan(res.Plan))
				fmt.Fprintln(out, renderReport(res.Report))
				return nil
			}

			res, err := app.AnalysesService.Recommend(cmd.Context(), p)
			if err != nil {
				return describeFailure(err, res.Report)
			}
			if asJSON {
				return writeJSON(out, res.Document)
			}
			fmt.Fprintln(out, renderDocument(res.Document))
			fmt.Fprintln(out, renderReport(res.Report))
			return nil
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile JSON file, or - for stdin")
	cmd.Flags().StringVar(&schemaVersion, "schema", "", "Schema version (defaults to SCHEMA_VERSION)")
	cmd.Flags().StringVar(&sport, "plan", "", "Request a training plan for this sport instead")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the validated JSON document")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func describeFailure(err error, report extract.Report) error {
	category := analyses.FailureCategory(err)
	if category == "" || report.Attempts == 0 {
		return err
	}
	return fmt.Errorf("%s after %d attempt(s): %w", category, report.Attempts, err)
}

func renderDocument(doc recommendation.Document) string {
	var b strings.Builder
	b.WriteString(renderTable(
		[]string{"Sport", "Score", "Reason"},
		[][]string{{doc.Sport, strconv.Itoa(doc.Score), doc.Reason}},
		[]columnAlignment{alignLeft, alignRight, alignLeft},
	))
	b.WriteString("\n")

	rows := make([][]string, 0, len(doc.Exercises))
	for _, ex := range doc.Exercises {
		rows = append(rows, []string{ex.Name, ex.Duration, ex.Repetitions})
	}
	b.WriteString(renderTable([]string{"Exercise", "Duration", "Repetitions"}, rows, nil))

	if len(doc.Alternatives) > 0 {
		rows = rows[:0]
		for _, alt := range doc.Alternatives {
			rows = append(rows, []string{alt.Sport, strconv.Itoa(alt.Score), alt.Reason})
		}
		b.WriteString("\n")
		b.WriteString(renderTable(
			[]string{"Alternative", "Score", "Reason"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignLeft},
		))
	}
	if doc.TrainingPlan != nil {
		b.WriteString("\n")
		b.WriteString(renderPlan(*doc.TrainingPlan))
	}
	return b.String()
}

func renderPlan(plan recommendation.TrainingPlan) string {
	rows := make([][]string, 0, len(plan.Weeks)*4)
	for _, week := range plan.Weeks {
		for _, session := range week.Sessions {
			rows = append(rows, []string{
				strconv.Itoa(week.Week),
				strconv.Itoa(session.Day),
				session.Title,
				session.Duration,
			})
		}
	}
	return renderTable(
		[]string{"Week", "Day", "Session", "Duration"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
	)
}

func renderReport(report extract.Report) string {
	outcomes := make([]string, 0, len(report.Outcomes))
	for _, k := range report.Outcomes {
		outcomes = append(outcomes, string(k))
	}
	return fmt.Sprintf("attempts=%d outcomes=%s duration=%s", report.Attempts, strings.Join(outcomes, ","), report.Duration.Round(time.Millisecond))
}
