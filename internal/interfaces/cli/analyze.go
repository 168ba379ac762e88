package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oclem/tenderwise/internal/application/analysis"
)

func newAnalyzeCommand() *cobra.Command {
	var (
		asJSON bool
		file   string
	)

	cmd := &cobra.Command{
		Use:   "analyze [notice-url]",
		Short: "Run the full analysis pipeline for a procurement notice",
		Long: `analyze fetches the notice XML, extracts the contract data, scores it
against the historical contract database, and prints the resulting report.

A local XML file can be analyzed instead of a URL with --file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 0 {
				return fmt.Errorf("a notice URL or --file is required")
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			svc, cleanup, err := buildService(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			var report *analysis.Report
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				report, err = svc.AnalyzeDocument(ctx, data, file)
				if err != nil {
					return err
				}
			} else {
				report, err = svc.AnalyzeURL(ctx, args[0])
				if err != nil {
					return err
				}
			}

			if asJSON {
				return printJSON(cmd, report)
			}
			printReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	cmd.Flags().StringVarP(&file, "file", "f", "", "analyze a local XML file instead of a URL")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(cmd *cobra.Command, report *analysis.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Informe %s\n", report.ID)
	if report.Contract != nil {
		if report.Contract.Subject != "" {
			fmt.Fprintf(out, "Objeto: %s\n", report.Contract.Subject)
		}
		if report.Contract.Budget != nil {
			fmt.Fprintf(out, "Presupuesto: %.2f€\n", *report.Contract.Budget)
		}
	}
	fmt.Fprintf(out, "Licitaciones comparables: %d\n", report.MatchStats.Total)
	fmt.Fprintf(out, "Baja recomendada: %.1f%%\n", report.Recommendation.Percent)
	fmt.Fprintf(out, "Justificación: %s\n", report.Recommendation.Rationale)
	fmt.Fprintln(out)
	fmt.Fprintln(out, report.Narrative)
}
