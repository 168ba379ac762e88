package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSimilarCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "similar <notice-url>",
		Short: "List historical contracts similar to a notice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			report, err := svc.AnalyzeURL(ctx, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, report.Candidates)
			}

			out := cmd.OutOrStdout()
			if len(report.Candidates) == 0 {
				fmt.Fprintln(out, "No se encontraron licitaciones comparables.")
				return nil
			}
			for i, c := range report.Candidates {
				fmt.Fprintf(out, "%2d. [%3.0f pts] %s\n", i+1, c.Score, c.Subject)
				var details []string
				if c.Locality != "" {
					details = append(details, c.Locality)
				}
				if c.Budget != nil {
					details = append(details, fmt.Sprintf("%.0f€", *c.Budget))
				}
				if c.DiscountPercent != nil {
					details = append(details, fmt.Sprintf("baja %.1f%%", *c.DiscountPercent))
				}
				if c.Awardee != "" {
					details = append(details, c.Awardee)
				}
				if len(details) > 0 {
					fmt.Fprintf(out, "    %s\n", strings.Join(details, " | "))
				}
				if len(c.Reasons) > 0 {
					fmt.Fprintf(out, "    %s\n", strings.Join(c.Reasons, "; "))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print candidates as JSON")
	return cmd
}
