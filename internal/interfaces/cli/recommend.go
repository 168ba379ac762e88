package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oclem/tenderwise/internal/domain/recommend"
)

func newRecommendCommand() *cobra.Command {
	var candidateCount int

	cmd := &cobra.Command{
		Use:   "recommend <discount>...",
		Short: "Recommend a bid discount from observed discount percentages",
		Long: `recommend runs the discount engine directly over a list of observed
discount percentages, without touching the database. Useful for checking what
the engine would say about a hand-collected set of past awards.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			discounts := make([]float64, 0, len(args))
			for _, arg := range args {
				d, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid discount %q: %w", arg, err)
				}
				discounts = append(discounts, d)
			}
			if candidateCount == 0 {
				candidateCount = len(discounts)
			}

			rec := recommend.NewEngine(nil).Recommend(discounts, candidateCount)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Baja recomendada: %.1f%%\n", rec.Percent)
			fmt.Fprintf(out, "Justificación: %s\n", rec.Rationale)
			if rec.Stats.Count > 0 {
				fmt.Fprintf(out, "Observaciones: %d (min %.1f%%, max %.1f%%, media %.1f%%, mediana %.1f%%)\n",
					rec.Stats.Count, rec.Stats.Min, rec.Stats.Max, rec.Stats.Mean, rec.Stats.Median)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&candidateCount, "candidates", 0,
		"total similar contracts found, including those without award data (defaults to the number of discounts)")
	return cmd
}
