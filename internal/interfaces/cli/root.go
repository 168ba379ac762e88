// Package cli implements the tenderwise command line tool.
package cli

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/oclem/tenderwise/internal/application/analysis"
	"github.com/oclem/tenderwise/internal/config"
	"github.com/oclem/tenderwise/internal/infrastructure/database/postgres"
	"github.com/oclem/tenderwise/internal/infrastructure/fetch"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
)

var (
	cfgFile string
	verbose bool
)

// NewRootCommand assembles the CLI.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tenderwise",
		Short: "Analyze Spanish procurement notices and recommend bid discounts",
		Long: `tenderwise extracts contract data from procurement notice XML,
compares it against a database of historical contracts, and recommends the
bid discount most likely to win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newAnalyzeCommand())
	root.AddCommand(newSimilarCommand())
	root.AddCommand(newRecommendCommand())
	root.AddCommand(newMigrateCommand())
	return root
}

// loadConfig reads the config honoring the persistent flags.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Format = "console"
	}
	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// buildService wires a full pipeline service backed by the configured
// database. The returned cleanup closes the pool.
func buildService(ctx context.Context, cfg *config.Config, log logging.Logger) (analysis.Service, func(), error) {
	pool, err := postgres.Connect(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}

	svc := analysis.NewService(cfg.Analysis, analysis.Deps{
		Fetcher:   fetch.NewHTTPFetcher(cfg.Fetch, log),
		Dataset:   postgres.NewContractRowRepository(pool, log),
		Narrative: analysis.NewNarrativeWriter(rand.New(rand.NewSource(time.Now().UnixNano()))),
		Logger:    log,
	})
	return svc, pool.Close, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if err := postgres.Migrate(cfg.Database, log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
