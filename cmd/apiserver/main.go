// Command apiserver runs the TenderWise HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oclem/tenderwise/internal/application/analysis"
	"github.com/oclem/tenderwise/internal/config"
	"github.com/oclem/tenderwise/internal/infrastructure/database/postgres"
	"github.com/oclem/tenderwise/internal/infrastructure/database/redis"
	"github.com/oclem/tenderwise/internal/infrastructure/fetch"
	"github.com/oclem/tenderwise/internal/infrastructure/messaging/kafka"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/metrics"
	"github.com/oclem/tenderwise/internal/infrastructure/storage/minio"
	httpiface "github.com/oclem/tenderwise/internal/interfaces/http"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file")
	migrateOnly := flag.Bool("migrate", false, "apply migrations and exit")
	flag.Parse()

	if err := run(*cfgPath, *migrateOnly); err != nil {
		fmt.Fprintln(os.Stderr, "apiserver:", err)
		os.Exit(1)
	}
}

func run(cfgPath string, migrateOnly bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(log)

	if cfg.Database.MigrationsPath != "" {
		if err := postgres.Migrate(cfg.Database, log); err != nil {
			return err
		}
	}
	if migrateOnly {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	deps := analysis.Deps{
		Fetcher: fetch.NewHTTPFetcher(cfg.Fetch, log),
		Dataset: postgres.NewContractRowRepository(pool, log),
		Metrics: metrics.NewPipelineMetrics(),
		Logger:  log,
	}

	// Cache, archive, and queue are optional. The pipeline degrades to
	// synchronous, uncached operation without them.
	if cfg.Redis.Addr != "" {
		cache, err := redis.Connect(ctx, cfg.Redis, log)
		if err != nil {
			return err
		}
		defer cache.Close()
		deps.Cache = cache
		deps.Dataset = redis.NewCachedDataset(deps.Dataset, cache)
	}
	if cfg.Storage.Endpoint != "" {
		archive, err := minio.Connect(ctx, cfg.Storage, log)
		if err != nil {
			return err
		}
		deps.Archiver = archive
	}

	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.Kafka, log)
		defer producer.Close()
		deps.Notifier = producer
	}

	svc := analysis.NewService(cfg.Analysis, deps)

	var enqueuer httpiface.AnalysisEnqueuer
	if producer != nil {
		enqueuer = producer
	}
	router := httpiface.NewRouter(cfg, httpiface.RouterDeps{
		Analysis: httpiface.NewAnalysisHandler(svc, enqueuer, log),
		Metrics:  deps.Metrics,
		Logger:   log,
	})
	server := httpiface.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return server.Shutdown(context.Background())
}
