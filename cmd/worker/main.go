// Command worker consumes queued analysis requests and runs the pipeline.
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
	"github.com/oclem/tenderwise/internal/infrastructure/storage/minio"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*cfgPath); err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("worker requires kafka.brokers")
	}
	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka, log)
	defer producer.Close()

	deps := analysis.Deps{
		Fetcher:  fetch.NewHTTPFetcher(cfg.Fetch, log),
		Dataset:  postgres.NewContractRowRepository(pool, log),
		Notifier: producer,
		Logger:   log,
	}
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

	svc := analysis.NewService(cfg.Analysis, deps)

	consumer := kafka.NewConsumer(cfg.Kafka, log)
	defer consumer.Close()

	log.Info("worker consuming",
		logging.String("topic", cfg.Kafka.RequestTopic),
		logging.String("group", cfg.Kafka.ConsumerGroup),
	)
	return consumer.Run(ctx, func(ctx context.Context, req kafka.AnalysisRequest) error {
		report, err := svc.AnalyzeURL(ctx, req.NoticeURL)
		if err != nil {
			return err
		}
		log.Info("analysis completed",
			logging.String("request_id", req.RequestID),
			logging.String("report_id", report.ID),
		)
		return nil
	})
}
