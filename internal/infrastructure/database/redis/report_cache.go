// Package redis caches finished analysis reports so repeated lookups by id
// do not rerun the pipeline.
package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oclem/tenderwise/internal/application/analysis"
	"github.com/oclem/tenderwise/internal/config"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
	"github.com/oclem/tenderwise/pkg/errors"
)

const reportKeyPrefix = "tenderwise:report:"

// ReportCache stores reports as JSON under a TTL.
type ReportCache struct {
	client *goredis.Client
	ttl    time.Duration
	log    logging.Logger
}

// Connect opens a Redis client and verifies it with a ping.
func Connect(ctx context.Context, cfg config.RedisConfig, log logging.Logger) (*ReportCache, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "redis unreachable")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	log.Info("redis connected", logging.String("addr", cfg.Addr))
	return &ReportCache{client: client, ttl: ttl, log: log.Named("report_cache")}, nil
}

// GetReport loads a cached report. A missing key maps to a not-found error,
// transport problems to a cache error.
func (c *ReportCache) GetReport(ctx context.Context, id string) (*analysis.Report, error) {
	data, err := c.client.Get(ctx, reportKeyPrefix+id).Bytes()
	if err == goredis.Nil {
		return nil, errors.NotFound("report not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "loading cached report")
	}

	var report analysis.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decoding cached report")
	}
	return &report, nil
}

// PutReport stores a report under its id with the configured TTL.
func (c *ReportCache) PutReport(ctx context.Context, report *analysis.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding report")
	}
	if err := c.client.Set(ctx, reportKeyPrefix+report.ID, data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "caching report")
	}
	return nil
}

// Close releases the underlying client.
func (c *ReportCache) Close() error {
	return c.client.Close()
}
