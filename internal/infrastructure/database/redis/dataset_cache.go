package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oclem/tenderwise/internal/application/analysis"
	"github.com/oclem/tenderwise/internal/domain/matching"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
)

const (
	datasetKeyPrefix = "tenderwise:dataset:rows:"

	// datasetTTL is short: the scraped tables change often enough that a stale
	// snapshot should not outlive a work session.
	datasetTTL = 15 * time.Minute
)

// CachedDataset snapshots historical contract rows in Redis so repeated
// analyses within a short window skip the full table scan. Cache failures
// degrade to direct loads.
type CachedDataset struct {
	inner  analysis.ContractDataset
	client *goredis.Client
	log    logging.Logger
}

// NewCachedDataset wraps inner with the cache's Redis client.
func NewCachedDataset(inner analysis.ContractDataset, cache *ReportCache) *CachedDataset {
	return &CachedDataset{
		inner:  inner,
		client: cache.client,
		log:    cache.log.Named("dataset_cache"),
	}
}

// Rows returns the cached snapshot for this limit, loading and storing it on
// a miss.
func (d *CachedDataset) Rows(ctx context.Context, limit int) ([]matching.Row, error) {
	key := fmt.Sprintf("%s%d", datasetKeyPrefix, limit)

	data, err := d.client.Get(ctx, key).Bytes()
	if err == nil {
		var rows []matching.Row
		if jsonErr := json.Unmarshal(data, &rows); jsonErr == nil {
			d.log.Debug("dataset snapshot hit", logging.Int("rows", len(rows)))
			return rows, nil
		}
		// Unreadable snapshot, fall through to a fresh load.
	} else if err != goredis.Nil {
		d.log.Warn("dataset snapshot lookup failed", logging.Err(err))
	}

	rows, err := d.inner.Rows(ctx, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rows); err == nil {
		if err := d.client.Set(ctx, key, data, datasetTTL).Err(); err != nil {
			d.log.Warn("dataset snapshot store failed", logging.Err(err))
		}
	}
	return rows, nil
}
