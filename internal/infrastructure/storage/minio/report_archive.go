// Package minio archives finished analysis reports as JSON objects so they
// outlive the cache TTL.
package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/oclem/tenderwise/internal/application/analysis"
	"github.com/oclem/tenderwise/internal/config"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
	"github.com/oclem/tenderwise/pkg/errors"
)

// ReportArchive stores reports under reports/YYYY/MM/<id>.json.
type ReportArchive struct {
	client *miniogo.Client
	bucket string
	log    logging.Logger
}

// Connect opens the object storage client and ensures the bucket exists.
func Connect(ctx context.Context, cfg config.StorageConfig, log logging.Logger) (*ReportArchive, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "creating storage client")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "checking bucket")
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, miniogo.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeStorageError, "creating bucket")
		}
	}

	log.Info("report archive ready", logging.String("bucket", cfg.Bucket))
	return &ReportArchive{client: client, bucket: cfg.Bucket, log: log.Named("report_archive")}, nil
}

// Archive writes the report as a JSON object.
func (a *ReportArchive) Archive(ctx context.Context, report *analysis.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding report")
	}

	key := objectKey(report.ID, report.CreatedAt)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "storing report object")
	}

	a.log.Debug("report archived", logging.String("key", key))
	return nil
}

func objectKey(id string, createdAt time.Time) string {
	return fmt.Sprintf("reports/%04d/%02d/%s.json", createdAt.Year(), int(createdAt.Month()), id)
}
