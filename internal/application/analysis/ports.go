// Package analysis orchestrates the full pipeline: fetch a notice document,
// extract its contract data, score it against the historical dataset,
// recommend a bid discount, and render the narrative report.
package analysis

import (
	"context"

	"github.com/oclem/tenderwise/internal/domain/matching"
)

// DocumentFetcher retrieves a notice XML document by URL.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ContractDataset loads historical contract rows for scoring.
type ContractDataset interface {
	Rows(ctx context.Context, limit int) ([]matching.Row, error)
}

// ReportCache stores finished reports for retrieval by id. Implementations
// are expected to expire entries on their own.
type ReportCache interface {
	GetReport(ctx context.Context, id string) (*Report, error)
	PutReport(ctx context.Context, report *Report) error
}

// ReportArchiver persists finished reports durably (object storage).
type ReportArchiver interface {
	Archive(ctx context.Context, report *Report) error
}

// CompletionNotifier announces finished analyses to downstream consumers.
type CompletionNotifier interface {
	AnalysisCompleted(ctx context.Context, reportID, sourceURL string) error
}
