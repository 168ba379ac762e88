// Package fetch retrieves notice XML documents from procurement platforms
// over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oclem/tenderwise/internal/config"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
	"github.com/oclem/tenderwise/pkg/errors"
)

// maxDocumentSize bounds a notice download. Real CODICE documents run tens
// of kilobytes; anything above this is not a notice.
const maxDocumentSize = 16 << 20

// HTTPFetcher downloads documents with a browser-like User-Agent. The
// contracting platform rejects requests with a default Go client UA.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	log       logging.Logger
}

// NewHTTPFetcher builds a fetcher from config.
func NewHTTPFetcher(cfg config.FetchConfig, log logging.Logger) *HTTPFetcher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		log:       log.Named("fetch"),
	}
}

// Fetch downloads the document at url. Transport failures map to
// ErrCodeSourceFetch and non-2xx responses to ErrCodeSourceBadStatus, both
// retryable.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExtractInvalidInput, "invalid notice URL")
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	started := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceFetch, "fetching notice document")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(errors.ErrCodeSourceBadStatus,
			fmt.Sprintf("notice source returned HTTP %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceFetch, "reading notice document")
	}

	f.log.Debug("notice fetched",
		logging.String("url", url),
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return data, nil
}
