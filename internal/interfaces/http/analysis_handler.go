package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oclem/tenderwise/internal/application/analysis"
	"github.com/oclem/tenderwise/internal/infrastructure/messaging/kafka"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
	"github.com/oclem/tenderwise/pkg/errors"
)

// AnalysisEnqueuer hands async analysis jobs to the worker.
type AnalysisEnqueuer interface {
	EnqueueAnalysis(ctx context.Context, req kafka.AnalysisRequest) error
}

// AnalysisHandler serves analysis requests and report lookups.
type AnalysisHandler struct {
	svc      analysis.Service
	enqueuer AnalysisEnqueuer
	log      logging.Logger
}

// NewAnalysisHandler builds the handler. enqueuer may be nil, disabling
// async mode.
func NewAnalysisHandler(svc analysis.Service, enqueuer AnalysisEnqueuer, log logging.Logger) *AnalysisHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &AnalysisHandler{svc: svc, enqueuer: enqueuer, log: log.Named("http")}
}

type analyzeRequest struct {
	// URL of the notice document. Either URL or Document is required.
	URL string `json:"url"`

	// Document is raw notice XML analyzed in place of a fetch.
	Document string `json:"document"`

	Async bool `json:"async"`
}

type enqueuedResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// Analyze runs the pipeline synchronously, or enqueues it when async is
// requested.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Validation("url", "a notice URL or document is required"))
		return
	}

	if req.Document != "" {
		report, err := h.svc.AnalyzeDocument(c.Request.Context(), []byte(req.Document), req.URL)
		if err != nil {
			h.log.Warn("document analysis failed", logging.Err(err))
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
		return
	}

	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		respondError(c, errors.Validation("url", "notice URL must be http(s)"))
		return
	}

	if req.Async {
		if h.enqueuer == nil {
			respondError(c, errors.New(errors.ErrCodeNotImplemented, "async analysis is not configured"))
			return
		}
		job := kafka.AnalysisRequest{
			RequestID:   uuid.NewString(),
			NoticeURL:   req.URL,
			RequestedAt: time.Now().UTC(),
		}
		if err := h.enqueuer.EnqueueAnalysis(c.Request.Context(), job); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, enqueuedResponse{RequestID: job.RequestID, Status: "queued"})
		return
	}

	report, err := h.svc.AnalyzeURL(c.Request.Context(), req.URL)
	if err != nil {
		h.log.Warn("analysis failed", logging.String("url", req.URL), logging.Err(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetReport returns a cached report by id.
func (h *AnalysisHandler) GetReport(c *gin.Context) {
	id := c.Param("id")
	report, err := h.svc.GetReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
