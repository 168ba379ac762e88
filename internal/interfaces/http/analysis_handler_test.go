package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oclem/tenderwise/internal/application/analysis"
	"github.com/oclem/tenderwise/internal/config"
	"github.com/oclem/tenderwise/internal/infrastructure/messaging/kafka"
	"github.com/oclem/tenderwise/pkg/errors"
)

type fakeService struct {
	report  *analysis.Report
	err     error
	lastURL string
}

func (f *fakeService) AnalyzeURL(_ context.Context, url string) (*analysis.Report, error) {
	f.lastURL = url
	return f.report, f.err
}

func (f *fakeService) AnalyzeDocument(context.Context, []byte, string) (*analysis.Report, error) {
	return f.report, f.err
}

func (f *fakeService) GetReport(_ context.Context, id string) (*analysis.Report, error) {
	if f.report != nil && f.report.ID == id {
		return f.report, nil
	}
	return nil, errors.NotFound("report not found")
}

type fakeEnqueuer struct {
	jobs []kafka.AnalysisRequest
	err  error
}

func (f *fakeEnqueuer) EnqueueAnalysis(_ context.Context, req kafka.AnalysisRequest) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, req)
	return nil
}

func newTestRouter(svc analysis.Service, enq AnalysisEnqueuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	return NewRouter(cfg, RouterDeps{
		Analysis: NewAnalysisHandler(svc, enq, nil),
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyze_Sync(t *testing.T) {
	svc := &fakeService{report: &analysis.Report{ID: "r1", SourceURL: "https://x.test/n.xml"}}
	r := newTestRouter(svc, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/analysis", `{"url":"https://x.test/n.xml"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://x.test/n.xml", svc.lastURL)

	var got analysis.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "r1", got.ID)
}

func TestAnalyze_InlineDocument(t *testing.T) {
	svc := &fakeService{report: &analysis.Report{ID: "r2"}}
	r := newTestRouter(svc, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/analysis", `{"document":"<ContractNotice/>"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got analysis.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "r2", got.ID)
}

func TestAnalyze_ValidationErrors(t *testing.T) {
	r := newTestRouter(&fakeService{}, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/analysis", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/analysis", `{"url":"ftp://x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"parse failure", errors.New(errors.ErrCodeExtractParse, "bad xml"), http.StatusUnprocessableEntity},
		{"fetch failure", errors.New(errors.ErrCodeSourceFetch, "refused"), http.StatusBadGateway},
		{"empty dataset", errors.New(errors.ErrCodeDatasetEmpty, "no rows"), http.StatusNotFound},
		{"plain error", assertAnError{}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeService{err: tt.err}, nil)
			w := doJSON(t, r, http.MethodPost, "/api/v1/analysis", `{"url":"https://x.test/n.xml"}`)
			assert.Equal(t, tt.want, w.Code)

			var body struct {
				Error errorBody `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error.Code)
		})
	}
}

type assertAnError struct{}

func (assertAnError) Error() string { return "boom" }

func TestAnalyze_Async(t *testing.T) {
	enq := &fakeEnqueuer{}
	r := newTestRouter(&fakeService{}, enq)

	w := doJSON(t, r, http.MethodPost, "/api/v1/analysis", `{"url":"https://x.test/n.xml","async":true}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, enq.jobs, 1)
	assert.Equal(t, "https://x.test/n.xml", enq.jobs[0].NoticeURL)

	var got enqueuedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "queued", got.Status)
	assert.NotEmpty(t, got.RequestID)
}

func TestAnalyze_AsyncUnconfigured(t *testing.T) {
	r := newTestRouter(&fakeService{}, nil)
	w := doJSON(t, r, http.MethodPost, "/api/v1/analysis", `{"url":"https://x.test/n.xml","async":true}`)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestGetReport(t *testing.T) {
	svc := &fakeService{report: &analysis.Report{ID: "r42"}}
	r := newTestRouter(svc, nil)

	w := doJSON(t, r, http.MethodGet, "/api/v1/reports/r42", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/reports/other", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(&fakeService{}, nil)
	w := doJSON(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
