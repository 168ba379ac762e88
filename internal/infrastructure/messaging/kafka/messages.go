// Package kafka carries analysis jobs between the API and the worker. The
// API publishes AnalysisRequest messages; the worker consumes them, runs the
// pipeline, and publishes AnalysisCompleted events.
package kafka

import "time"

// AnalysisRequest asks the worker to analyze a notice by URL.
type AnalysisRequest struct {
	RequestID   string    `json:"request_id"`
	NoticeURL   string    `json:"notice_url"`
	RequestedAt time.Time `json:"requested_at"`
}

// AnalysisCompleted announces a finished analysis and where to find it.
type AnalysisCompleted struct {
	RequestID   string    `json:"request_id,omitempty"`
	ReportID    string    `json:"report_id"`
	NoticeURL   string    `json:"notice_url"`
	CompletedAt time.Time `json:"completed_at"`
}
