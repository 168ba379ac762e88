package errors

import (
	"net/http"
	"strings"
)

// ErrorCode identifies a specific failure category.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeValidation         ErrorCode = "COMMON_004"
	ErrCodeSerialization      ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeNotImplemented     ErrorCode = "COMMON_008"

	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "COMMON_000"
)

// Extraction module error codes.
const (
	// ErrCodeExtractParse marks unparsable XML. Fatal for the extraction call:
	// no partial record is ever returned alongside it.
	ErrCodeExtractParse        ErrorCode = "EXT_001"
	ErrCodeExtractEmptyDoc     ErrorCode = "EXT_002"
	ErrCodeExtractInvalidInput ErrorCode = "EXT_003"
)

// Document source error codes.
const (
	// ErrCodeSourceFetch marks a transport failure retrieving the notice
	// document. Retryable by the caller.
	ErrCodeSourceFetch       ErrorCode = "SRC_001"
	ErrCodeSourceBadStatus   ErrorCode = "SRC_002"
	ErrCodeSourceUnavailable ErrorCode = "SRC_003"
)

// Matching module error codes.
const (
	ErrCodeDatasetEmpty     ErrorCode = "MATCH_001"
	ErrCodeDatasetLoad      ErrorCode = "MATCH_002"
	ErrCodeTargetIncomplete ErrorCode = "MATCH_003"
)

// Recommendation module error codes.
const (
	ErrCodeRecommendNoInput ErrorCode = "REC_001"
)

// Infrastructure error codes.
const (
	ErrCodeDatabaseError ErrorCode = "INFRA_001"
	ErrCodeCacheError    ErrorCode = "INFRA_002"
	ErrCodeQueueError    ErrorCode = "INFRA_003"
	ErrCodeStorageError  ErrorCode = "INFRA_004"
)

// errorCodeHTTPStatus maps ErrorCodes to HTTP status codes for API responses.
var errorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeExtractParse:        http.StatusUnprocessableEntity,
	ErrCodeExtractEmptyDoc:     http.StatusUnprocessableEntity,
	ErrCodeExtractInvalidInput: http.StatusBadRequest,

	ErrCodeSourceFetch:       http.StatusBadGateway,
	ErrCodeSourceBadStatus:   http.StatusBadGateway,
	ErrCodeSourceUnavailable: http.StatusServiceUnavailable,

	ErrCodeDatasetEmpty:     http.StatusNotFound,
	ErrCodeDatasetLoad:      http.StatusInternalServerError,
	ErrCodeTargetIncomplete: http.StatusUnprocessableEntity,

	ErrCodeRecommendNoInput: http.StatusUnprocessableEntity,

	ErrCodeDatabaseError: http.StatusInternalServerError,
	ErrCodeCacheError:    http.StatusInternalServerError,
	ErrCodeQueueError:    http.StatusInternalServerError,
	ErrCodeStorageError:  http.StatusInternalServerError,
}

// retryableCodes lists codes whose failures are transient from the caller's
// point of view: retrying the same pipeline run may succeed.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeSourceFetch:        true,
	ErrCodeSourceBadStatus:    true,
	ErrCodeSourceUnavailable:  true,
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeCacheError:         true,
	ErrCodeQueueError:         true,
}

// HTTPStatusForCode returns the HTTP status for a code, defaulting to 500.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the code maps to a 4xx status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// ModuleForCode returns the module prefix of an ErrorCode ("EXT", "SRC", ...).
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
