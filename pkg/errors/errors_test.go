package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := New(ErrCodeExtractParse, "malformed notice XML")
	assert.Equal(t, "[EXT_001] malformed notice XML", err.Error())

	withDetail := err.WithDetail("offset=12")
	assert.Equal(t, "[EXT_001] malformed notice XML: offset=12", withDetail.Error())
	// WithDetail must not mutate the receiver.
	assert.Empty(t, err.Detail)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeSourceFetch, "should be nil"))

	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrCodeSourceFetch, "fetching notice document")
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, ErrCodeSourceFetch, GetCode(err))
}

func TestWrap_PreservesCodeForUnknown(t *testing.T) {
	inner := New(ErrCodeExtractParse, "bad xml")
	outer := Wrap(inner, CodeUnknown, "pipeline failed")
	assert.Equal(t, ErrCodeExtractParse, outer.Code)
}

func TestIsCode_TraversesChain(t *testing.T) {
	inner := New(ErrCodeSourceBadStatus, "HTTP 503")
	wrapped := fmt.Errorf("run aborted: %w", inner)
	assert.True(t, IsCode(wrapped, ErrCodeSourceBadStatus))
	assert.False(t, IsCode(wrapped, ErrCodeExtractParse))
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsParse(New(ErrCodeExtractParse, "x")))
	assert.True(t, IsFetch(New(ErrCodeSourceBadStatus, "x")))
	assert.False(t, IsFetch(New(ErrCodeExtractParse, "x")))
	assert.True(t, IsRetryable(New(ErrCodeSourceFetch, "x")))
	assert.False(t, IsRetryable(New(ErrCodeExtractParse, "x")))
	assert.True(t, IsNotFound(NotFound("no report")))
	assert.True(t, IsValidation(Validation("url", "required")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeCacheError, GetCode(New(ErrCodeCacheError, "x")))
}

func TestHTTPStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatusForCode(ErrCodeExtractParse))
	assert.Equal(t, http.StatusBadGateway, HTTPStatusForCode(ErrCodeSourceFetch))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrorCode("NOPE_999")))
	assert.True(t, IsClientError(ErrCodeBadRequest))
	assert.False(t, IsClientError(ErrCodeDatabaseError))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "EXT", ModuleForCode(ErrCodeExtractParse))
	assert.Equal(t, "SRC", ModuleForCode(ErrCodeSourceBadStatus))
	assert.Equal(t, "MATCH", ModuleForCode(ErrCodeDatasetEmpty))
}
