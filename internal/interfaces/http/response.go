// Package http exposes the analysis pipeline over a JSON REST API.
package http

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oclem/tenderwise/pkg/errors"
)

// errorBody is the uniform error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError maps an error chain onto an HTTP status through its error
// code. Unknown errors become opaque 500s.
func respondError(c *gin.Context, err error) {
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		c.JSON(errors.HTTPStatusForCode(ae.Code), gin.H{"error": errorBody{
			Code:    ae.Code.String(),
			Message: ae.Message,
			Detail:  ae.Detail,
		}})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": errorBody{
		Code:    errors.CodeUnknown.String(),
		Message: "internal error",
	}})
}
