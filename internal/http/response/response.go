// Package response renders API payloads and the shared error envelope.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/stationhub-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/stationhub-backend/internal/domain/aggregates"
)

const codePortConflict = "port_conflict"

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the body of every non-2xx response: {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	abort(c, status, APIError{Message: msg, Code: code})
}

// StatusFor maps an aggregate error code to an HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeConflict, domainagg.CodeInvariantViolation:
		return http.StatusConflict
	case domainagg.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondAggregateError renders a station write failure. Port conflicts list the
// offending ports in details; internal failures never echo their cause.
func RespondAggregateError(c *gin.Context, err error) {
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeInternal
	}
	body := APIError{Message: err.Error(), Code: string(code)}

	var ports *aggregates.PortConflictError
	switch {
	case errors.As(err, &ports):
		body = APIError{Message: ports.Error(), Code: codePortConflict, Details: ports.Violations}
	case code == domainagg.CodeInternal:
		body.Message = "internal error"
	case domainagg.Temporary(err):
		c.Header("Retry-After", "1")
	}
	abort(c, StatusFor(code), body)
}

func abort(c *gin.Context, status int, body APIError) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}
