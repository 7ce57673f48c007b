package middleware

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/medremind/reminder-api/pkg/errors"
)

// ErrorResponse is the body rendered for middleware-level failures
// (timeouts, panics, drained handler errors).
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorHandler drains errors attached via c.Error, logs each with the
// request id, and renders the last one. AppError values keep their mapped
// status code; anything else becomes an opaque 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", requestID).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("request error")
		}

		if c.Writer.Written() {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"
		var appErr *errors.AppError
		if stderrors.As(c.Errors.Last().Err, &appErr) {
			status = appErr.StatusCode()
			message = appErr.Error()
		}

		c.JSON(status, ErrorResponse{
			Code:    status,
			Message: message,
			TraceID: requestID,
		})
	}
}
