package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Recovery converts handler panics into 500 responses so one bad request
// cannot take the process down. The stack is logged, never returned to
// the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("request_id", c.GetString(ContextRequestID)).
				Msg("recovered from panic")

			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Code:    http.StatusInternalServerError,
				Message: "internal server error",
				TraceID: c.GetString(ContextRequestID),
			})
		}()
		c.Next()
	}
}
