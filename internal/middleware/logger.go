package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger tags every request with an id, logs its outcome and recovers panics.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Writer.Header().Set(HeaderRequestID, reqID)

		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error().
					Str("request_id", reqID).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("panic", fmt.Sprintf("%v", recovered)).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			logRequest(c, reqID, start)
		}()

		c.Next()
	}
}

func logRequest(c *gin.Context, reqID string, start time.Time) {
	status := c.Writer.Status()

	var ev *zerolog.Event
	switch {
	case status >= http.StatusInternalServerError:
		ev = log.Error()
	case status >= http.StatusBadRequest:
		ev = log.Warn()
	default:
		ev = log.Info()
	}

	ev = ev.
		Str("request_id", reqID).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Str("client_ip", c.ClientIP()).
		Int64("employee_id", c.GetInt64(CtxEmployeeID))

	if len(c.Errors) > 0 {
		ev = ev.Str("errors", c.Errors.String())
	}
	ev.Msg("request")
}
