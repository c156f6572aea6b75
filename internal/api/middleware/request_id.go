package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey     = "request_id"
	requestLoggerKey = "request_logger"
	requestIDHeader  = "X-Request-ID"
)

const requestIDMaxLen = 64

// RequestID tags the request with the caller's X-Request-ID when it is
// usable, otherwise a fresh UUID. The id is echoed in the response and bound
// into a request-scoped logger returned by RequestLogger.
func RequestID(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.NewNop()
	}
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Set(requestLoggerKey, base.With(zap.String("request_id", rid)))
		c.Header(requestIDHeader, rid)

		c.Next()
	}
}

// validRequestID accepts short ids of letters, digits, '-', '_' and '.';
// anything else would end up verbatim in log lines
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > requestIDMaxLen {
		return false
	}
	for _, r := range rid {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}

// RequestLogger returns the logger bound to the current request id, or
// fallback outside RequestID
func RequestLogger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if v, ok := c.Get(requestLoggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return fallback
}
