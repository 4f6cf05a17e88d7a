package middleware

import (
	"log/slog"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
)

// Upstream ids are echoed into headers and logs, so only short opaque tokens
// are accepted.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// RequestIDConfig configures RequestIDWithConfig.
type RequestIDConfig struct {
	// TrustUpstream reuses a well-formed incoming X-Request-ID.
	TrustUpstream bool
	// Generator creates new ids. Defaults to uuid.NewString.
	Generator func() string
}

// RequestID tags every request with a fresh UUID.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig tags every request with an id. The id is echoed in the
// X-Request-ID response header, stored in the gin context and attached to the
// request context so every log line of the request carries request_id.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	generate := cfg.Generator
	if generate == nil {
		generate = uuid.NewString
	}

	return func(c *gin.Context) {
		id := resolveRequestID(c.GetHeader(requestIDHeader), cfg.TrustUpstream, generate)

		c.Set(requestIDContextKey, id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(
			logger.WithContextAttrs(c.Request.Context(), slog.String("request_id", id)),
		)

		c.Next()
	}
}

func resolveRequestID(upstream string, trust bool, generate func() string) string {
	if trust && requestIDPattern.MatchString(upstream) {
		return upstream
	}
	return generate()
}

// GetRequestID returns the id set by the middleware, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}
