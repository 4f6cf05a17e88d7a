package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"

	"github.com/simp-lee/blogapi/internal/pkg"
)

// limiterIdleTTL is how long a client's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	RPS   int
	Burst int
}

// RateLimit returns a middleware that limits each client IP to cfg.RPS
// requests per second with bursts of cfg.Burst. Rejected requests get 429
// with a Retry-After header and the usual response envelope.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	store := ginx.NewMemoryLimiterStore(limiterIdleTTL)

	return ginx.NewChain().
		WithErrorFormat(envelopeError).
		Use(ginx.RateLimit(cfg.RPS, cfg.Burst, ginx.WithIP(), ginx.WithStore(store))).
		Build()
}

// StopRateLimiters releases every limiter store created by RateLimit. Call it
// only after the HTTP server has stopped serving requests.
func StopRateLimiters() {
	ginx.CleanupRateLimiters()
}

func envelopeError(status int, message string) any {
	return pkg.Response{Code: status, Message: message}
}
