package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/blogapi/internal/domain"
	"github.com/simp-lee/blogapi/internal/pkg"
)

const userIDContextKey = "user_id"

// TokenVerifier resolves a bearer token to the id of the user it was issued to.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (uint, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer <token>"
// header with 401. On success the caller's user id is available through
// CurrentUserID and is attached to the request's log context.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, "missing bearer token", nil))
			c.Abort()
			return
		}

		userID, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil || userID == 0 {
			pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, "invalid or expired token", err))
			c.Abort()
			return
		}

		c.Set(userIDContextKey, userID)
		ctx := logger.WithContextAttrs(c.Request.Context(), slog.Uint64("user_id", uint64(userID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CurrentUserID returns the authenticated caller set by RequireAuth.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(userIDContextKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
