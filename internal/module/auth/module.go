package auth

import "github.com/gin-gonic/gin"

// AuthModule mounts registration, login and token refresh under /auth.
type AuthModule struct {
	handler *AuthHandler
}

// NewModule panics if h is nil.
func NewModule(h *AuthHandler) *AuthModule {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &AuthModule{handler: h}
}

func (m *AuthModule) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/register", m.handler.Register)
	public.POST("/auth/login", m.handler.Login)
	protected.POST("/auth/refresh", m.handler.Refresh)
}
