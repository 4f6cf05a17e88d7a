package user

import "github.com/gin-gonic/gin"

// UserModule implements the app.Module interface for the user domain.
type UserModule struct {
	handler *UserHandler
}

// NewModule creates a new UserModule with the given handler.
// Panics if h is nil.
func NewModule(h *UserHandler) *UserModule {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &UserModule{handler: h}
}

// RegisterRoutes registers the user directory on public and the caller's
// profile on protected.
func (m *UserModule) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/users", m.handler.List)
	public.GET("/users/:id", m.handler.Get)

	protected.GET("/me", m.handler.Me)
	protected.PUT("/me", m.handler.UpdateProfile)
}
