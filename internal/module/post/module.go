package post

import "github.com/gin-gonic/gin"

// PostModule implements the app.Module interface for the post domain.
type PostModule struct {
	handler *PostHandler
}

// NewModule creates a new PostModule with the given handler.
// Panics if h is nil.
func NewModule(h *PostHandler) *PostModule {
	if h == nil {
		panic("post.NewModule: handler must not be nil")
	}
	return &PostModule{handler: h}
}

// RegisterRoutes registers the public post listings on public and the
// authoring routes on protected.
func (m *PostModule) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/posts", m.handler.ListPublished)
	public.GET("/posts/by-user", m.handler.ListByUser)
	public.GET("/posts/:id", m.handler.Get)

	protected.GET("/me/posts", m.handler.ListOwn)
	protected.POST("/posts", m.handler.Create)
	protected.PUT("/posts/:id", m.handler.Update)
	protected.POST("/posts/:id/publish", m.handler.Publish)
	protected.POST("/posts/:id/unpublish", m.handler.Unpublish)
	protected.DELETE("/posts/:id", m.handler.Delete)
}
