package post

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/blogapi/internal/domain"
	"github.com/simp-lee/blogapi/internal/middleware"
	"github.com/simp-lee/blogapi/internal/pkg"
)

// Query parameters accepted by each listing.
var (
	publicFilterParams = []pkg.FilterParam{
		{Query: "title", Field: "title", Kind: domain.PredicateContains},
	}
	byUserFilterParams = []pkg.FilterParam{
		{Query: "userId", Field: "user_id", Kind: domain.PredicateEquals, Coerce: pkg.CoerceID},
		{Query: "title", Field: "title", Kind: domain.PredicateContains},
	}
	ownFilterParams = []pkg.FilterParam{
		{Query: "title", Field: "title", Kind: domain.PredicateContains},
		{Query: "draft", Field: "draft", Kind: domain.PredicateBoolEquals},
	}
)

// PostHandler handles REST API requests for the post resource.
type PostHandler struct {
	svc  domain.PostService
	page pkg.PageOptions
}

// NewPostHandler creates a new PostHandler with the given service and
// page parsing options.
func NewPostHandler(svc domain.PostService, page pkg.PageOptions) *PostHandler {
	return &PostHandler{svc: svc, page: page}
}

// ListPublished handles GET /api/v1/posts.
func (h *PostHandler) ListPublished(c *gin.Context) {
	req := pkg.ParsePageRequest(c, h.page)
	filter := pkg.ParseFilter(c, publicFilterParams)

	result, err := h.svc.ListPublished(c.Request.Context(), filter, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// ListByUser handles GET /api/v1/posts/by-user.
func (h *PostHandler) ListByUser(c *gin.Context) {
	req := pkg.ParsePageRequest(c, h.page)
	filter := pkg.ParseFilter(c, byUserFilterParams)

	result, err := h.svc.ListPublishedWithAuthor(c.Request.Context(), filter, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Get handles GET /api/v1/posts/:id.
func (h *PostHandler) Get(c *gin.Context) {
	id, err := pkg.ParseIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	detail, err := h.svc.GetPublishedPost(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, detail)
}

// ListOwn handles GET /api/v1/me/posts.
func (h *PostHandler) ListOwn(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}

	req := pkg.ParsePageRequest(c, h.page)
	filter := pkg.ParseFilter(c, ownFilterParams)

	result, err := h.svc.ListOwn(c.Request.Context(), userID, filter, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Create handles POST /api/v1/posts.
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}

	var req CreatePostRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), userID, domain.PostInput{
		Title:     req.Title,
		Content:   req.Content,
		Draft:     req.Draft,
		PublishAt: req.PublishAt,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, "post created successfully", toPostView(*post))
}

// Update handles PUT /api/v1/posts/:id.
func (h *PostHandler) Update(c *gin.Context) {
	userID, postID, ok := h.ownerAndPost(c)
	if !ok {
		return
	}

	var req UpdatePostRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	post, err := h.svc.UpdatePost(c.Request.Context(), userID, postID, domain.PostInput{
		Title:     req.Title,
		Content:   req.Content,
		Draft:     req.Draft,
		PublishAt: req.PublishAt,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, toPostView(*post))
}

// Publish handles POST /api/v1/posts/:id/publish.
func (h *PostHandler) Publish(c *gin.Context) {
	h.transition(c, h.svc.PublishPost)
}

// Unpublish handles POST /api/v1/posts/:id/unpublish.
func (h *PostHandler) Unpublish(c *gin.Context) {
	h.transition(c, h.svc.UnpublishPost)
}

// Delete handles DELETE /api/v1/posts/:id.
func (h *PostHandler) Delete(c *gin.Context) {
	userID, postID, ok := h.ownerAndPost(c)
	if !ok {
		return
	}

	if err := h.svc.DeletePost(c.Request.Context(), userID, postID); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

type transitionFunc func(ctx context.Context, userID, postID uint) (*domain.Post, error)

func (h *PostHandler) transition(c *gin.Context, fn transitionFunc) {
	userID, postID, ok := h.ownerAndPost(c)
	if !ok {
		return
	}

	post, err := fn(c.Request.Context(), userID, postID)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, toPostView(*post))
}

// ownerAndPost extracts the caller and the :id parameter, writing the error
// response itself when either is missing.
func (h *PostHandler) ownerAndPost(c *gin.Context) (uint, uint, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return 0, 0, false
	}
	postID, err := pkg.ParseIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return 0, 0, false
	}
	return userID, postID, true
}
