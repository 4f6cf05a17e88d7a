package user

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/blogapi/internal/domain"
	"github.com/simp-lee/blogapi/internal/middleware"
	"github.com/simp-lee/blogapi/internal/pkg"
)

// filterParams maps user directory query parameters to predicates.
var filterParams = []pkg.FilterParam{
	{Query: "name", Field: "name", Kind: domain.PredicateContains},
}

// UserHandler handles REST API requests for the user resource.
type UserHandler struct {
	svc  domain.UserService
	page pkg.PageOptions
}

// NewUserHandler creates a new UserHandler with the given service and
// page parsing options.
func NewUserHandler(svc domain.UserService, page pkg.PageOptions) *UserHandler {
	return &UserHandler{svc: svc, page: page}
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(c *gin.Context) {
	req := pkg.ParsePageRequest(c, h.page)
	filter := pkg.ParseFilter(c, filterParams)

	result, err := h.svc.ListUsers(c.Request.Context(), filter, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := pkg.ParseIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, domain.UserSummary{ID: user.ID, Name: user.Name, CreatedAt: user.CreatedAt})
}

// UpdateProfile handles PUT /api/v1/me.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), userID, req.Name)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, toProfileResponse(user))
}

// Me handles GET /api/v1/me.
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), userID)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, toProfileResponse(user))
}
