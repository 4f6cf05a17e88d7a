package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/blogapi/internal/domain"
	"github.com/simp-lee/blogapi/internal/middleware"
	"github.com/simp-lee/blogapi/internal/pkg"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	svc Service
}

// NewHandler creates an AuthHandler.
func NewHandler(svc Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, "user registered successfully", toAccountResponse(user))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, token)
}

// Refresh handles POST /auth/refresh. The caller must already hold a
// valid token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}

	token, err := h.svc.Refresh(c.Request.Context(), userID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, token)
}
