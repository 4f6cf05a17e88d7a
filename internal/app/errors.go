package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/blogapi/internal/pkg"
)

func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "not found")
	}
}

func noMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// renderError writes the standard JSON error envelope for failures that
// happen outside a module handler.
func renderError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, pkg.Response{Code: code, Message: message})
}
