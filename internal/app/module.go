package app

import "github.com/gin-gonic/gin"

// Module is a self-registering feature module. public is the /api/v1 group;
// protected is the same prefix behind bearer authentication.
type Module interface {
	RegisterRoutes(public, protected *gin.RouterGroup)
}
