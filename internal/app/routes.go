package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/blogapi/internal/config"
	"github.com/simp-lee/blogapi/internal/middleware"
)

const (
	apiPrefix          = "/api/v1"
	healthPath         = "/health"
	healthCheckTimeout = time.Second
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules  []Module
	DB       *gorm.DB
	Verifier middleware.TokenVerifier
}

// RegisterRoutes registers the health check and every module under /api/v1.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}
	if deps.Verifier == nil {
		return errors.New("token verifier is required")
	}

	r.GET(healthPath, healthHandler(deps.DB))

	api := r.Group(apiPrefix)
	protected := api.Group("", middleware.RequireAuth(deps.Verifier))

	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api, protected)
	}

	r.NoRoute(noRouteHandler())
	r.NoMethod(noMethodHandler())

	return nil
}

// healthHandler pings the database and reports per-component status.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, dbStatus, code := "ok", "ok", http.StatusOK

		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := config.Ping(ctx, db); err != nil {
			status, dbStatus, code = "degraded", "error", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}
