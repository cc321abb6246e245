// Package http provides HTTP server infrastructure including the Module interface
// that all domain modules must implement for route registration.
package http

import (
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP routes.
// Each domain module implements this interface to encapsulate its own
// route setup, keeping the main router decoupled from specific endpoints.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes on the provided router group.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
type RouterContext struct {
	// Engine is the root Gin engine for modules that need engine-level access.
	Engine *gin.Engine
	// V1 is the /api/v1 route group.
	V1 *gin.RouterGroup
	// Protected is the /api/v1 group behind the session gate. Handlers mounted
	// here see the caller's identity with a freshly loaded role.
	Protected *gin.RouterGroup
	// Config is the session configuration (scoped access).
	Config config.SessionConfig
	// AuthRateLimiter is the stricter rate limiter for sign-in.
	AuthRateLimiter *httpkit.IPRateLimiter
}
