// Package auth provides the authentication and team administration module.
package auth

import (
	"fmt"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/auth/handler"
	"leaddesk_backend/internal/auth/repository"
	"leaddesk_backend/internal/auth/service"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.SessionConfig, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := val.RegisterOneOf("role", access.RoleNames()...); err != nil {
		return nil, fmt.Errorf("register role validator: %w", err)
	}

	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	return &Module{
		handler: handler.New(svc, cfg, val),
		repo:    repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// ProfileLoader exposes the repository for the session gate.
func (m *Module) ProfileLoader() access.ProfileLoader {
	return m.repo
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/me", m.handler.GetMe)

	team := ctx.Protected.Group("/team", access.RequireAction(access.ActionTeamManage))
	m.handler.RegisterTeamRoutes(team)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
