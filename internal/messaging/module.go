// Package messaging provides direct messages and team broadcasts.
package messaging

import (
	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/events"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/internal/messaging/handler"
	"leaddesk_backend/internal/messaging/repository"
	"leaddesk_backend/internal/messaging/service"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the messaging bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), eventBus, log.WithComponent("messaging"))
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string {
	return "messaging"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	use := access.RequireAction(access.ActionMessagesUse)
	m.handler.RegisterRoutes(
		ctx.Protected.Group("/messages", use),
		ctx.Protected.Group("/broadcasts", use),
	)
}

var _ apphttp.Module = (*Module)(nil)
