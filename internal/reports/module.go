package reports

import (
	"time"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/email"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the reports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewServiceFromPool wires the digest service to Postgres.
func NewServiceFromPool(pool *pgxpool.Pool, sender email.Sender, loc *time.Location, log *logger.Logger) *Service {
	return NewService(NewRepository(pool), sender, loc, log.WithComponent("reports"))
}

// NewModule mounts the report endpoints. queue may be nil when Redis is not
// configured; triggering then answers 503.
func NewModule(svc *Service, queue Enqueuer, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(svc, queue, val), service: svc}
}

func (m *Module) Name() string {
	return "reports"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.Protected.Group("/reports", access.RequireAction(access.ActionReportsTrigger))
	g.POST("/trigger", m.handler.Trigger)
	g.GET("/daily-digest/preview", m.handler.Preview)
}

var _ apphttp.Module = (*Module)(nil)
