package exports

import (
	"time"

	"leaddesk_backend/internal/access"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/internal/leads"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the exports module.
func NewModule(source leads.Exporter, val *validator.Validator, loc *time.Location, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(source, val, loc, log.WithComponent("exports"))}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts export routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.Protected.Group("/exports", access.RequireAction(access.ActionLeadExport))
	g.GET("/leads.csv", m.handler.ExportLeadsCSV)
}

var _ apphttp.Module = (*Module)(nil)
