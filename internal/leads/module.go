// Package leads provides the lead pool bounded context module: uploads,
// distribution between agents, working locks and completion.
package leads

import (
	"fmt"

	"leaddesk_backend/internal/events"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/internal/leads/handler"
	"leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/internal/leads/service"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is what the leads module reads from the application config.
type Config interface {
	config.LeadWorkflowConfig
	GetMaxUploadSize() int64
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule wires the lead repository, service and handler. archive may be nil
// when object storage is not configured.
func NewModule(pool *pgxpool.Pool, archive service.UploadArchive, eventBus events.Bus, val *validator.Validator, cfg Config, log *logger.Logger) (*Module, error) {
	if err := RegisterValidators(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, archive, eventBus, cfg, log.WithComponent("leads"))

	return &Module{
		handler: handler.New(svc, val, cfg.GetMaxUploadSize()),
		service: svc,
		repo:    repo,
	}, nil
}

// RegisterValidators adds the lead enum tags used by request DTOs.
func RegisterValidators(val *validator.Validator) error {
	if err := val.RegisterOneOf("leadstatus", domain.StatusNames()...); err != nil {
		return fmt.Errorf("register leadstatus validator: %w", err)
	}
	if err := val.RegisterOneOf("potential", domain.PotentialNames()...); err != nil {
		return fmt.Errorf("register potential validator: %w", err)
	}
	return nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service exposes the lead workflow for the scheduler and the CLI.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the lead store for modules that read lead rows directly.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
