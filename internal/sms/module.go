package sms

import (
	"leaddesk_backend/internal/access"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/internal/leads"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the sms bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewServiceFromConfig wires the gateway from config. The scheduler shares this
// constructor for appointment reminders.
func NewServiceFromConfig(pool *pgxpool.Pool, cfg config.SMSConfig, directory leads.Directory, log *logger.Logger) *Service {
	log = log.WithComponent("sms")
	var gw Gateway
	if cfg.IsSMSEnabled() {
		gw = NewHTTPGateway(cfg.GetSMSGatewayURL(), cfg.GetSMSGatewayKey(), cfg.GetSMSSender())
	} else {
		log.Info("SMS disabled: SMS_GATEWAY_URL not set")
	}
	return NewService(gw, NewRepository(pool), directory, cfg.GetSMSRatePerSecond(), cfg.GetPhoneDefaultRegion(), log)
}

func NewModule(svc *Service, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "sms"
}

func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/sms/bulk", access.RequireAction(access.ActionSMSBulk), m.handler.BulkSend)
}

var _ apphttp.Module = (*Module)(nil)
