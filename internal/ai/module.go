package ai

import (
	"context"

	"leaddesk_backend/internal/access"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/internal/leads"
	"leaddesk_backend/platform/ai/gemini"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"
)

// Module is the ai bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule wires the LLM client when an API key is configured. Without one
// the routes stay mounted and answer 503.
func NewModule(ctx context.Context, cfg config.AIConfig, directory leads.Directory, val *validator.Validator, log *logger.Logger) (*Module, error) {
	log = log.WithComponent("ai")

	var gen Generator
	if cfg.IsAIEnabled() {
		model, err := gemini.NewModel(ctx, gemini.Config{APIKey: cfg.GetGeminiAPIKey(), Model: cfg.GetGeminiModel()})
		if err != nil {
			return nil, err
		}
		gen = model
		log.Info("AI enabled", "model", model.Name())
	} else {
		log.Info("AI disabled: GEMINI_API_KEY not set")
	}

	return &Module{handler: NewHandler(NewService(gen, directory, log), val)}, nil
}

func (m *Module) Name() string {
	return "ai"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.Protected.Group("/ai")
	g.POST("/enrich/:leadId", access.RequireAction(access.ActionAIEnrich), m.handler.Enrich)

	sms := g.Group("/sms", access.RequireAction(access.ActionAISMSDraft))
	sms.POST("/draft", m.handler.DraftSMS)
	sms.POST("/correct", m.handler.CorrectSMS)
}

var _ apphttp.Module = (*Module)(nil)
