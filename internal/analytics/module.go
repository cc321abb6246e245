package analytics

import (
	"fmt"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/events"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the analytics bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule wires analytics. rdb may be nil, in which case nothing is cached.
func NewModule(pool *pgxpool.Pool, rdb *redis.Client, bus events.Bus, val *validator.Validator, cfg config.AnalyticsConfig, log *logger.Logger) (*Module, error) {
	rules, err := LoadRules(cfg.GetInsightRulesPath())
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}

	var cache Cache = NopCache{}
	if rdb != nil {
		cache = NewRedisCache(rdb, "leaddesk:analytics")
	}

	svc := NewService(NewRepository(pool), cache, rules, cfg, log.WithComponent("analytics"))
	if bus != nil {
		bus.Subscribe(events.LeadCompleted{}.EventName(), events.HandlerFunc(svc.OnLeadCompleted))
	}

	return &Module{handler: NewHandler(svc, val), service: svc}, nil
}

func (m *Module) Name() string {
	return "analytics"
}

// Service exposes analytics to the CLI.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.Protected.Group("/analytics")
	self := access.RequireAction(access.ActionAnalyticsSelf)
	g.GET("/leaderboard", self, m.handler.Leaderboard)
	g.GET("/insights", self, m.handler.Insights)
	g.GET("/notifications", self, m.handler.Notifications)
	g.GET("/oracle", self, m.handler.Oracle)
	g.GET("/team", access.RequireAction(access.ActionAnalyticsTeam), m.handler.Team)
}

var _ apphttp.Module = (*Module)(nil)
