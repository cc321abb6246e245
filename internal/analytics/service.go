package analytics

import (
	"context"
	"fmt"
	"time"

	"leaddesk_backend/internal/events"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the query surface the service needs.
type Store interface {
	CompletionCounts(ctx context.Context, since time.Time) ([]LeaderboardEntry, error)
	RecentCompletionTimes(ctx context.Context, agentID uuid.UUID, limit int) ([]time.Time, error)
	CountCompletionsSince(ctx context.Context, agentID uuid.UUID, since time.Time) (int, error)
	CountPending(ctx context.Context, agentID uuid.UUID) (int, error)
	TeamStats(ctx context.Context, since time.Time) ([]TeamRow, error)
	Outcomes(ctx context.Context, since time.Time, agentID *uuid.UUID) ([]Outcome, error)
}

var _ Store = (*Repository)(nil)

// PersonalStats is the caller's own line on the leaderboard.
type PersonalStats struct {
	Count  int  `json:"count"`
	Rank   *int `json:"rank"`
	Streak int  `json:"streak"`
}

type Leaderboard struct {
	Days    int                `json:"days"`
	Since   time.Time          `json:"since"`
	Entries []LeaderboardEntry `json:"entries"`
}

type LeaderboardView struct {
	Leaderboard
	Personal PersonalStats `json:"personal"`
}

type TeamMember struct {
	AgentID          uuid.UUID      `json:"agentId"`
	AgentName        string         `json:"agentName"`
	Completed        int            `json:"completed"`
	ByStatus         map[string]int `json:"byStatus"`
	ConversionRate   float64        `json:"conversionRate"`
	Pending          int            `json:"pending"`
	AvgHandleSeconds *float64       `json:"avgHandleSeconds"`
}

type Service struct {
	store Store
	cache Cache
	rules Rules
	cfg   config.AnalyticsConfig
	log   *logger.Logger
	now   func() time.Time
}

func NewService(store Store, cache Cache, rules Rules, cfg config.AnalyticsConfig, log *logger.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{store: store, cache: cache, rules: rules, cfg: cfg, log: log, now: time.Now}
}

// OnLeadCompleted drops cached leaderboards so the next read sees the new count.
func (s *Service) OnLeadCompleted(ctx context.Context, event events.Event) error {
	if _, ok := event.(events.LeadCompleted); !ok {
		return nil
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.log.Warn("analytics cache invalidation failed", "error", err)
	}
	return nil
}

// Leaderboard returns the ranked completion counts for the last days days.
func (s *Service) Leaderboard(ctx context.Context, days int) (Leaderboard, error) {
	if days < 1 || days > 366 {
		return Leaderboard{}, apperr.Validation("days must be between 1 and 366")
	}
	since := WindowStart(s.now(), days, s.cfg.GetTimezone())
	key := fmt.Sprintf("leaderboard:%d:%s", days, since.Format("2006-01-02"))

	var board Leaderboard
	if hit, err := s.cache.Get(ctx, key, &board); err != nil {
		s.log.Warn("analytics cache read failed", "key", key, "error", err)
	} else if hit {
		return board, nil
	}

	entries, err := s.store.CompletionCounts(ctx, since)
	if err != nil {
		return Leaderboard{}, apperr.Upstream(err)
	}
	board = Leaderboard{Days: days, Since: since, Entries: RankLeaderboard(entries)}

	if err := s.cache.Set(ctx, key, board, s.cfg.GetAnalyticsCacheTTL()); err != nil {
		s.log.Warn("analytics cache write failed", "key", key, "error", err)
	}
	return board, nil
}

// LeaderboardFor adds the caller's personal stats to the leaderboard.
func (s *Service) LeaderboardFor(ctx context.Context, agentID uuid.UUID, days int) (LeaderboardView, error) {
	board, err := s.Leaderboard(ctx, days)
	if err != nil {
		return LeaderboardView{}, err
	}
	streak, err := s.Streak(ctx, agentID)
	if err != nil {
		return LeaderboardView{}, err
	}

	view := LeaderboardView{Leaderboard: board, Personal: PersonalStats{Streak: streak}}
	for _, e := range board.Entries {
		if e.AgentID == agentID {
			rank := e.Rank
			view.Personal.Count = e.Count
			view.Personal.Rank = &rank
			break
		}
	}
	return view, nil
}

func (s *Service) Streak(ctx context.Context, agentID uuid.UUID) (int, error) {
	times, err := s.store.RecentCompletionTimes(ctx, agentID, StreakWindow)
	if err != nil {
		return 0, apperr.Upstream(err)
	}
	return Streak(times, s.cfg.GetStreakGap()), nil
}

func (s *Service) snapshot(ctx context.Context, agentID uuid.UUID) (AgentSnapshot, error) {
	now := s.now()
	snap := AgentSnapshot{Now: now}

	times, err := s.store.RecentCompletionTimes(ctx, agentID, StreakWindow)
	if err != nil {
		return snap, apperr.Upstream(err)
	}
	snap.Streak = Streak(times, s.cfg.GetStreakGap())
	if len(times) > 0 {
		last := times[0]
		snap.LastCompletion = &last
	}
	burstSince := now.Add(-s.rules.SpeedBurst.Window)
	for _, t := range times {
		if t.Before(burstSince) {
			break
		}
		snap.BurstCount++
	}

	if snap.TodayCount, err = s.store.CountCompletionsSince(ctx, agentID, WindowStart(now, 1, s.cfg.GetTimezone())); err != nil {
		return snap, apperr.Upstream(err)
	}
	if snap.Pending, err = s.store.CountPending(ctx, agentID); err != nil {
		return snap, apperr.Upstream(err)
	}
	return snap, nil
}

// Insights evaluates every rule against the agent's current figures.
func (s *Service) Insights(ctx context.Context, agentID uuid.UUID) ([]Insight, error) {
	snap, err := s.snapshot(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return s.rules.Evaluate(snap, false), nil
}

// Notifications is Insights restricted to what just happened.
func (s *Service) Notifications(ctx context.Context, agentID uuid.UUID) ([]Insight, error) {
	snap, err := s.snapshot(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return s.rules.Evaluate(snap, true), nil
}

// Team reports per-agent figures for managers.
func (s *Service) Team(ctx context.Context, days int) ([]TeamMember, error) {
	if days < 1 || days > 366 {
		return nil, apperr.Validation("days must be between 1 and 366")
	}
	rows, err := s.store.TeamStats(ctx, WindowStart(s.now(), days, s.cfg.GetTimezone()))
	if err != nil {
		return nil, apperr.Upstream(err)
	}

	members := make([]TeamMember, 0, len(rows))
	for _, r := range rows {
		byStatus := r.ByStatus
		if byStatus == nil {
			byStatus = map[string]int{}
		}
		members = append(members, TeamMember{
			AgentID:          r.AgentID,
			AgentName:        r.AgentName,
			Completed:        r.Completed,
			ByStatus:         byStatus,
			ConversionRate:   ConversionRate(byStatus["sold"], byStatus["appointment"], r.Completed),
			Pending:          r.Pending,
			AvgHandleSeconds: r.AvgHandleSeconds,
		})
	}
	return members, nil
}

// Oracle scores potential-level predictions, for one agent or the whole team.
func (s *Service) Oracle(ctx context.Context, days int, agentID *uuid.UUID) (OracleResult, error) {
	if days < 1 || days > 366 {
		return OracleResult{}, apperr.Validation("days must be between 1 and 366")
	}
	outcomes, err := s.store.Outcomes(ctx, WindowStart(s.now(), days, s.cfg.GetTimezone()), agentID)
	if err != nil {
		return OracleResult{}, apperr.Upstream(err)
	}
	return OracleScore(outcomes), nil
}
