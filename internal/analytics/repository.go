package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads completion statistics from the activity log.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CompletionCounts returns active agents (and anyone else who completed
// something) with their completion counts since since.
func (r *Repository) CompletionCounts(ctx context.Context, since time.Time) ([]LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.full_name, COALESCE(c.n, 0)::int
		FROM profiles p
		LEFT JOIN (
			SELECT agent_id, count(*) AS n
			FROM lead_activity_logs
			WHERE action = 'completed' AND created_at >= $1
			GROUP BY agent_id
		) c ON c.agent_id = p.id
		WHERE p.is_active AND (p.role = 'agent' OR c.n > 0)
	`, since)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (LeaderboardEntry, error) {
		var e LeaderboardEntry
		err := row.Scan(&e.AgentID, &e.AgentName, &e.Count)
		return e, err
	})
}

// RecentCompletionTimes returns up to limit completion timestamps for agent, newest first.
func (r *Repository) RecentCompletionTimes(ctx context.Context, agentID uuid.UUID, limit int) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT created_at FROM lead_activity_logs
		WHERE agent_id = $1 AND action = 'completed'
		ORDER BY created_at DESC
		LIMIT $2
	`, agentID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}

// CountCompletionsSince counts agent's completions from since onwards.
func (r *Repository) CountCompletionsSince(ctx context.Context, agentID uuid.UUID, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM lead_activity_logs
		WHERE agent_id = $1 AND action = 'completed' AND created_at >= $2
	`, agentID, since).Scan(&n)
	return n, err
}

// CountPending counts agent's pending leads.
func (r *Repository) CountPending(ctx context.Context, agentID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads WHERE assigned_to = $1 AND status = 'pending'`, agentID).Scan(&n)
	return n, err
}

// TeamRow is one agent's raw figures for the team report.
type TeamRow struct {
	AgentID          uuid.UUID
	AgentName        string
	ByStatus         map[string]int
	Completed        int
	Pending          int
	AvgHandleSeconds *float64
}

// TeamStats aggregates completions by status, the pending backlog and the
// average time from lock to completion for every active profile.
func (r *Repository) TeamStats(ctx context.Context, since time.Time) ([]TeamRow, error) {
	rows, err := r.pool.Query(ctx, `
		WITH done AS (
			SELECT a.agent_id, a.lead_id, a.created_at, a.metadata->>'status' AS status
			FROM lead_activity_logs a
			WHERE a.action = 'completed' AND a.created_at >= $1 AND a.agent_id IS NOT NULL
		),
		handled AS (
			SELECT d.agent_id, EXTRACT(EPOCH FROM d.created_at - lk.created_at) AS secs
			FROM done d
			JOIN LATERAL (
				SELECT created_at FROM lead_activity_logs l
				WHERE l.lead_id = d.lead_id AND l.agent_id = d.agent_id
					AND l.action = 'locked' AND l.created_at <= d.created_at
				ORDER BY l.created_at DESC
				LIMIT 1
			) lk ON TRUE
		)
		SELECT p.id, p.full_name,
			COALESCE((SELECT jsonb_object_agg(s.status, s.n) FROM (
				SELECT status, count(*) AS n FROM done WHERE agent_id = p.id GROUP BY status
			) s), '{}'::jsonb),
			(SELECT count(*) FROM done WHERE agent_id = p.id)::int,
			(SELECT count(*) FROM leads WHERE assigned_to = p.id AND status = 'pending')::int,
			(SELECT avg(secs)::float8 FROM handled WHERE agent_id = p.id)
		FROM profiles p
		WHERE p.is_active
		ORDER BY p.full_name, p.id
	`, since)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (TeamRow, error) {
		var t TeamRow
		err := row.Scan(&t.AgentID, &t.AgentName, &t.ByStatus, &t.Completed, &t.Pending, &t.AvgHandleSeconds)
		return t, err
	})
}

// Outcomes groups completions since since by predicted potential and status.
func (r *Repository) Outcomes(ctx context.Context, since time.Time, agentID *uuid.UUID) ([]Outcome, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT metadata->>'potentialLevel', metadata->>'status', count(*)::int
		FROM lead_activity_logs
		WHERE action = 'completed' AND created_at >= $1
			AND ($2::uuid IS NULL OR agent_id = $2)
		GROUP BY 1, 2
	`, since, agentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Outcome, error) {
		var (
			o                 Outcome
			potential, status *string
		)
		err := row.Scan(&potential, &status, &o.Count)
		if potential != nil {
			o.Potential = *potential
		}
		if status != nil {
			o.Status = *status
		}
		return o, err
	})
}
