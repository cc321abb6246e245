package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AgentTotal is one agent's completions in a window.
type AgentTotal struct {
	Name         string
	Completed    int
	Appointments int
	Sold         int
}

// StatusTotal counts completions by outcome.
type StatusTotal struct {
	Status string
	Count  int
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) AgentTotals(ctx context.Context, from, to time.Time) ([]AgentTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.full_name,
		       count(*)::int,
		       count(*) FILTER (WHERE a.metadata->>'status' = 'appointment')::int,
		       count(*) FILTER (WHERE a.metadata->>'status' = 'sold')::int
		FROM lead_activity_logs a
		JOIN profiles p ON p.id = a.agent_id
		WHERE a.action = 'completed' AND a.created_at >= $1 AND a.created_at < $2
		GROUP BY p.id, p.full_name
		ORDER BY 2 DESC, p.full_name
	`, from, to)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (AgentTotal, error) {
		var t AgentTotal
		err := row.Scan(&t.Name, &t.Completed, &t.Appointments, &t.Sold)
		return t, err
	})
}

func (r *Repository) StatusTotals(ctx context.Context, from, to time.Time) ([]StatusTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(metadata->>'status', 'unknown'), count(*)::int
		FROM lead_activity_logs
		WHERE action = 'completed' AND created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 2 DESC, 1
	`, from, to)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (StatusTotal, error) {
		var t StatusTotal
		err := row.Scan(&t.Status, &t.Count)
		return t, err
	})
}

func (r *Repository) CountImported(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads WHERE created_at >= $1 AND created_at < $2`, from, to).Scan(&n)
	return n, err
}

func (r *Repository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads WHERE status = 'pending'`).Scan(&n)
	return n, err
}

// DigestRecipients returns the addresses of active founders and admins.
func (r *Repository) DigestRecipients(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT email FROM profiles
		WHERE is_active AND role IN ('founder', 'admin') AND email <> ''
		ORDER BY email
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
