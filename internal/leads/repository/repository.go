// Package repository persists leads, batches, notes and activity rows in Postgres.
package repository

import (
	"context"
	"encoding/json"
	"errors"

	"leaddesk_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("lead not found")
	ErrBatchNotFound = errors.New("batch not found")
	// ErrLockHeld is returned when another agent holds a live lock, or the lead
	// belongs to someone else.
	ErrLockHeld = errors.New("lead is locked by another agent")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool exposes the underlying pool for modules that share the leads tables.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

const leadColumns = `l.id, l.batch_id, l.company_name, l.contact_name, l.phone, l.email, l.address, l.city,
	l.category, l.rating::float8, l.review_count, l.website, l.status, l.potential_level,
	l.assigned_to, l.assigned_at, l.current_agent_id, l.locked_at, l.processed_at, l.appointment_at,
	l.reminder_5h_sent_at, l.reminder_1h_sent_at, l.enrichment, l.created_at, l.updated_at`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		l          domain.Lead
		status     string
		potential  string
		enrichment []byte
	)
	err := row.Scan(
		&l.ID, &l.BatchID, &l.CompanyName, &l.ContactName, &l.Phone, &l.Email, &l.Address, &l.City,
		&l.Category, &l.Rating, &l.ReviewCount, &l.Website, &status, &potential,
		&l.AssignedTo, &l.AssignedAt, &l.CurrentAgentID, &l.LockedAt, &l.ProcessedAt, &l.AppointmentAt,
		&l.Reminder5hAt, &l.Reminder1hAt, &enrichment, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	l.Status = domain.Status(status)
	l.PotentialLevel = domain.Potential(potential)
	if len(enrichment) > 0 {
		l.Enrichment = json.RawMessage(enrichment)
	}
	return l, nil
}

func collectLeads(rows pgx.Rows) ([]domain.Lead, error) {
	defer rows.Close()
	leads := make([]domain.Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func collectIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func metadata(v map[string]any) []byte {
	if len(v) == 0 {
		return []byte("{}")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return raw
}

func insertActivity(ctx context.Context, q pgx.Tx, leadID uuid.UUID, agentID *uuid.UUID, action string, meta map[string]any) error {
	_, err := q.Exec(ctx, `
		INSERT INTO lead_activity_logs (lead_id, agent_id, action, metadata)
		VALUES ($1, $2, $3, $4::jsonb)
	`, leadID, agentID, action, metadata(meta))
	return err
}
