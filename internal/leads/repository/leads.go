package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CreateLeadParams struct {
	CompanyName string
	ContactName string
	Phone       string
	Email       string
	Address     string
	City        string
	Category    string
	Rating      *float64
	ReviewCount int
	Website     string
	CreatedBy   uuid.UUID
}

// CreateLead inserts a pending, unassigned lead and its `created` activity row.
func (r *Repository) CreateLead(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	var lead domain.Lead
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		lead, err = scanLead(tx.QueryRow(ctx, `
			INSERT INTO leads AS l (company_name, contact_name, phone, email, address, city, category, rating, review_count, website)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING `+leadColumns,
			params.CompanyName, params.ContactName, params.Phone, params.Email, params.Address,
			params.City, params.Category, params.Rating, params.ReviewCount, params.Website))
		if err != nil {
			return err
		}
		return insertActivity(ctx, tx, lead.ID, &params.CreatedBy, domain.ActionCreated, map[string]any{"source": "manual"})
	})
	return lead, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads l WHERE l.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

// ListParams filters the lead list. Zero values mean "no filter".
type ListParams struct {
	Status     *domain.Status
	BatchID    *uuid.UUID
	AssignedTo *uuid.UUID
	Unassigned bool
	Search     string
	Limit      int
	Offset     int
}

func (p ListParams) where() (string, []any) {
	clauses := []string{"TRUE"}
	args := make([]any, 0, 4)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if p.Status != nil {
		add("l.status = $%d", string(*p.Status))
	}
	if p.BatchID != nil {
		add("l.batch_id = $%d", *p.BatchID)
	}
	if p.AssignedTo != nil {
		add("l.assigned_to = $%d", *p.AssignedTo)
	}
	if p.Unassigned {
		clauses = append(clauses, "l.assigned_to IS NULL")
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(l.company_name ILIKE $%d OR l.contact_name ILIKE $%d OR l.phone ILIKE $%d OR l.city ILIKE $%d)", n, n, n, n))
	}
	return strings.Join(clauses, " AND "), args
}

// List returns one page of leads and the total matching count.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	where, args := params.where()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads l WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, params.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM leads l
		WHERE %s
		ORDER BY l.created_at DESC, l.id
		LIMIT $%d OFFSET $%d
	`, leadColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	leads, err := collectLeads(rows)
	return leads, total, err
}

// ListForExport streams every lead matching the filter, oldest first.
func (r *Repository) ListForExport(ctx context.Context, params ListParams, fn func(domain.Lead, string) error) error {
	where, args := params.where()
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`, COALESCE(p.full_name, '')
		FROM leads l
		LEFT JOIN profiles p ON p.id = l.assigned_to
		WHERE `+where+`
		ORDER BY l.created_at, l.id
	`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var agentName string
		lead, err := scanLead(scanTail{row: rows, tail: []any{&agentName}})
		if err != nil {
			return err
		}
		if err := fn(lead, agentName); err != nil {
			return err
		}
	}
	return rows.Err()
}

// scanTail appends extra destinations after the lead columns.
type scanTail struct {
	row  pgx.Row
	tail []any
}

func (s scanTail) Scan(dest ...any) error {
	return s.row.Scan(append(dest, s.tail...)...)
}

// NextPendingID returns the agent's oldest pending lead, optionally skipping one.
func (r *Repository) NextPendingID(ctx context.Context, agentID uuid.UUID, exclude *uuid.UUID) (*uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT id FROM leads
		WHERE assigned_to = $1 AND status = 'pending' AND ($2::uuid IS NULL OR id <> $2)
		ORDER BY created_at, id
		LIMIT 1
	`, agentID, exclude).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// CountPending returns how many pending leads the agent owns.
func (r *Repository) CountPending(ctx context.Context, agentID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM leads WHERE assigned_to = $1 AND status = 'pending'
	`, agentID).Scan(&n)
	return n, err
}

// AgentExists reports whether id names an active profile.
func (r *Repository) AgentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1 AND is_active)`, id).Scan(&ok)
	return ok, err
}

// ListStuck previews leads a stuck recovery with cutoff would move.
func (r *Repository) ListStuck(ctx context.Context, cutoff time.Time, limit int) ([]domain.Lead, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads l
		WHERE l.status = 'pending' AND l.assigned_to IS NOT NULL
		  AND COALESCE(l.assigned_at, l.created_at) < $1
		ORDER BY COALESCE(l.assigned_at, l.created_at), l.id
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

func (r *Repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Lead, error) {
	if len(ids) == 0 {
		return []domain.Lead{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads l WHERE l.id = ANY($1) ORDER BY l.created_at, l.id`, ids)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// SaveEnrichment replaces the enrichment document and writes an `enriched` row.
func (r *Repository) SaveEnrichment(ctx context.Context, leadID uuid.UUID, doc json.RawMessage) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE leads SET enrichment = $2::jsonb, updated_at = now() WHERE id = $1`, leadID, []byte(doc))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return insertActivity(ctx, tx, leadID, nil, domain.ActionEnriched, nil)
	})
}
