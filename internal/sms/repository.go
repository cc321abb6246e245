package sms

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dispatch statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Dispatch is one send attempt.
type Dispatch struct {
	LeadID *uuid.UUID
	Phone  string
	Body   string
	Status string
	Error  *string
	SentBy *uuid.UUID
}

// DispatchLog records send attempts.
type DispatchLog interface {
	RecordDispatch(ctx context.Context, d Dispatch) error
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) RecordDispatch(ctx context.Context, d Dispatch) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sms_dispatches (lead_id, phone, body, status, error, sent_by)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		d.LeadID, d.Phone, d.Body, d.Status, d.Error, d.SentBy)
	return err
}

var _ DispatchLog = (*Repository)(nil)
