package repository

import (
	"context"
	"errors"
	"time"

	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ClaimLock atomically grants agentID the working lock. The conditional update
// only matches when the lead is free, already held by the agent, or held by a
// lock older than cutoff, and when the lead is unassigned or the agent's own.
// An unassigned lead becomes the agent's on claim.
func (r *Repository) ClaimLock(ctx context.Context, leadID, agentID uuid.UUID, cutoff time.Time) (domain.Lead, error) {
	var lead domain.Lead
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		lead, err = scanLead(tx.QueryRow(ctx, `
			UPDATE leads AS l SET
				current_agent_id = $2,
				locked_at = now(),
				assigned_to = COALESCE(l.assigned_to, $2),
				assigned_at = COALESCE(l.assigned_at, now()),
				updated_at = now()
			WHERE l.id = $1
			  AND (l.current_agent_id IS NULL OR l.current_agent_id = $2 OR l.locked_at < $3)
			  AND (l.assigned_to IS NULL OR l.assigned_to = $2)
			RETURNING `+leadColumns,
			leadID, agentID, cutoff))
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1)`, leadID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrLockHeld
		}
		if err != nil {
			return err
		}
		return insertActivity(ctx, tx, leadID, &agentID, domain.ActionLocked, nil)
	})
	return lead, err
}

// LockHolder returns the current holder of a lead's lock, if any.
func (r *Repository) LockHolder(ctx context.Context, leadID uuid.UUID) (*uuid.UUID, *time.Time, error) {
	var (
		holder   *uuid.UUID
		lockedAt *time.Time
	)
	err := r.pool.QueryRow(ctx, `SELECT current_agent_id, locked_at FROM leads WHERE id = $1`, leadID).Scan(&holder, &lockedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	return holder, lockedAt, err
}

// ReleaseLock clears the lock when agentID holds it, or unconditionally when
// force is set. It reports whether a lock was released.
func (r *Repository) ReleaseLock(ctx context.Context, leadID, agentID uuid.UUID, force bool) (bool, error) {
	released := false
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE leads SET current_agent_id = NULL, locked_at = NULL, updated_at = now()
			WHERE id = $1 AND current_agent_id IS NOT NULL AND ($3 OR current_agent_id = $2)
		`, leadID, agentID, force)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		released = true
		return insertActivity(ctx, tx, leadID, &agentID, domain.ActionUnlocked, map[string]any{"forced": force})
	})
	return released, err
}

// SweepExpiredLocks clears every lock taken before cutoff and records a
// lock_expired row for the previous holder, in one statement.
func (r *Repository) SweepExpiredLocks(ctx context.Context, cutoff time.Time) (int64, error) {
	rows, err := r.pool.Query(ctx, `
		WITH expired AS (
			SELECT id, current_agent_id, locked_at FROM leads
			WHERE current_agent_id IS NOT NULL AND locked_at < $1
			FOR UPDATE SKIP LOCKED
		), released AS (
			UPDATE leads l SET current_agent_id = NULL, locked_at = NULL, updated_at = now()
			FROM expired e
			WHERE l.id = e.id
			RETURNING l.id, e.current_agent_id AS holder, e.locked_at AS held_since
		)
		INSERT INTO lead_activity_logs (lead_id, agent_id, action, metadata)
		SELECT id, holder, 'lock_expired', jsonb_build_object('lockedAt', held_since)
		FROM released
		RETURNING lead_id
	`, cutoff)
	if err != nil {
		return 0, err
	}
	ids, err := collectIDs(rows)
	return int64(len(ids)), err
}
