package repository

import (
	"context"
	"time"

	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AssignBatch partitions the batch's unassigned leads (creation order) between
// the quotas and writes the owners and audit rows in one transaction. The
// unassigned rows are locked for the duration so concurrent assignments of
// the same batch serialize.
func (r *Repository) AssignBatch(ctx context.Context, batchID uuid.UUID, quotas []domain.Quota, actorID uuid.UUID) ([]domain.Allocation, error) {
	var allocations []domain.Allocation
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id FROM leads
			WHERE batch_id = $1 AND assigned_to IS NULL
			ORDER BY created_at, id
			FOR UPDATE
		`, batchID)
		if err != nil {
			return err
		}
		ordered, err := collectIDs(rows)
		if err != nil {
			return err
		}

		allocations, err = domain.Partition(ordered, quotas)
		if err != nil {
			return err
		}

		for _, alloc := range allocations {
			if _, err := tx.Exec(ctx, `
				UPDATE leads SET assigned_to = $2, assigned_at = now(), updated_at = now()
				WHERE id = ANY($1)
			`, alloc.LeadIDs, alloc.AgentID); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO lead_activity_logs (lead_id, agent_id, action, metadata)
				SELECT id, $2, 'assigned', jsonb_build_object('batchId', $3::uuid, 'assignedBy', $4::uuid)
				FROM unnest($1::uuid[]) AS id
			`, alloc.LeadIDs, alloc.AgentID, batchID, actorID); err != nil {
				return err
			}
		}
		return nil
	})
	return allocations, err
}

// Transfer moves the given leads to target and clears their locks. Unless
// preserveStatus is set, their status is reset to pending. One audit row per
// lead records the previous owner. Returns the ids actually moved.
func (r *Repository) Transfer(ctx context.Context, leadIDs []uuid.UUID, target, actorID uuid.UUID, preserveStatus bool) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		WITH prev AS (
			SELECT id, assigned_to, status FROM leads WHERE id = ANY($1) FOR UPDATE
		), moved AS (
			UPDATE leads l SET
				assigned_to = $2,
				assigned_at = now(),
				current_agent_id = NULL,
				locked_at = NULL,
				status = CASE WHEN $4 THEN l.status ELSE 'pending' END,
				updated_at = now()
			FROM prev
			WHERE l.id = prev.id
			RETURNING l.id, prev.assigned_to AS previous_owner, prev.status AS previous_status
		)
		INSERT INTO lead_activity_logs (lead_id, agent_id, action, metadata)
		SELECT id, $3, 'transferred', jsonb_build_object(
			'from', previous_owner, 'to', $2::uuid,
			'previousStatus', previous_status, 'statusReset', NOT $4)
		FROM moved
		RETURNING lead_id
	`, leadIDs, target, actorID, preserveStatus)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}

// Revoke returns every pending lead owned by agentID to the pool. Leads in any
// other status are untouched. One audit row per revoked lead.
func (r *Repository) Revoke(ctx context.Context, agentID, actorID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		WITH revoked AS (
			UPDATE leads SET
				assigned_to = NULL, assigned_at = NULL,
				current_agent_id = NULL, locked_at = NULL,
				updated_at = now()
			WHERE assigned_to = $1 AND status = 'pending'
			RETURNING id
		)
		INSERT INTO lead_activity_logs (lead_id, agent_id, action, metadata)
		SELECT id, $2, 'revoked', jsonb_build_object('from', $1::uuid)
		FROM revoked
		RETURNING lead_id
	`, agentID, actorID)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}

// RecoverStuck moves pending leads whose assignment predates cutoff to target,
// or back to the pool when target is nil.
func (r *Repository) RecoverStuck(ctx context.Context, cutoff time.Time, target *uuid.UUID, actorID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		WITH stuck AS (
			SELECT id, assigned_to FROM leads
			WHERE status = 'pending' AND assigned_to IS NOT NULL
			  AND COALESCE(assigned_at, created_at) < $1
			FOR UPDATE SKIP LOCKED
		), moved AS (
			UPDATE leads l SET
				assigned_to = $2,
				assigned_at = CASE WHEN $2::uuid IS NULL THEN NULL ELSE now() END,
				current_agent_id = NULL,
				locked_at = NULL,
				updated_at = now()
			FROM stuck
			WHERE l.id = stuck.id
			RETURNING l.id, stuck.assigned_to AS previous_owner
		)
		INSERT INTO lead_activity_logs (lead_id, agent_id, action, metadata)
		SELECT id, $3, 'stuck_recovered', jsonb_build_object('from', previous_owner, 'to', $2::uuid)
		FROM moved
		RETURNING lead_id
	`, cutoff, target, actorID)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}
