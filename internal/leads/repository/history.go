package repository

import (
	"context"

	"leaddesk_backend/internal/leads/domain"

	"github.com/google/uuid"
)

func (r *Repository) ListNotes(ctx context.Context, leadID uuid.UUID) ([]domain.Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT n.id, n.lead_id, n.agent_id, COALESCE(p.full_name, ''), n.note, n.action_taken, n.created_at
		FROM lead_notes n
		LEFT JOIN profiles p ON p.id = n.agent_id
		WHERE n.lead_id = $1
		ORDER BY n.created_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]domain.Note, 0)
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.LeadID, &n.AgentID, &n.AgentName, &n.Note, &n.ActionTaken, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *Repository) ListActivity(ctx context.Context, leadID uuid.UUID) ([]domain.Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.lead_id, a.agent_id, COALESCE(p.full_name, ''), a.action, a.metadata, a.created_at
		FROM lead_activity_logs a
		LEFT JOIN profiles p ON p.id = a.agent_id
		WHERE a.lead_id = $1
		ORDER BY a.created_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activity := make([]domain.Activity, 0)
	for rows.Next() {
		var (
			a    domain.Activity
			meta []byte
		)
		if err := rows.Scan(&a.ID, &a.LeadID, &a.AgentID, &a.AgentName, &a.Action, &meta, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Metadata = meta
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

// RecordActivity appends one audit row outside any other write.
func (r *Repository) RecordActivity(ctx context.Context, leadID uuid.UUID, agentID *uuid.UUID, action string, meta map[string]any) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_activity_logs (lead_id, agent_id, action, metadata)
		VALUES ($1, $2, $3, $4::jsonb)
	`, leadID, agentID, action, metadata(meta))
	return err
}
