package repository

import (
	"context"
	"errors"

	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/platform/db"

	"github.com/jackc/pgx/v5"
)

// Complete records a disposition: the lead row, the note and the `completed`
// activity row are written in one transaction. The ownership check runs on the
// row locked by this transaction.
func (r *Repository) Complete(ctx context.Context, c domain.Completion) (domain.Lead, error) {
	var lead domain.Lead
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanLead(tx.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads l WHERE l.id = $1 FOR UPDATE`, c.LeadID))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := current.CheckCompletable(c.AgentID); err != nil {
			return err
		}

		lead, err = scanLead(tx.QueryRow(ctx, `
			UPDATE leads AS l SET
				status = $2,
				potential_level = $3,
				appointment_at = CASE WHEN $2 = 'appointment' THEN $4 ELSE l.appointment_at END,
				reminder_5h_sent_at = CASE WHEN $2 = 'appointment' THEN NULL ELSE l.reminder_5h_sent_at END,
				reminder_1h_sent_at = CASE WHEN $2 = 'appointment' THEN NULL ELSE l.reminder_1h_sent_at END,
				current_agent_id = NULL,
				locked_at = NULL,
				processed_at = now(),
				updated_at = now()
			WHERE l.id = $1
			RETURNING `+leadColumns,
			c.LeadID, string(c.Status), string(c.PotentialLevel), c.AppointmentAt))
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO lead_notes (lead_id, agent_id, note, action_taken)
			VALUES ($1, $2, $3, $4)
		`, c.LeadID, c.AgentID, c.Note, c.ActionTaken); err != nil {
			return err
		}

		return insertActivity(ctx, tx, c.LeadID, &c.AgentID, domain.ActionCompleted, map[string]any{
			"status":         c.Status,
			"potentialLevel": c.PotentialLevel,
			"actionTaken":    c.ActionTaken,
			"previousStatus": current.Status,
		})
	})
	return lead, err
}
