package repository

import (
	"context"
	"time"

	"leaddesk_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// ListUpcomingAppointments returns appointment leads due within horizon that
// still have at least one reminder outstanding.
func (r *Repository) ListUpcomingAppointments(ctx context.Context, now time.Time, horizon time.Duration) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads l
		WHERE l.status = 'appointment'
			AND l.appointment_at > $1
			AND l.appointment_at <= $2
			AND (l.reminder_5h_sent_at IS NULL OR l.reminder_1h_sent_at IS NULL)
		ORDER BY l.appointment_at
	`, now, now.Add(horizon))
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// ClaimReminder stamps the reminder's sent column if it is still empty. Only
// the caller that gets true may send it.
func (r *Repository) ClaimReminder(ctx context.Context, leadID uuid.UUID, kind domain.ReminderKind, now time.Time) (bool, error) {
	column := "reminder_5h_sent_at"
	if kind == domain.Reminder1h {
		column = "reminder_1h_sent_at"
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET `+column+` = $2
		WHERE id = $1 AND `+column+` IS NULL AND status = 'appointment'
	`, leadID, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
