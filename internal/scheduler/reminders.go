package scheduler

import (
	"context"
	"fmt"
	"time"

	"leaddesk_backend/internal/leads"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

// ReminderStore finds appointments and stamps reminders as sent.
type ReminderStore interface {
	ListUpcomingAppointments(ctx context.Context, now time.Time, horizon time.Duration) ([]domain.Lead, error)
	ClaimReminder(ctx context.Context, leadID uuid.UUID, kind domain.ReminderKind, now time.Time) (bool, error)
	RecordActivity(ctx context.Context, leadID uuid.UUID, agentID *uuid.UUID, action string, meta map[string]any) error
}

// Texter delivers one SMS to a lead.
type Texter interface {
	SendToLead(ctx context.Context, c leads.Contact, body string, sentBy *uuid.UUID) error
}

// ReminderResult counts one reminder pass.
type ReminderResult struct {
	Sent    int
	Skipped int
	Failed  int
}

// Reminders texts leads ahead of their appointment, five hours and one hour out.
type Reminders struct {
	store ReminderStore
	sms   Texter
	loc   *time.Location
	log   *logger.Logger
	now   func() time.Time
}

func NewReminders(store ReminderStore, sms Texter, loc *time.Location, log *logger.Logger) *Reminders {
	if loc == nil {
		loc = time.UTC
	}
	return &Reminders{store: store, sms: sms, loc: loc, log: log, now: time.Now}
}

func reminderBody(c leads.Contact, at time.Time, kind domain.ReminderKind) string {
	name := c.ContactName
	if name == "" {
		name = c.CompanyName
	}
	when := "vandaag om " + at.Format("15:04")
	if kind == domain.Reminder1h {
		when = "over ongeveer een uur (" + at.Format("15:04") + ")"
	}
	return fmt.Sprintf("Beste %s, een herinnering aan uw afspraak %s. Tot straks!", name, when)
}

// Run sends every reminder that is due now. A reminder is claimed before it is
// sent, so concurrent runs never text the same lead twice for one window. A
// failed send keeps its claim and is not retried.
func (r *Reminders) Run(ctx context.Context) (ReminderResult, error) {
	var res ReminderResult
	now := r.now()

	upcoming, err := r.store.ListUpcomingAppointments(ctx, now, domain.Reminder5hLead)
	if err != nil {
		return res, err
	}

	for _, lead := range upcoming {
		kind, due := lead.DueReminder(now)
		if !due || lead.Phone == "" {
			res.Skipped++
			continue
		}

		claimed, err := r.store.ClaimReminder(ctx, lead.ID, kind, now)
		if err != nil {
			r.log.Warn("reminder claim failed", "leadId", lead.ID, "error", err)
			res.Failed++
			continue
		}
		if !claimed {
			res.Skipped++
			continue
		}

		contact := leads.ContactOf(lead)
		body := reminderBody(contact, lead.AppointmentAt.In(r.loc), kind)
		if err := r.sms.SendToLead(ctx, contact, body, nil); err != nil {
			r.log.Warn("reminder sms failed", "leadId", lead.ID, "kind", kind, "error", err)
			res.Failed++
			continue
		}

		meta := map[string]any{"kind": string(kind), "appointmentAt": lead.AppointmentAt.UTC().Format(time.RFC3339)}
		if err := r.store.RecordActivity(ctx, lead.ID, nil, leads.ActivityReminderSent, meta); err != nil {
			r.log.Warn("reminder activity failed", "leadId", lead.ID, "error", err)
		}
		res.Sent++
	}
	return res, nil
}
