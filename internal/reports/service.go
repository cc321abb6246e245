// Package reports builds and delivers the daily management digest.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leaddesk_backend/internal/analytics"
	"leaddesk_backend/internal/email"
	"leaddesk_backend/internal/leads"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/logger"
)

// DateLayout is how report dates are passed around.
const DateLayout = "2006-01-02"

// Store is the query surface the digest needs.
type Store interface {
	AgentTotals(ctx context.Context, from, to time.Time) ([]AgentTotal, error)
	StatusTotals(ctx context.Context, from, to time.Time) ([]StatusTotal, error)
	CountImported(ctx context.Context, from, to time.Time) (int, error)
	CountPending(ctx context.Context) (int, error)
	DigestRecipients(ctx context.Context) ([]string, error)
}

var _ Store = (*Repository)(nil)

type Service struct {
	store  Store
	sender email.Sender
	loc    *time.Location
	log    *logger.Logger
	now    func() time.Time
}

func NewService(store Store, sender email.Sender, loc *time.Location, log *logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, sender: sender, loc: loc, log: log, now: time.Now}
}

// ParseDate reads a YYYY-MM-DD day in the report timezone. Empty means yesterday.
func (s *Service) ParseDate(value string) (time.Time, error) {
	if value == "" {
		return analytics.WindowStart(s.now(), 2, s.loc), nil
	}
	day, err := time.ParseInLocation(DateLayout, value, s.loc)
	if err != nil {
		return time.Time{}, apperr.Validation("date must be YYYY-MM-DD")
	}
	return day, nil
}

func (s *Service) window(day time.Time) (time.Time, time.Time) {
	local := day.In(s.loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return from, from.AddDate(0, 0, 1)
}

// BuildDigest gathers the figures for one calendar day.
func (s *Service) BuildDigest(ctx context.Context, day time.Time) (email.DailyDigest, error) {
	from, to := s.window(day)
	d := email.DailyDigest{Date: from.Format("02-01-2006")}

	agents, err := s.store.AgentTotals(ctx, from, to)
	if err != nil {
		return d, apperr.Upstream(err)
	}
	statuses, err := s.store.StatusTotals(ctx, from, to)
	if err != nil {
		return d, apperr.Upstream(err)
	}
	if d.TotalImported, err = s.store.CountImported(ctx, from, to); err != nil {
		return d, apperr.Upstream(err)
	}
	if d.PendingBacklog, err = s.store.CountPending(ctx); err != nil {
		return d, apperr.Upstream(err)
	}

	for _, a := range agents {
		d.TotalCompleted += a.Completed
		rate := analytics.ConversionRate(a.Sold, a.Appointments, a.Completed)
		d.Agents = append(d.Agents, email.DigestAgent{
			Name:         a.Name,
			Completed:    a.Completed,
			Appointments: a.Appointments,
			Sold:         a.Sold,
			Conversion:   fmt.Sprintf("%.0f%%", rate*100),
		})
	}
	for _, st := range statuses {
		d.ByStatus = append(d.ByStatus, email.DigestStatus{Label: leads.StatusLabel(st.Status), Count: st.Count})
	}
	return d, nil
}

// SendDailyDigest mails the digest for day to every founder and admin and
// returns how many recipients it reached. One failed recipient does not stop
// the others.
func (s *Service) SendDailyDigest(ctx context.Context, day time.Time) (int, error) {
	digest, err := s.BuildDigest(ctx, day)
	if err != nil {
		return 0, err
	}
	recipients, err := s.store.DigestRecipients(ctx)
	if err != nil {
		return 0, apperr.Upstream(err)
	}

	sent := 0
	var errs []error
	for _, to := range recipients {
		if err := s.sender.SendDailyDigest(ctx, to, digest); err != nil {
			s.log.Error("daily digest delivery failed", "to", to, "error", err)
			errs = append(errs, err)
			continue
		}
		sent++
	}
	s.log.Info("daily digest sent", "date", digest.Date, "recipients", sent, "completed", digest.TotalCompleted)
	return sent, errors.Join(errs...)
}

// Preview renders the digest HTML without sending it.
func (s *Service) Preview(ctx context.Context, day time.Time) (string, error) {
	digest, err := s.BuildDigest(ctx, day)
	if err != nil {
		return "", err
	}
	html, err := email.RenderDailyDigest(digest)
	if err != nil {
		return "", apperr.Internal("render digest")
	}
	return html, nil
}
