package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"leaddesk_backend/internal/email"
	"leaddesk_backend/platform/logger"
)

type fakeStore struct {
	from, to   time.Time
	agents     []AgentTotal
	statuses   []StatusTotal
	recipients []string
}

func (f *fakeStore) AgentTotals(_ context.Context, from, to time.Time) ([]AgentTotal, error) {
	f.from, f.to = from, to
	return f.agents, nil
}

func (f *fakeStore) StatusTotals(context.Context, time.Time, time.Time) ([]StatusTotal, error) {
	return f.statuses, nil
}

func (f *fakeStore) CountImported(context.Context, time.Time, time.Time) (int, error) { return 7, nil }
func (f *fakeStore) CountPending(context.Context) (int, error)                       { return 31, nil }

func (f *fakeStore) DigestRecipients(context.Context) ([]string, error) {
	return f.recipients, nil
}

type recordingSender struct {
	to     []string
	failTo string
}

func (r *recordingSender) SendDailyDigest(_ context.Context, to string, _ email.DailyDigest) error {
	if to == r.failTo {
		return errors.New("mailbox full")
	}
	r.to = append(r.to, to)
	return nil
}

func (r *recordingSender) SendCustomEmail(context.Context, string, string, string) error {
	return nil
}

func newTestService(store Store, sender email.Sender) *Service {
	loc, _ := time.LoadLocation("Europe/Amsterdam")
	svc := NewService(store, sender, loc, logger.Discard())
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC) }
	return svc
}

func TestParseDateDefaultsToYesterday(t *testing.T) {
	svc := newTestService(&fakeStore{}, email.NoopSender{})
	day, err := svc.ParseDate("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day.Format(DateLayout) != "2026-03-01" {
		t.Fatalf("expected yesterday, got %s", day.Format(DateLayout))
	}
	if _, err := svc.ParseDate("01-03-2026"); err == nil {
		t.Fatalf("expected invalid layout to fail")
	}
}

func TestBuildDigest(t *testing.T) {
	store := &fakeStore{
		agents: []AgentTotal{
			{Name: "Sanne", Completed: 10, Appointments: 2, Sold: 1},
			{Name: "Bram", Completed: 4},
		},
		statuses: []StatusTotal{{Status: "no_answer", Count: 8}, {Status: "appointment", Count: 2}},
	}
	svc := newTestService(store, email.NoopSender{})
	day, _ := svc.ParseDate("2026-03-01")

	d, err := svc.BuildDigest(context.Background(), day)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if d.Date != "01-03-2026" || d.TotalCompleted != 14 || d.TotalImported != 7 || d.PendingBacklog != 31 {
		t.Fatalf("unexpected totals %+v", d)
	}
	if d.Agents[0].Conversion != "30%" || d.Agents[1].Conversion != "0%" {
		t.Fatalf("unexpected conversion %q %q", d.Agents[0].Conversion, d.Agents[1].Conversion)
	}
	if d.ByStatus[0].Label != "Geen gehoor" {
		t.Fatalf("expected Dutch status label, got %q", d.ByStatus[0].Label)
	}
	if got := store.to.Sub(store.from); got != 24*time.Hour {
		t.Fatalf("expected a one-day window, got %s", got)
	}
	if store.from.UTC().Hour() != 23 {
		t.Fatalf("expected window to start at local midnight, got %s", store.from.UTC())
	}
}

func TestSendDailyDigestContinuesAfterFailure(t *testing.T) {
	store := &fakeStore{recipients: []string{"a@leaddesk.nl", "b@leaddesk.nl", "c@leaddesk.nl"}}
	sender := &recordingSender{failTo: "b@leaddesk.nl"}
	svc := newTestService(store, sender)

	sent, err := svc.SendDailyDigest(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatalf("expected the failed recipient to be reported")
	}
	if sent != 2 || len(sender.to) != 2 {
		t.Fatalf("expected two deliveries, got %d", sent)
	}
}
