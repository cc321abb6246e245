package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/leads"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeGateway struct {
	mu       sync.Mutex
	sent     map[string]string
	failFor  map[string]bool
	inFlight atomic.Int32
	peak     atomic.Int32
}

func newFakeGateway(failFor ...string) *fakeGateway {
	g := &fakeGateway{sent: map[string]string{}, failFor: map[string]bool{}}
	for _, p := range failFor {
		g.failFor[p] = true
	}
	return g
}

func (g *fakeGateway) Send(_ context.Context, to, body string) error {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)

	if g.failFor[to] {
		return errors.New("gateway rejected")
	}
	g.mu.Lock()
	g.sent[to] = body
	g.mu.Unlock()
	return nil
}

type fakeDispatchLog struct {
	mu   sync.Mutex
	rows []Dispatch
}

func (f *fakeDispatchLog) RecordDispatch(_ context.Context, d Dispatch) error {
	f.mu.Lock()
	f.rows = append(f.rows, d)
	f.mu.Unlock()
	return nil
}

type fakeDirectory struct {
	mu         sync.Mutex
	contacts   map[uuid.UUID]leads.Contact
	activities []string
}

func (d *fakeDirectory) GetContact(_ context.Context, id uuid.UUID) (leads.Contact, error) {
	c, ok := d.contacts[id]
	if !ok {
		return leads.Contact{}, leads.ErrLeadNotFound
	}
	return c, nil
}

func (d *fakeDirectory) GetContacts(_ context.Context, ids []uuid.UUID) ([]leads.Contact, error) {
	var out []leads.Contact
	for _, id := range ids {
		if c, ok := d.contacts[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (d *fakeDirectory) RecordActivity(_ context.Context, _ uuid.UUID, _ *uuid.UUID, action string, _ map[string]any) error {
	d.mu.Lock()
	d.activities = append(d.activities, action)
	d.mu.Unlock()
	return nil
}

func (d *fakeDirectory) SaveEnrichment(context.Context, uuid.UUID, json.RawMessage) error {
	return nil
}

func TestRenderPlaceholders(t *testing.T) {
	c := leads.Contact{CompanyName: "Bakkerij Jansen", ContactName: "Piet"}
	if got := Render("Hoi {name} van {company}", c); got != "Hoi Piet van Bakkerij Jansen" {
		t.Fatalf("unexpected render %q", got)
	}
	c.ContactName = " "
	if got := Render("Hoi {name}", c); got != "Hoi Bakkerij Jansen" {
		t.Fatalf("expected company fallback, got %q", got)
	}
}

func TestBulkSendTally(t *testing.T) {
	manager := uuid.New()
	dir := &fakeDirectory{contacts: map[uuid.UUID]leads.Contact{}}
	var ids []uuid.UUID
	add := func(c leads.Contact) uuid.UUID {
		c.ID = uuid.New()
		dir.contacts[c.ID] = c
		ids = append(ids, c.ID)
		return c.ID
	}
	for i := 0; i < 12; i++ {
		add(leads.Contact{CompanyName: "Bedrijf", Phone: fmt.Sprintf("06 1234 56%02d", i)})
	}
	add(leads.Contact{CompanyName: "Fout", Phone: "06 58765432"})
	add(leads.Contact{CompanyName: "Geen nummer", Phone: ""})
	ids = append(ids, uuid.New(), ids[0])

	gw := newFakeGateway("+31658765432")
	dispatches := &fakeDispatchLog{}
	svc := NewService(gw, dispatches, dir, 0, "NL", logger.Discard())

	res, err := svc.BulkSend(context.Background(), Actor{ID: manager, Role: access.RoleManager}, ids, "Hoi {company}")
	if err != nil {
		t.Fatalf("bulk send failed: %v", err)
	}
	if res != (BulkResult{Sent: 12, Failed: 1, Skipped: 2}) {
		t.Fatalf("unexpected tally %+v", res)
	}
	if len(dispatches.rows) != 13 {
		t.Fatalf("expected every attempt recorded, got %d", len(dispatches.rows))
	}
	if len(dir.activities) != 12 {
		t.Fatalf("expected an sms_sent activity per success, got %d", len(dir.activities))
	}
	if peak := gw.peak.Load(); peak > MaxConcurrentSends {
		t.Fatalf("expected at most %d concurrent sends, saw %d", MaxConcurrentSends, peak)
	}
}

func TestBulkSendSkipsOtherAgentsLeads(t *testing.T) {
	me, other := uuid.New(), uuid.New()
	mine := leads.Contact{ID: uuid.New(), CompanyName: "A", Phone: "0612345678", AssignedTo: &me}
	theirs := leads.Contact{ID: uuid.New(), CompanyName: "B", Phone: "0612345679", AssignedTo: &other}
	dir := &fakeDirectory{contacts: map[uuid.UUID]leads.Contact{mine.ID: mine, theirs.ID: theirs}}
	svc := NewService(newFakeGateway(), &fakeDispatchLog{}, dir, 0, "NL", logger.Discard())

	res, err := svc.BulkSend(context.Background(), Actor{ID: me, Role: access.RoleAgent}, []uuid.UUID{mine.ID, theirs.ID}, "x")
	if err != nil {
		t.Fatalf("bulk send failed: %v", err)
	}
	if res != (BulkResult{Sent: 1, Skipped: 1}) {
		t.Fatalf("unexpected tally %+v", res)
	}
}

func TestBulkSendDisabled(t *testing.T) {
	svc := NewService(nil, &fakeDispatchLog{}, &fakeDirectory{}, 0, "NL", logger.Discard())
	_, err := svc.BulkSend(context.Background(), Actor{ID: uuid.New(), Role: access.RoleFounder}, []uuid.UUID{uuid.New()}, "x")
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestBulkSendValidation(t *testing.T) {
	svc := NewService(newFakeGateway(), &fakeDispatchLog{}, &fakeDirectory{}, 0, "NL", logger.Discard())
	actor := Actor{ID: uuid.New(), Role: access.RoleManager}
	if _, err := svc.BulkSend(context.Background(), actor, []uuid.UUID{uuid.New()}, "   "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty message, got %v", err)
	}
	if _, err := svc.BulkSend(context.Background(), actor, []uuid.UUID{uuid.Nil}, "x"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for no leads, got %v", err)
	}
}
