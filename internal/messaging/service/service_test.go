package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/messaging/repository"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

type receipt struct {
	read, hidden bool
}

type memStore struct {
	active     map[uuid.UUID]bool
	direct     []*memDirect
	broadcasts []*memBroadcast
	receipts   map[[2]uuid.UUID]*receipt
}

type memDirect struct {
	repository.DirectMessage
	deleted bool
}

type memBroadcast struct {
	repository.Broadcast
	deleted bool
}

func newMemStore(active ...uuid.UUID) *memStore {
	m := &memStore{active: map[uuid.UUID]bool{}, receipts: map[[2]uuid.UUID]*receipt{}}
	for _, id := range active {
		m.active[id] = true
	}
	return m
}

func (m *memStore) ProfileIsActive(_ context.Context, id uuid.UUID) (bool, error) {
	return m.active[id], nil
}

func (m *memStore) CreateDirect(_ context.Context, senderID, recipientID uuid.UUID, body string) (repository.DirectMessage, error) {
	msg := repository.DirectMessage{ID: uuid.New(), SenderID: senderID, RecipientID: recipientID, Body: body, CreatedAt: time.Now()}
	m.direct = append(m.direct, &memDirect{DirectMessage: msg})
	return msg, nil
}

func (m *memStore) ListDirect(_ context.Context, userID uuid.UUID, box repository.Box, _ int) ([]repository.DirectMessage, error) {
	var out []repository.DirectMessage
	for _, d := range m.direct {
		if box == repository.BoxSent && d.SenderID == userID {
			out = append(out, d.DirectMessage)
		}
		if box == repository.BoxInbox && d.RecipientID == userID && !d.deleted {
			out = append(out, d.DirectMessage)
		}
	}
	return out, nil
}

func (m *memStore) findDirect(id, recipientID uuid.UUID) *memDirect {
	for _, d := range m.direct {
		if d.ID == id && d.RecipientID == recipientID && !d.deleted {
			return d
		}
	}
	return nil
}

func (m *memStore) MarkDirectRead(_ context.Context, id, recipientID uuid.UUID, now time.Time) error {
	d := m.findDirect(id, recipientID)
	if d == nil {
		return repository.ErrNotFound
	}
	if d.ReadAt == nil {
		d.ReadAt = &now
	}
	return nil
}

func (m *memStore) DeleteDirect(_ context.Context, id, recipientID uuid.UUID, _ time.Time) error {
	d := m.findDirect(id, recipientID)
	if d == nil {
		return repository.ErrNotFound
	}
	d.deleted = true
	return nil
}

func (m *memStore) CreateBroadcast(_ context.Context, senderID uuid.UUID, title, body string) (repository.Broadcast, error) {
	b := repository.Broadcast{ID: uuid.New(), SenderID: senderID, Title: title, Body: body, CreatedAt: time.Now()}
	m.broadcasts = append(m.broadcasts, &memBroadcast{Broadcast: b})
	return b, nil
}

func (m *memStore) receipt(id, userID uuid.UUID) *receipt {
	key := [2]uuid.UUID{id, userID}
	r, ok := m.receipts[key]
	if !ok {
		r = &receipt{}
		m.receipts[key] = r
	}
	return r
}

func (m *memStore) ListBroadcasts(_ context.Context, userID uuid.UUID, _ int) ([]repository.Broadcast, error) {
	var out []repository.Broadcast
	for _, b := range m.broadcasts {
		if b.deleted || m.receipt(b.ID, userID).hidden {
			continue
		}
		out = append(out, b.Broadcast)
	}
	return out, nil
}

func (m *memStore) BroadcastSender(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	for _, b := range m.broadcasts {
		if b.ID == id && !b.deleted {
			return b.SenderID, nil
		}
	}
	return uuid.Nil, repository.ErrNotFound
}

func (m *memStore) MarkBroadcastRead(_ context.Context, id, userID uuid.UUID, _ time.Time) error {
	m.receipt(id, userID).read = true
	return nil
}

func (m *memStore) HideBroadcast(_ context.Context, id, userID uuid.UUID, _ time.Time) error {
	r := m.receipt(id, userID)
	r.hidden, r.read = true, true
	return nil
}

func (m *memStore) DeleteBroadcast(_ context.Context, id uuid.UUID, _ time.Time) error {
	for _, b := range m.broadcasts {
		if b.ID == id && !b.deleted {
			b.deleted = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStore) UnreadCounts(_ context.Context, userID uuid.UUID) (int, int, error) {
	direct, broadcast := 0, 0
	for _, d := range m.direct {
		if d.RecipientID == userID && d.ReadAt == nil && !d.deleted {
			direct++
		}
	}
	for _, b := range m.broadcasts {
		r := m.receipt(b.ID, userID)
		if !b.deleted && b.SenderID != userID && !r.read && !r.hidden {
			broadcast++
		}
	}
	return direct, broadcast, nil
}

func newTestService(store *memStore) (*Service, *events.InMemoryBus) {
	bus := events.NewInMemoryBus(logger.Discard())
	return New(store, bus, logger.Discard()), bus
}

func agent(id uuid.UUID) Actor   { return Actor{ID: id, Role: access.RoleAgent} }
func manager(id uuid.UUID) Actor { return Actor{ID: id, Role: access.RoleManager} }
func admin(id uuid.UUID) Actor   { return Actor{ID: id, Role: access.RoleAdmin} }

func TestSendDirectRules(t *testing.T) {
	me, other := uuid.New(), uuid.New()
	svc, _ := newTestService(newMemStore(me, other))
	ctx := context.Background()

	if _, err := svc.SendDirect(ctx, agent(me), me, "hi"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for self message, got %v", err)
	}
	if _, err := svc.SendDirect(ctx, agent(me), other, "<b></b>  "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty body, got %v", err)
	}
	if _, err := svc.SendDirect(ctx, agent(me), uuid.New(), "hi"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown recipient, got %v", err)
	}

	msg, err := svc.SendDirect(ctx, agent(me), other, "Bel <i>Jansen</i> even terug")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if msg.Body != "Bel Jansen even terug" {
		t.Fatalf("expected sanitized body, got %q", msg.Body)
	}
}

func TestUnreadCountsFollowReadAndDelete(t *testing.T) {
	me, other := uuid.New(), uuid.New()
	store := newMemStore(me, other)
	svc, _ := newTestService(store)
	ctx := context.Background()

	first, _ := svc.SendDirect(ctx, agent(other), me, "een")
	second, _ := svc.SendDirect(ctx, agent(other), me, "twee")
	if _, err := svc.Broadcast(ctx, manager(other), "Update", "Nieuwe batch staat klaar"); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	counts, err := svc.Unread(ctx, agent(me))
	if err != nil {
		t.Fatalf("unread failed: %v", err)
	}
	if counts != (UnreadCounts{Direct: 2, Broadcast: 1, Total: 3}) {
		t.Fatalf("unexpected counts %+v", counts)
	}

	if err := svc.MarkDirectRead(ctx, agent(me), first.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if err := svc.DeleteDirect(ctx, agent(me), second.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	counts, _ = svc.Unread(ctx, agent(me))
	if counts.Direct != 0 || counts.Total != 1 {
		t.Fatalf("expected only the broadcast unread, got %+v", counts)
	}

	sent, _ := svc.ListDirect(ctx, agent(other), repository.BoxSent)
	if len(sent) != 2 {
		t.Fatalf("expected deleted message to stay in sender's sent box, got %d", len(sent))
	}

	// The sender cannot mark the recipient's message read.
	if err := svc.MarkDirectRead(ctx, agent(other), first.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for non-recipient, got %v", err)
	}
}

func TestBroadcastRequiresManager(t *testing.T) {
	me := uuid.New()
	svc, _ := newTestService(newMemStore(me))
	if _, err := svc.Broadcast(context.Background(), agent(me), "Hoi", "tekst"); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for agent broadcast, got %v", err)
	}
}

func TestBroadcastPublishesEvent(t *testing.T) {
	me := uuid.New()
	svc, bus := newTestService(newMemStore(me))

	var seen atomic.Int32
	bus.Subscribe(events.BroadcastPublished{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if _, ok := e.(events.BroadcastPublished); ok {
			seen.Add(1)
		}
		return nil
	}))

	if _, err := svc.Broadcast(context.Background(), manager(me), "Update", "tekst"); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}
	bus.Wait()
	if seen.Load() != 1 {
		t.Fatalf("expected one BroadcastPublished event, got %d", seen.Load())
	}
}

func TestDeleteBroadcastHidesForOthers(t *testing.T) {
	sender, reader, boss := uuid.New(), uuid.New(), uuid.New()
	store := newMemStore(sender, reader, boss)
	svc, _ := newTestService(store)
	ctx := context.Background()

	b, _ := svc.Broadcast(ctx, manager(sender), "Update", "tekst")

	deleted, err := svc.DeleteBroadcast(ctx, agent(reader), b.ID)
	if err != nil || deleted {
		t.Fatalf("expected reader delete to hide only, deleted=%v err=%v", deleted, err)
	}
	if list, _ := svc.ListBroadcasts(ctx, agent(reader)); len(list) != 0 {
		t.Fatalf("expected hidden broadcast to disappear for reader")
	}
	if list, _ := svc.ListBroadcasts(ctx, admin(boss)); len(list) != 1 {
		t.Fatalf("expected broadcast still visible to others")
	}

	deleted, err = svc.DeleteBroadcast(ctx, admin(boss), b.ID)
	if err != nil || !deleted {
		t.Fatalf("expected admin delete to remove broadcast, deleted=%v err=%v", deleted, err)
	}
	if err := svc.MarkBroadcastRead(ctx, agent(reader), b.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
