package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

type workflowConfig struct{}

func (workflowConfig) GetLeadLockTimeout() time.Duration { return 10 * time.Minute }
func (workflowConfig) GetStuckLeadDefaultHours() int      { return 24 }
func (workflowConfig) GetPhoneDefaultRegion() string      { return "NL" }

// memStore is an in-memory LeadStore that applies the same rules as the SQL.
type memStore struct {
	mu       sync.Mutex
	leads    map[uuid.UUID]*domain.Lead
	agents   map[uuid.UUID]bool
	activity []domain.Activity
	notes    []domain.Note
	batches  []domain.Batch
}

func newMemStore() *memStore {
	return &memStore{leads: map[uuid.UUID]*domain.Lead{}, agents: map[uuid.UUID]bool{}}
}

func (m *memStore) addLead(l domain.Lead) uuid.UUID {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = domain.StatusPending
	}
	if l.PotentialLevel == "" {
		l.PotentialLevel = domain.PotentialNotAssessed
	}
	m.leads[l.ID] = &l
	return l.ID
}

func (m *memStore) log(leadID uuid.UUID, agent *uuid.UUID, action string) {
	m.activity = append(m.activity, domain.Activity{ID: uuid.New(), LeadID: leadID, AgentID: agent, Action: action, CreatedAt: time.Now()})
}

func (m *memStore) countActivity(action string) int {
	n := 0
	for _, a := range m.activity {
		if a.Action == action {
			n++
		}
	}
	return n
}

func (m *memStore) ordered() []*domain.Lead {
	out := make([]*domain.Lead, 0, len(m.leads))
	for _, l := range m.leads {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *memStore) CreateLead(_ context.Context, p repository.CreateLeadParams) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.addLead(domain.Lead{CompanyName: p.CompanyName, Phone: p.Phone, Email: p.Email, CreatedAt: time.Now()})
	m.log(id, &p.CreatedBy, domain.ActionCreated)
	return *m.leads[id], nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return *l, nil
}

func (m *memStore) List(_ context.Context, p repository.ListParams) ([]domain.Lead, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Lead
	for _, l := range m.ordered() {
		if p.AssignedTo != nil && !l.IsAssignedTo(*p.AssignedTo) {
			continue
		}
		if p.Unassigned && l.AssignedTo != nil {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (m *memStore) NextPendingID(_ context.Context, agent uuid.UUID, exclude *uuid.UUID) (*uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.ordered() {
		if l.Status != domain.StatusPending || !l.IsAssignedTo(agent) {
			continue
		}
		if exclude != nil && *exclude == l.ID {
			continue
		}
		id := l.ID
		return &id, nil
	}
	return nil, nil
}

func (m *memStore) CountPending(_ context.Context, agent uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.leads {
		if l.RevokeEligible(agent) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) AgentExists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agents[id], nil
}

func (m *memStore) ListNotes(_ context.Context, leadID uuid.UUID) ([]domain.Note, error) {
	var out []domain.Note
	for _, n := range m.notes {
		if n.LeadID == leadID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memStore) ListActivity(_ context.Context, leadID uuid.UUID) ([]domain.Activity, error) {
	var out []domain.Activity
	for _, a := range m.activity {
		if a.LeadID == leadID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ImportBatch(_ context.Context, p repository.ImportBatchParams) (domain.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := domain.Batch{ID: uuid.New(), Name: p.Name, FileName: p.FileName, ObjectKey: p.ObjectKey, LeadCount: len(p.Rows), UnassignedCount: len(p.Rows), CreatedAt: time.Now()}
	for i, row := range p.Rows {
		batchID := batch.ID
		m.addLead(domain.Lead{BatchID: &batchID, CompanyName: row.CompanyName, Phone: row.Phone, CreatedAt: batch.CreatedAt.Add(time.Duration(i) * time.Microsecond)})
	}
	m.batches = append(m.batches, batch)
	return batch, nil
}

func (m *memStore) ListBatches(context.Context) ([]domain.Batch, error) { return m.batches, nil }

func (m *memStore) GetBatch(_ context.Context, id uuid.UUID) (domain.Batch, error) {
	for _, b := range m.batches {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Batch{}, repository.ErrBatchNotFound
}

func (m *memStore) ClaimLock(_ context.Context, leadID, agent uuid.UUID, cutoff time.Time) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[leadID]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	if !l.CanLock(agent, cutoff) {
		return domain.Lead{}, repository.ErrLockHeld
	}
	now := time.Now()
	l.CurrentAgentID, l.LockedAt = &agent, &now
	if l.AssignedTo == nil {
		l.AssignedTo, l.AssignedAt = &agent, &now
	}
	m.log(leadID, &agent, domain.ActionLocked)
	return *l, nil
}

func (m *memStore) LockHolder(_ context.Context, leadID uuid.UUID) (*uuid.UUID, *time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[leadID]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	return l.CurrentAgentID, l.LockedAt, nil
}

func (m *memStore) ReleaseLock(_ context.Context, leadID, agent uuid.UUID, force bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[leadID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if l.CurrentAgentID == nil || (!force && *l.CurrentAgentID != agent) {
		return false, nil
	}
	l.CurrentAgentID, l.LockedAt = nil, nil
	m.log(leadID, &agent, domain.ActionUnlocked)
	return true, nil
}

func (m *memStore) SweepExpiredLocks(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, l := range m.leads {
		if l.LockExpired(cutoff) {
			l.CurrentAgentID, l.LockedAt = nil, nil
			m.log(l.ID, nil, domain.ActionLockExpired)
			n++
		}
	}
	return n, nil
}

func (m *memStore) AssignBatch(_ context.Context, batchID uuid.UUID, quotas []domain.Quota, actor uuid.UUID) ([]domain.Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for _, l := range m.ordered() {
		if l.BatchID != nil && *l.BatchID == batchID && l.AssignedTo == nil {
			ids = append(ids, l.ID)
		}
	}
	allocations, err := domain.Partition(ids, quotas)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, a := range allocations {
		for _, id := range a.LeadIDs {
			agent := a.AgentID
			m.leads[id].AssignedTo, m.leads[id].AssignedAt = &agent, &now
			m.log(id, &actor, domain.ActionAssigned)
		}
	}
	return allocations, nil
}

func (m *memStore) Transfer(_ context.Context, ids []uuid.UUID, target, actor uuid.UUID, preserve bool) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var moved []uuid.UUID
	now := time.Now()
	for _, id := range ids {
		l, ok := m.leads[id]
		if !ok {
			continue
		}
		l.AssignedTo, l.AssignedAt = &target, &now
		l.CurrentAgentID, l.LockedAt = nil, nil
		if !preserve {
			l.Status = domain.StatusPending
		}
		m.log(id, &actor, domain.ActionTransferred)
		moved = append(moved, id)
	}
	return moved, nil
}

func (m *memStore) Revoke(_ context.Context, agent, actor uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var revoked []uuid.UUID
	for _, l := range m.ordered() {
		if !l.RevokeEligible(agent) {
			continue
		}
		l.AssignedTo, l.AssignedAt, l.CurrentAgentID, l.LockedAt = nil, nil, nil, nil
		m.log(l.ID, &actor, domain.ActionRevoked)
		revoked = append(revoked, l.ID)
	}
	return revoked, nil
}

func (m *memStore) RecoverStuck(_ context.Context, cutoff time.Time, target *uuid.UUID, actor uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var moved []uuid.UUID
	now := time.Now()
	for _, l := range m.ordered() {
		if !l.IsStuck(cutoff) {
			continue
		}
		if target != nil {
			t := *target
			l.AssignedTo, l.AssignedAt = &t, &now
		} else {
			l.AssignedTo, l.AssignedAt = nil, nil
		}
		l.CurrentAgentID, l.LockedAt = nil, nil
		m.log(l.ID, &actor, domain.ActionStuckRecovered)
		moved = append(moved, l.ID)
	}
	return moved, nil
}

func (m *memStore) ListStuck(_ context.Context, cutoff time.Time, _ int) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Lead
	for _, l := range m.ordered() {
		if l.IsStuck(cutoff) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memStore) Complete(_ context.Context, c domain.Completion) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[c.LeadID]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	if err := l.CheckCompletable(c.AgentID); err != nil {
		return domain.Lead{}, err
	}
	now := time.Now()
	l.Status, l.PotentialLevel, l.AppointmentAt = c.Status, c.PotentialLevel, c.AppointmentAt
	l.CurrentAgentID, l.LockedAt, l.ProcessedAt = nil, nil, &now
	m.notes = append(m.notes, domain.Note{ID: uuid.New(), LeadID: l.ID, AgentID: &c.AgentID, Note: c.Note})
	m.log(l.ID, &c.AgentID, domain.ActionCompleted)
	return *l, nil
}

func newTestService(store *memStore) *Service {
	return New(store, nil, nil, workflowConfig{}, logger.Discard())
}

func agentActor(id uuid.UUID) Actor   { return Actor{ID: id, Role: access.RoleAgent} }
func managerActor(id uuid.UUID) Actor { return Actor{ID: id, Role: access.RoleManager} }

func TestClaimConflictCarriesHolder(t *testing.T) {
	store := newMemStore()
	a, b := uuid.New(), uuid.New()
	leadID := store.addLead(domain.Lead{CreatedAt: time.Now()})
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Claim(ctx, agentActor(a), leadID); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	_, err := svc.Claim(ctx, agentActor(b), leadID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Details == nil {
		t.Fatalf("expected holder details on conflict")
	}
	if _, err := svc.Claim(ctx, agentActor(a), leadID); err != nil {
		t.Fatalf("holder re-claim should refresh, got %v", err)
	}
}

func TestClaimUnknownLeadIsNotFound(t *testing.T) {
	svc := newTestService(newMemStore())
	_, err := svc.Claim(context.Background(), agentActor(uuid.New()), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSweepReleasesOnlyExpiredLocks(t *testing.T) {
	store := newMemStore()
	agent := uuid.New()
	svc := newTestService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	stale := time.Date(2026, 3, 1, 11, 45, 0, 0, time.UTC)
	fresh := time.Date(2026, 3, 1, 11, 55, 0, 0, time.UTC)
	staleID := store.addLead(domain.Lead{AssignedTo: &agent, CurrentAgentID: &agent, LockedAt: &stale})
	freshID := store.addLead(domain.Lead{AssignedTo: &agent, CurrentAgentID: &agent, LockedAt: &fresh})

	released, err := svc.SweepExpiredLocks(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if released != 1 {
		t.Fatalf("expected 1 released lock, got %d", released)
	}
	if store.leads[staleID].CurrentAgentID != nil {
		t.Fatalf("expected stale lock cleared")
	}
	if store.leads[freshID].CurrentAgentID == nil {
		t.Fatalf("expected fresh lock untouched")
	}
}

func TestAssignPartitionsInUploadOrder(t *testing.T) {
	store := newMemStore()
	a, b := uuid.New(), uuid.New()
	store.agents[a], store.agents[b] = true, true
	svc := newTestService(store)
	ctx := context.Background()

	rows := make([]repository.ImportRow, 10)
	for i := range rows {
		rows[i] = repository.ImportRow{CompanyName: "Company"}
	}
	batch, err := store.ImportBatch(ctx, repository.ImportBatchParams{Name: "b", Rows: rows})
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	res, err := svc.Assign(ctx, managerActor(uuid.New()), batch.ID, []domain.Quota{{AgentID: a, Count: 3}, {AgentID: b, Count: 4}})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if res.Assigned != 7 {
		t.Fatalf("expected 7 assigned, got %d", res.Assigned)
	}
	if got := store.countActivity(domain.ActionAssigned); got != 7 {
		t.Fatalf("expected one activity row per lead, got %d", got)
	}

	ordered := store.ordered()
	for i, l := range ordered {
		switch {
		case i < 3 && !l.IsAssignedTo(a):
			t.Fatalf("lead %d should belong to the first agent", i)
		case i >= 3 && i < 7 && !l.IsAssignedTo(b):
			t.Fatalf("lead %d should belong to the second agent", i)
		case i >= 7 && l.AssignedTo != nil:
			t.Fatalf("lead %d should stay unassigned", i)
		}
	}

	_, err = svc.Assign(ctx, managerActor(uuid.New()), batch.ID, []domain.Quota{{AgentID: a, Count: 0}})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for zero total, got %v", err)
	}
}

func TestAssignRejectsUnknownAgent(t *testing.T) {
	svc := newTestService(newMemStore())
	_, err := svc.Assign(context.Background(), managerActor(uuid.New()), uuid.New(), []domain.Quota{{AgentID: uuid.New(), Count: 1}})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown agent, got %v", err)
	}
}

func TestRevokeOnlyTouchesPendingLeads(t *testing.T) {
	store := newMemStore()
	agent := uuid.New()
	pending := store.addLead(domain.Lead{AssignedTo: &agent})
	sold := store.addLead(domain.Lead{AssignedTo: &agent, Status: domain.StatusSold})
	svc := newTestService(store)

	revoked, err := svc.Revoke(context.Background(), managerActor(uuid.New()), agent)
	if err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if len(revoked) != 1 || revoked[0] != pending {
		t.Fatalf("expected only the pending lead revoked, got %v", revoked)
	}
	if !store.leads[sold].IsAssignedTo(agent) {
		t.Fatalf("completed lead must keep its owner")
	}
}

func TestTransferResetsStatusUnlessPreserved(t *testing.T) {
	store := newMemStore()
	from, to := uuid.New(), uuid.New()
	store.agents[to] = true
	first := store.addLead(domain.Lead{AssignedTo: &from, Status: domain.StatusCallback})
	second := store.addLead(domain.Lead{AssignedTo: &from, Status: domain.StatusCallback})
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Transfer(ctx, managerActor(uuid.New()), []uuid.UUID{first}, to, false); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if store.leads[first].Status != domain.StatusPending {
		t.Fatalf("expected status reset to pending")
	}
	if _, err := svc.Transfer(ctx, managerActor(uuid.New()), []uuid.UUID{second, second}, to, true); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if store.leads[second].Status != domain.StatusCallback {
		t.Fatalf("expected status preserved")
	}
	if got := store.countActivity(domain.ActionTransferred); got != 2 {
		t.Fatalf("expected duplicate ids collapsed, got %d activity rows", got)
	}
}

func TestRecoverStuckUsesAssignmentTime(t *testing.T) {
	store := newMemStore()
	agent := uuid.New()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	old := now.Add(-30 * time.Hour)
	recent := now.Add(-2 * time.Hour)

	stuck := store.addLead(domain.Lead{AssignedTo: &agent, AssignedAt: &old, CreatedAt: old})
	store.addLead(domain.Lead{AssignedTo: &agent, AssignedAt: &recent, CreatedAt: old})
	store.addLead(domain.Lead{AssignedTo: &agent, AssignedAt: &old, CreatedAt: old, Status: domain.StatusContacted})
	svc := newTestService(store)
	svc.now = func() time.Time { return now }

	preview, hours, err := svc.PreviewStuck(context.Background(), 0, 100)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if hours != 24 {
		t.Fatalf("expected the configured default of 24 hours, got %d", hours)
	}
	if len(preview) != 1 || preview[0].ID != stuck {
		t.Fatalf("expected exactly the stale pending lead, got %d", len(preview))
	}

	moved, err := svc.RecoverStuck(context.Background(), managerActor(uuid.New()), 0, nil)
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if len(moved) != 1 || store.leads[stuck].AssignedTo != nil {
		t.Fatalf("expected stuck lead returned to the pool")
	}

	if _, err := svc.RecoverStuck(context.Background(), managerActor(uuid.New()), -1, nil); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for negative hours, got %v", err)
	}
}

func TestCompleteReturnsNextLead(t *testing.T) {
	store := newMemStore()
	agent := uuid.New()
	base := time.Now().Add(-time.Hour)
	first := store.addLead(domain.Lead{AssignedTo: &agent, CreatedAt: base})
	second := store.addLead(domain.Lead{AssignedTo: &agent, CreatedAt: base.Add(time.Minute)})
	svc := newTestService(store)

	res, err := svc.Complete(context.Background(), agentActor(agent), domain.Completion{
		LeadID:         first,
		Status:         domain.StatusContacted,
		PotentialLevel: domain.PotentialMedium,
		Note:           "  called back later \r\n",
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if res.NextLeadID == nil || *res.NextLeadID != second {
		t.Fatalf("expected next lead to be the second pending lead")
	}
	if res.Lead.ProcessedAt == nil {
		t.Fatalf("expected processedAt stamped")
	}
	if got := store.countActivity(domain.ActionCompleted); got != 1 {
		t.Fatalf("expected one completed activity row, got %d", got)
	}
}

func TestCompleteRules(t *testing.T) {
	store := newMemStore()
	owner, other := uuid.New(), uuid.New()
	leadID := store.addLead(domain.Lead{AssignedTo: &owner})
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Complete(ctx, agentActor(other), domain.Completion{LeadID: leadID, Status: domain.StatusSold, PotentialLevel: domain.PotentialHigh, Note: "gebeld"})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	_, err = svc.Complete(ctx, agentActor(owner), domain.Completion{LeadID: leadID, Status: domain.StatusPending, PotentialLevel: domain.PotentialHigh, Note: "gebeld"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for pending, got %v", err)
	}
	_, err = svc.Complete(ctx, agentActor(owner), domain.Completion{LeadID: leadID, Status: domain.StatusAppointment, PotentialLevel: domain.PotentialHigh, Note: "gebeld"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error without appointment time, got %v", err)
	}
	_, err = svc.Complete(ctx, agentActor(owner), domain.Completion{LeadID: leadID, Status: domain.StatusSold, PotentialLevel: domain.PotentialHigh, Note: " \r\n "})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for a blank note, got %v", err)
	}
	if got := store.countActivity(domain.ActionCompleted); got != 0 {
		t.Fatalf("expected no completion recorded, got %d", got)
	}
	_, err = svc.Complete(ctx, agentActor(owner), domain.Completion{LeadID: uuid.New(), Status: domain.StatusSold, PotentialLevel: domain.PotentialHigh, Note: "gebeld"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAgentsOnlySeeTheirOwnLeads(t *testing.T) {
	store := newMemStore()
	owner, other := uuid.New(), uuid.New()
	leadID := store.addLead(domain.Lead{AssignedTo: &owner})
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Get(ctx, agentActor(other), leadID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected other agent to get not found, got %v", err)
	}
	if _, err := svc.Get(ctx, managerActor(other), leadID); err != nil {
		t.Fatalf("manager should see any lead: %v", err)
	}

	leads, _, err := svc.List(ctx, agentActor(other), repository.ListParams{Unassigned: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(leads) != 0 {
		t.Fatalf("agent list must be restricted to own leads")
	}
}

func TestParseUploadHandlesBOMAndSemicolons(t *testing.T) {
	input := "\xef\xbb\xbfBedrijfsnaam;Telefoon;Beoordeling;Plaats\n" +
		"Bakkerij Jansen;06 12345678;4,6;Utrecht\n" +
		";0612345678;3;Leeg\n" +
		"\"Garage \"\"De Hoek\"\"\";+31201234567;;Amsterdam\n"

	rows, stats, err := ParseUpload(strings.NewReader(input), "NL")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if stats.Rows != 2 || stats.Skipped != 1 {
		t.Fatalf("expected 2 rows and 1 skipped, got %+v", stats)
	}
	if rows[0].CompanyName != "Bakkerij Jansen" {
		t.Fatalf("expected BOM stripped from the first header, got %q", rows[0].CompanyName)
	}
	if rows[0].Phone != "+31612345678" {
		t.Fatalf("expected E.164 phone, got %q", rows[0].Phone)
	}
	if rows[0].Rating == nil || *rows[0].Rating != 4.6 {
		t.Fatalf("expected comma-decimal rating parsed")
	}
	if rows[1].CompanyName != `Garage "De Hoek"` || rows[1].Rating != nil {
		t.Fatalf("unexpected second row %+v", rows[1])
	}
}

func TestParseUploadRequiresCompanyColumn(t *testing.T) {
	if _, _, err := ParseUpload(strings.NewReader("phone,city\n0612345678,Utrecht\n"), "NL"); err == nil {
		t.Fatalf("expected error without a company column")
	}
}
