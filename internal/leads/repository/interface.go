package repository

import (
	"context"
	"time"

	"leaddesk_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// LeadStore is the full set of lead persistence operations.
type LeadStore interface {
	CreateLead(ctx context.Context, params CreateLeadParams) (domain.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	List(ctx context.Context, params ListParams) ([]domain.Lead, int, error)
	NextPendingID(ctx context.Context, agentID uuid.UUID, exclude *uuid.UUID) (*uuid.UUID, error)
	CountPending(ctx context.Context, agentID uuid.UUID) (int, error)
	AgentExists(ctx context.Context, id uuid.UUID) (bool, error)
	ListNotes(ctx context.Context, leadID uuid.UUID) ([]domain.Note, error)
	ListActivity(ctx context.Context, leadID uuid.UUID) ([]domain.Activity, error)
	ImportBatch(ctx context.Context, params ImportBatchParams) (domain.Batch, error)
	ListBatches(ctx context.Context) ([]domain.Batch, error)
	GetBatch(ctx context.Context, id uuid.UUID) (domain.Batch, error)

	ClaimLock(ctx context.Context, leadID, agentID uuid.UUID, cutoff time.Time) (domain.Lead, error)
	LockHolder(ctx context.Context, leadID uuid.UUID) (*uuid.UUID, *time.Time, error)
	ReleaseLock(ctx context.Context, leadID, agentID uuid.UUID, force bool) (bool, error)
	SweepExpiredLocks(ctx context.Context, cutoff time.Time) (int64, error)

	AssignBatch(ctx context.Context, batchID uuid.UUID, quotas []domain.Quota, actorID uuid.UUID) ([]domain.Allocation, error)
	Transfer(ctx context.Context, leadIDs []uuid.UUID, target, actorID uuid.UUID, preserveStatus bool) ([]uuid.UUID, error)
	Revoke(ctx context.Context, agentID, actorID uuid.UUID) ([]uuid.UUID, error)
	RecoverStuck(ctx context.Context, cutoff time.Time, target *uuid.UUID, actorID uuid.UUID) ([]uuid.UUID, error)
	ListStuck(ctx context.Context, cutoff time.Time, limit int) ([]domain.Lead, error)

	Complete(ctx context.Context, c domain.Completion) (domain.Lead, error)
}

// Ensure Repository implements LeadStore
var _ LeadStore = (*Repository)(nil)
