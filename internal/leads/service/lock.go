package service

import (
	"context"
	"errors"

	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// Claim grants the actor the working lock on a lead. A second claim by the
// holder refreshes the lock; a claim against a live lock held by someone else,
// or against a lead assigned to someone else, fails with a conflict.
func (s *Service) Claim(ctx context.Context, actor Actor, leadID uuid.UUID) (domain.Lead, error) {
	lead, err := s.repo.ClaimLock(ctx, leadID, actor.ID, s.lockCutoff())
	if errors.Is(err, repository.ErrLockHeld) {
		conflict := apperr.Conflict(err.Error())
		if holder, lockedAt, herr := s.repo.LockHolder(ctx, leadID); herr == nil && holder != nil {
			conflict.WithDetails(map[string]any{"holderId": holder, "lockedAt": lockedAt})
		}
		s.log.LeadLock("claim", leadID.String(), actor.ID.String(), false)
		return domain.Lead{}, conflict
	}
	if err != nil {
		return domain.Lead{}, mapErr(err)
	}
	s.log.LeadLock("claim", leadID.String(), actor.ID.String(), true)
	return lead, nil
}

// Release clears the actor's lock. Managers and above may release any lock.
func (s *Service) Release(ctx context.Context, actor Actor, leadID uuid.UUID) (bool, error) {
	released, err := s.repo.ReleaseLock(ctx, leadID, actor.ID, actor.Elevated())
	if err != nil {
		return false, mapErr(err)
	}
	s.log.LeadLock("release", leadID.String(), actor.ID.String(), released)
	return released, nil
}

// SweepExpiredLocks releases every lock older than the configured timeout.
func (s *Service) SweepExpiredLocks(ctx context.Context) (int64, error) {
	released, err := s.repo.SweepExpiredLocks(ctx, s.lockCutoff())
	if err != nil {
		return 0, mapErr(err)
	}
	if released > 0 {
		s.log.Info("expired lead locks released", "count", released)
	}
	return released, nil
}
