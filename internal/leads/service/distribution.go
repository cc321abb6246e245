package service

import (
	"context"
	"time"

	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// AssignResult reports how many leads each agent received.
type AssignResult struct {
	Assigned    int
	Allocations []domain.Allocation
}

// Assign distributes a batch's unassigned leads between agents by count.
func (s *Service) Assign(ctx context.Context, actor Actor, batchID uuid.UUID, quotas []domain.Quota) (AssignResult, error) {
	seen := make(map[uuid.UUID]struct{}, len(quotas))
	for _, q := range quotas {
		if _, dup := seen[q.AgentID]; dup {
			return AssignResult{}, apperr.Validation("each agent may appear only once")
		}
		seen[q.AgentID] = struct{}{}
		if err := s.requireAgent(ctx, q.AgentID); err != nil {
			return AssignResult{}, err
		}
	}

	allocations, err := s.repo.AssignBatch(ctx, batchID, quotas, actor.ID)
	if err != nil {
		return AssignResult{}, mapErr(err)
	}

	for _, alloc := range allocations {
		agentID := alloc.AgentID
		s.publish(ctx, events.LeadsDistributed{
			BaseEvent: events.NewBaseEvent(),
			Reason:    domain.ActionAssigned,
			ActorID:   actor.ID,
			AgentID:   &agentID,
			LeadIDs:   alloc.LeadIDs,
		})
	}

	assigned := domain.AssignedCount(allocations)
	s.log.Info("batch assigned", "batchId", batchID, "assigned", assigned, "agents", len(allocations))
	return AssignResult{Assigned: assigned, Allocations: allocations}, nil
}

// Transfer hands the given leads to target. Their status resets to pending
// unless preserveStatus is set.
func (s *Service) Transfer(ctx context.Context, actor Actor, leadIDs []uuid.UUID, target uuid.UUID, preserveStatus bool) ([]uuid.UUID, error) {
	if len(leadIDs) == 0 {
		return nil, apperr.Validation("leadIds must not be empty")
	}
	if err := s.requireAgent(ctx, target); err != nil {
		return nil, err
	}

	moved, err := s.repo.Transfer(ctx, dedupe(leadIDs), target, actor.ID, preserveStatus)
	if err != nil {
		return nil, mapErr(err)
	}
	if len(moved) == 0 {
		return nil, apperr.NotFound("no matching leads")
	}

	s.publish(ctx, events.LeadsDistributed{
		BaseEvent: events.NewBaseEvent(),
		Reason:    domain.ActionTransferred,
		ActorID:   actor.ID,
		AgentID:   &target,
		LeadIDs:   moved,
	})
	s.log.Info("leads transferred", "count", len(moved), "to", target, "preserveStatus", preserveStatus)
	return moved, nil
}

// Revoke returns an agent's pending leads to the pool.
func (s *Service) Revoke(ctx context.Context, actor Actor, agentID uuid.UUID) ([]uuid.UUID, error) {
	revoked, err := s.repo.Revoke(ctx, agentID, actor.ID)
	if err != nil {
		return nil, mapErr(err)
	}
	if len(revoked) > 0 {
		s.publish(ctx, events.LeadsDistributed{
			BaseEvent: events.NewBaseEvent(),
			Reason:    domain.ActionRevoked,
			ActorID:   actor.ID,
			LeadIDs:   revoked,
		})
	}
	s.log.Info("leads revoked", "agentId", agentID, "count", len(revoked))
	return revoked, nil
}

// stuckCutoff resolves hours against the configured default and returns the
// effective threshold with its cutoff.
func (s *Service) stuckCutoff(hours int) (time.Time, int, error) {
	if hours == 0 {
		hours = s.cfg.GetStuckLeadDefaultHours()
	}
	if hours < 0 {
		return time.Time{}, 0, apperr.Validation("hours must be positive")
	}
	return s.now().Add(-time.Duration(hours) * time.Hour), hours, nil
}

// RecoverStuck reassigns pending leads untouched for more than hours to
// target, or returns them to the pool when target is nil.
func (s *Service) RecoverStuck(ctx context.Context, actor Actor, hours int, target *uuid.UUID) ([]uuid.UUID, error) {
	cutoff, _, err := s.stuckCutoff(hours)
	if err != nil {
		return nil, err
	}
	if target != nil {
		if err := s.requireAgent(ctx, *target); err != nil {
			return nil, err
		}
	}

	moved, err := s.repo.RecoverStuck(ctx, cutoff, target, actor.ID)
	if err != nil {
		return nil, mapErr(err)
	}
	if len(moved) > 0 {
		s.publish(ctx, events.LeadsDistributed{
			BaseEvent: events.NewBaseEvent(),
			Reason:    domain.ActionStuckRecovered,
			ActorID:   actor.ID,
			AgentID:   target,
			LeadIDs:   moved,
		})
	}
	s.log.Info("stuck leads recovered", "count", len(moved), "cutoff", cutoff)
	return moved, nil
}

// PreviewStuck lists what RecoverStuck would move, along with the threshold
// in hours that was applied.
func (s *Service) PreviewStuck(ctx context.Context, hours, limit int) ([]domain.Lead, int, error) {
	cutoff, effective, err := s.stuckCutoff(hours)
	if err != nil {
		return nil, 0, err
	}
	leads, err := s.repo.ListStuck(ctx, cutoff, limit)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	return leads, effective, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
