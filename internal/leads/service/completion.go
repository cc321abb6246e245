package service

import (
	"context"
	"strings"

	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/platform/sanitize"

	"github.com/google/uuid"
)

// CompletionResult carries the updated lead and the caller's next pending lead.
type CompletionResult struct {
	Lead       domain.Lead
	NextLeadID *uuid.UUID
}

// Complete records the assigned agent's disposition of a lead.
func (s *Service) Complete(ctx context.Context, actor Actor, c domain.Completion) (CompletionResult, error) {
	c.AgentID = actor.ID
	c.Note = sanitize.Text(c.Note)
	c.ActionTaken = strings.TrimSpace(c.ActionTaken)
	if err := c.Validate(); err != nil {
		return CompletionResult{}, mapErr(err)
	}

	lead, err := s.repo.Complete(ctx, c)
	if err != nil {
		return CompletionResult{}, mapErr(err)
	}

	s.publish(ctx, events.LeadCompleted{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		AgentID:        actor.ID,
		Status:         string(lead.Status),
		PotentialLevel: string(lead.PotentialLevel),
	})

	next, err := s.repo.NextPendingID(ctx, actor.ID, &lead.ID)
	if err != nil {
		s.log.Warn("next lead lookup failed", "agentId", actor.ID, "error", err)
		next = nil
	}

	s.log.Info("lead completed", "leadId", lead.ID, "agentId", actor.ID, "status", lead.Status)
	return CompletionResult{Lead: lead, NextLeadID: next}, nil
}
