// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leaddesk_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Pool Events
// =============================================================================

// LeadCompleted is published after an agent records an outcome for a lead.
type LeadCompleted struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	AgentID        uuid.UUID `json:"agentId"`
	Status         string    `json:"status"`
	PotentialLevel string    `json:"potentialLevel"`
}

func (e LeadCompleted) EventName() string { return "leads.completed" }

// LeadsDistributed is published whenever the owner of one or more leads
// changes in bulk (assignment, transfer, revoke, stuck recovery).
type LeadsDistributed struct {
	BaseEvent
	Reason  string      `json:"reason"`
	ActorID uuid.UUID   `json:"actorId"`
	AgentID *uuid.UUID  `json:"agentId,omitempty"`
	LeadIDs []uuid.UUID `json:"leadIds"`
}

func (e LeadsDistributed) EventName() string { return "leads.distributed" }

// LeadBatchImported is published after an upload batch has been stored.
type LeadBatchImported struct {
	BaseEvent
	BatchID    uuid.UUID `json:"batchId"`
	UploadedBy uuid.UUID `json:"uploadedBy"`
	LeadCount  int       `json:"leadCount"`
}

func (e LeadBatchImported) EventName() string { return "leads.batch_imported" }

// =============================================================================
// Messaging Events
// =============================================================================

// BroadcastPublished is published when a manager sends a broadcast.
type BroadcastPublished struct {
	BaseEvent
	MessageID uuid.UUID `json:"messageId"`
	SenderID  uuid.UUID `json:"senderId"`
	Title     string    `json:"title"`
}

func (e BroadcastPublished) EventName() string { return "messaging.broadcast_published" }
