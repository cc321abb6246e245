// Package domain holds the lead types and the pure rules of the lead workflow:
// who may lock, who may complete, which leads a revoke or stuck recovery
// touches, and how a batch is split between agents.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the disposition of a lead.
type Status string

const (
	StatusPending       Status = "pending"
	StatusContacted     Status = "contacted"
	StatusCallback      Status = "callback"
	StatusAppointment   Status = "appointment"
	StatusSold          Status = "sold"
	StatusRejected      Status = "rejected"
	StatusNotInterested Status = "not_interested"
	StatusNoAnswer      Status = "no_answer"
	StatusCancelled     Status = "cancelled"
)

// Statuses lists every valid status.
var Statuses = []Status{
	StatusPending, StatusContacted, StatusCallback, StatusAppointment, StatusSold,
	StatusRejected, StatusNotInterested, StatusNoAnswer, StatusCancelled,
}

// Potential is the qualitative sales likelihood of a lead.
type Potential string

const (
	PotentialHigh        Potential = "high"
	PotentialMedium      Potential = "medium"
	PotentialLow         Potential = "low"
	PotentialNotAssessed Potential = "not_assessed"
)

// Potentials lists every valid potential level.
var Potentials = []Potential{PotentialHigh, PotentialMedium, PotentialLow, PotentialNotAssessed}

// Activity actions written to lead_activity_logs.
const (
	ActionCreated        = "created"
	ActionImported       = "imported"
	ActionAssigned       = "assigned"
	ActionLocked         = "locked"
	ActionUnlocked       = "unlocked"
	ActionLockExpired    = "lock_expired"
	ActionTransferred    = "transferred"
	ActionRevoked        = "revoked"
	ActionStuckRecovered = "stuck_recovered"
	ActionCompleted      = "completed"
	ActionEnriched       = "enriched"
	ActionSMSSent        = "sms_sent"
	ActionReminderSent   = "reminder_sent"
)

// Lead is a business contact moving through the call workflow.
type Lead struct {
	ID             uuid.UUID
	BatchID        *uuid.UUID
	CompanyName    string
	ContactName    string
	Phone          string
	Email          string
	Address        string
	City           string
	Category       string
	Rating         *float64
	ReviewCount    int
	Website        string
	Status         Status
	PotentialLevel Potential
	AssignedTo     *uuid.UUID
	AssignedAt     *time.Time
	CurrentAgentID *uuid.UUID
	LockedAt       *time.Time
	ProcessedAt    *time.Time
	AppointmentAt  *time.Time
	Reminder5hAt   *time.Time
	Reminder1hAt   *time.Time
	Enrichment     json.RawMessage
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Note is a disposition note. Append-only.
type Note struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	AgentID     *uuid.UUID
	AgentName   string
	Note        string
	ActionTaken string
	CreatedAt   time.Time
}

// Activity is one audit row.
type Activity struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	AgentID   *uuid.UUID
	AgentName string
	Action    string
	Metadata  json.RawMessage
	CreatedAt time.Time
}

// Batch is the provenance record of one bulk import.
type Batch struct {
	ID              uuid.UUID
	Name            string
	FileName        string
	ObjectKey       *string
	UploadedBy      *uuid.UUID
	LeadCount       int
	UnassignedCount int
	CreatedAt       time.Time
}

// ValidStatus reports whether s is a known status.
func ValidStatus(s Status) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidPotential reports whether p is a known potential level.
func ValidPotential(p Potential) bool {
	for _, v := range Potentials {
		if v == p {
			return true
		}
	}
	return false
}

// StatusNames returns the statuses as strings, for validators.
func StatusNames() []string {
	out := make([]string, len(Statuses))
	for i, s := range Statuses {
		out[i] = string(s)
	}
	return out
}

// PotentialNames returns the potential levels as strings, for validators.
func PotentialNames() []string {
	out := make([]string, len(Potentials))
	for i, p := range Potentials {
		out[i] = string(p)
	}
	return out
}

func sameID(a *uuid.UUID, b uuid.UUID) bool {
	return a != nil && *a == b
}

// IsAssignedTo reports whether agent owns the lead.
func (l Lead) IsAssignedTo(agent uuid.UUID) bool {
	return sameID(l.AssignedTo, agent)
}

// LockExpired reports whether the lead holds a lock taken before cutoff.
func (l Lead) LockExpired(cutoff time.Time) bool {
	return l.CurrentAgentID != nil && l.LockedAt != nil && l.LockedAt.Before(cutoff)
}

// CanLock reports whether agent may claim the lock: the lead must be free,
// already theirs, or held by a lock older than cutoff, and it must not be
// assigned to someone else.
func (l Lead) CanLock(agent uuid.UUID, cutoff time.Time) bool {
	if l.AssignedTo != nil && *l.AssignedTo != agent {
		return false
	}
	return l.CurrentAgentID == nil || *l.CurrentAgentID == agent || l.LockExpired(cutoff)
}

// RevokeEligible reports whether a revoke for agent clears this lead.
func (l Lead) RevokeEligible(agent uuid.UUID) bool {
	return l.Status == StatusPending && l.IsAssignedTo(agent)
}

// AssignmentReference is the time stuck detection measures from.
func (l Lead) AssignmentReference() time.Time {
	if l.AssignedAt != nil {
		return *l.AssignedAt
	}
	return l.CreatedAt
}

// IsStuck reports whether a pending, assigned lead has sat untouched since before cutoff.
func (l Lead) IsStuck(cutoff time.Time) bool {
	return l.Status == StatusPending && l.AssignedTo != nil && l.AssignmentReference().Before(cutoff)
}
