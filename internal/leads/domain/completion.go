package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotAssignedAgent   = errors.New("only the assigned agent can complete this lead")
	ErrPendingNotTerminal = errors.New("pending is not a completion status")
	ErrAppointmentTime    = errors.New("appointmentAt is required for appointments")
	ErrNoteRequired       = errors.New("note is required")
	ErrUnknownStatus      = errors.New("unknown status")
	ErrUnknownPotential   = errors.New("unknown potential level")
)

// Completion is an agent's disposition of a lead.
type Completion struct {
	LeadID         uuid.UUID
	AgentID        uuid.UUID
	Status         Status
	PotentialLevel Potential
	Note           string
	ActionTaken    string
	AppointmentAt  *time.Time
}

// Validate checks the disposition itself, independent of the lead.
func (c Completion) Validate() error {
	if !ValidStatus(c.Status) {
		return ErrUnknownStatus
	}
	if c.Status == StatusPending {
		return ErrPendingNotTerminal
	}
	if !ValidPotential(c.PotentialLevel) {
		return ErrUnknownPotential
	}
	if c.Status == StatusAppointment && c.AppointmentAt == nil {
		return ErrAppointmentTime
	}
	if strings.TrimSpace(c.Note) == "" {
		return ErrNoteRequired
	}
	return nil
}

// CheckCompletable verifies the agent may complete the lead.
func (l Lead) CheckCompletable(agent uuid.UUID) error {
	if !l.IsAssignedTo(agent) {
		return ErrNotAssignedAgent
	}
	return nil
}
