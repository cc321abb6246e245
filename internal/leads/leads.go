// This file defines the public API of the leads bounded context.
// Other modules depend on these types rather than on the repository.
package leads

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// ErrLeadNotFound is returned by Directory lookups for unknown ids.
var ErrLeadNotFound = repository.ErrNotFound

// Activity actions written by other modules.
const (
	ActivitySMSSent      = domain.ActionSMSSent
	ActivityReminderSent = domain.ActionReminderSent
)

// Contact is the slice of a lead that outreach modules (SMS, AI, reminders) need.
type Contact struct {
	ID            uuid.UUID
	CompanyName   string
	ContactName   string
	Phone         string
	City          string
	Category      string
	Website       string
	Rating        *float64
	ReviewCount   int
	Status        string
	AssignedTo    *uuid.UUID
	LockedBy      *uuid.UUID
	AppointmentAt *time.Time
}

// HandledBy reports whether agentID owns or currently holds the lead.
func (c Contact) HandledBy(agentID uuid.UUID) bool {
	return (c.AssignedTo != nil && *c.AssignedTo == agentID) || (c.LockedBy != nil && *c.LockedBy == agentID)
}

// Directory reads and annotates leads on behalf of other modules.
type Directory interface {
	// GetContact returns one lead's contact fields.
	GetContact(ctx context.Context, id uuid.UUID) (Contact, error)
	// GetContacts returns the contacts that exist among ids, in no particular order.
	GetContacts(ctx context.Context, ids []uuid.UUID) ([]Contact, error)
	// RecordActivity appends an audit row to a lead.
	RecordActivity(ctx context.Context, leadID uuid.UUID, agentID *uuid.UUID, action string, meta map[string]any) error
	// SaveEnrichment stores an enrichment document on a lead.
	SaveEnrichment(ctx context.Context, leadID uuid.UUID, doc json.RawMessage) error
}

type directory struct {
	repo *repository.Repository
}

// NewDirectory exposes the lead repository through the Directory interface.
func NewDirectory(repo *repository.Repository) Directory {
	return directory{repo: repo}
}

func (d directory) GetContact(ctx context.Context, id uuid.UUID) (Contact, error) {
	lead, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return Contact{}, err
	}
	return ContactOf(lead), nil
}

func (d directory) GetContacts(ctx context.Context, ids []uuid.UUID) ([]Contact, error) {
	leads, err := d.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Contact, 0, len(leads))
	for _, l := range leads {
		out = append(out, ContactOf(l))
	}
	return out, nil
}

func (d directory) RecordActivity(ctx context.Context, leadID uuid.UUID, agentID *uuid.UUID, action string, meta map[string]any) error {
	return d.repo.RecordActivity(ctx, leadID, agentID, action, meta)
}

func (d directory) SaveEnrichment(ctx context.Context, leadID uuid.UUID, doc json.RawMessage) error {
	err := d.repo.SaveEnrichment(ctx, leadID, doc)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLeadNotFound
	}
	return err
}

// ContactOf projects a lead row onto the fields outreach modules use.
func ContactOf(l domain.Lead) Contact {
	return Contact{
		ID:            l.ID,
		CompanyName:   l.CompanyName,
		ContactName:   l.ContactName,
		Phone:         l.Phone,
		City:          l.City,
		Category:      l.Category,
		Website:       l.Website,
		Rating:        l.Rating,
		ReviewCount:   l.ReviewCount,
		Status:        string(l.Status),
		AssignedTo:    l.AssignedTo,
		LockedBy:      l.CurrentAgentID,
		AppointmentAt: l.AppointmentAt,
	}
}

// ExportFilter narrows a lead export. Zero values match everything.
type ExportFilter struct {
	BatchID    *uuid.UUID
	AssignedTo *uuid.UUID
	Status     string
}

// ExportRow is one lead as it appears in a spreadsheet export.
type ExportRow struct {
	CompanyName    string
	ContactName    string
	Phone          string
	Email          string
	Address        string
	City           string
	Category       string
	Rating         *float64
	Status         string
	PotentialLevel string
	AgentName      string
	CreatedAt      time.Time
}

// Exporter streams leads for file exports.
type Exporter interface {
	ExportLeads(ctx context.Context, f ExportFilter, fn func(ExportRow) error) error
}

// NewExporter exposes the lead repository through the Exporter interface.
func NewExporter(repo *repository.Repository) Exporter {
	return directory{repo: repo}
}

func (d directory) ExportLeads(ctx context.Context, f ExportFilter, fn func(ExportRow) error) error {
	params := repository.ListParams{BatchID: f.BatchID, AssignedTo: f.AssignedTo}
	if f.Status != "" {
		status := domain.Status(f.Status)
		params.Status = &status
	}
	return d.repo.ListForExport(ctx, params, func(l domain.Lead, agentName string) error {
		return fn(ExportRow{
			CompanyName:    l.CompanyName,
			ContactName:    l.ContactName,
			Phone:          l.Phone,
			Email:          l.Email,
			Address:        l.Address,
			City:           l.City,
			Category:       l.Category,
			Rating:         l.Rating,
			Status:         string(l.Status),
			PotentialLevel: string(l.PotentialLevel),
			AgentName:      agentName,
			CreatedAt:      l.CreatedAt,
		})
	})
}
