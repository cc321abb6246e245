package service

import (
	"context"
	"strings"

	"leaddesk_backend/internal/adapters/storage"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/phone"

	"github.com/google/uuid"
)

type CreateLeadInput struct {
	CompanyName string
	ContactName string
	Phone       string
	Email       string
	Address     string
	City        string
	Category    string
	Rating      *float64
	ReviewCount int
	Website     string
}

// Create adds a manual lead to the pool: pending and unassigned.
func (s *Service) Create(ctx context.Context, actor Actor, in CreateLeadInput) (domain.Lead, error) {
	company := strings.TrimSpace(in.CompanyName)
	if company == "" {
		return domain.Lead{}, apperr.Validation("companyName is required")
	}

	lead, err := s.repo.CreateLead(ctx, repository.CreateLeadParams{
		CompanyName: company,
		ContactName: strings.TrimSpace(in.ContactName),
		Phone:       phone.NormalizeE164(in.Phone, s.cfg.GetPhoneDefaultRegion()),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Address:     strings.TrimSpace(in.Address),
		City:        strings.TrimSpace(in.City),
		Category:    strings.TrimSpace(in.Category),
		Rating:      in.Rating,
		ReviewCount: in.ReviewCount,
		Website:     strings.TrimSpace(in.Website),
		CreatedBy:   actor.ID,
	})
	if err != nil {
		return domain.Lead{}, mapErr(err)
	}
	s.log.Info("lead created", "leadId", lead.ID, "by", actor.ID)
	return lead, nil
}

// Get returns a lead the actor may see. Agents only see leads they own or hold.
func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, mapErr(err)
	}
	if !s.visible(actor, lead) {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (s *Service) visible(actor Actor, lead domain.Lead) bool {
	if actor.Elevated() {
		return true
	}
	return lead.IsAssignedTo(actor.ID) || (lead.CurrentAgentID != nil && *lead.CurrentAgentID == actor.ID)
}

// List pages through leads. Agents are always restricted to their own.
func (s *Service) List(ctx context.Context, actor Actor, params repository.ListParams) ([]domain.Lead, int, error) {
	if !actor.Elevated() {
		self := actor.ID
		params.AssignedTo = &self
		params.Unassigned = false
	}
	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	return leads, total, nil
}

func (s *Service) Notes(ctx context.Context, actor Actor, id uuid.UUID) ([]domain.Note, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListNotes(ctx, id)
	return notes, mapErr(err)
}

func (s *Service) Activity(ctx context.Context, actor Actor, id uuid.UUID) ([]domain.Activity, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	activity, err := s.repo.ListActivity(ctx, id)
	return activity, mapErr(err)
}

// Next returns the caller's oldest pending lead, or nil when none remain.
func (s *Service) Next(ctx context.Context, actor Actor) (*uuid.UUID, error) {
	id, err := s.repo.NextPendingID(ctx, actor.ID, nil)
	return id, mapErr(err)
}

func (s *Service) ListBatches(ctx context.Context) ([]domain.Batch, error) {
	batches, err := s.repo.ListBatches(ctx)
	return batches, mapErr(err)
}

// BatchFileURL presigns a download of a batch's archived upload.
func (s *Service) BatchFileURL(ctx context.Context, batchID uuid.UUID) (*storage.PresignedURL, error) {
	batch, err := s.repo.GetBatch(ctx, batchID)
	if err != nil {
		return nil, mapErr(err)
	}
	if batch.ObjectKey == nil || s.archive == nil {
		return nil, apperr.NotFound("batch has no archived file")
	}
	link, err := s.archive.DownloadURL(ctx, *batch.ObjectKey)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return link, nil
}
