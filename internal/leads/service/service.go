// Package service implements the lead workflow: pool management, locking,
// distribution between agents and completion.
package service

import (
	"context"
	"errors"
	"io"
	"time"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/adapters/storage"
	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

// Actor is the caller on whose behalf an operation runs.
type Actor struct {
	ID   uuid.UUID
	Role access.Role
}

// Elevated reports whether the actor sees every lead.
func (a Actor) Elevated() bool {
	return access.IsElevated(a.Role)
}

// UploadArchive stores raw upload files. Optional.
type UploadArchive interface {
	ArchiveUpload(ctx context.Context, folder, fileName, contentType string, r io.Reader, size int64) (string, error)
	DownloadURL(ctx context.Context, fileKey string) (*storage.PresignedURL, error)
}

type Service struct {
	repo    repository.LeadStore
	archive UploadArchive
	bus     events.Bus
	cfg     config.LeadWorkflowConfig
	log     *logger.Logger
	now     func() time.Time
}

func New(repo repository.LeadStore, archive UploadArchive, bus events.Bus, cfg config.LeadWorkflowConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, archive: archive, bus: bus, cfg: cfg, log: log, now: time.Now}
}

// lockCutoff is the instant before which a lock counts as expired.
func (s *Service) lockCutoff() time.Time {
	return s.now().Add(-s.cfg.GetLeadLockTimeout())
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

// mapErr converts repository and domain errors into typed application errors.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("lead not found")
	case errors.Is(err, repository.ErrBatchNotFound):
		return apperr.NotFound("batch not found")
	case errors.Is(err, repository.ErrLockHeld):
		return apperr.Conflict(err.Error())
	case errors.Is(err, domain.ErrNothingToAssign):
		return apperr.BadRequest(err.Error())
	case errors.Is(err, domain.ErrNotAssignedAgent):
		return apperr.Forbidden(err.Error())
	case errors.Is(err, domain.ErrPendingNotTerminal),
		errors.Is(err, domain.ErrAppointmentTime),
		errors.Is(err, domain.ErrNoteRequired),
		errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrUnknownPotential):
		return apperr.Validation(err.Error())
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Upstream(err)
}

func (s *Service) requireAgent(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.AgentExists(ctx, id)
	if err != nil {
		return apperr.Upstream(err)
	}
	if !ok {
		return apperr.NotFound("agent not found")
	}
	return nil
}
