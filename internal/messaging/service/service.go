package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/messaging/repository"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	maxBodyRunes  = 4000
	maxTitleRunes = 200
	defaultLimit  = 100

	msgMessageNotFound   = "message not found"
	msgBroadcastNotFound = "broadcast not found"
)

// Actor is the signed-in user.
type Actor struct {
	ID   uuid.UUID
	Role access.Role
}

// UnreadCounts is the badge payload.
type UnreadCounts struct {
	Direct    int `json:"direct"`
	Broadcast int `json:"broadcast"`
	Total     int `json:"total"`
}

type Service struct {
	repo     repository.Store
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(repo repository.Store, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, eventBus: eventBus, log: log, now: time.Now}
}

func cleanBody(body string) (string, error) {
	body = sanitize.Truncate(sanitize.Text(body), maxBodyRunes)
	if body == "" {
		return "", apperr.Validation("message body is empty")
	}
	return body, nil
}

func (s *Service) SendDirect(ctx context.Context, actor Actor, recipientID uuid.UUID, body string) (repository.DirectMessage, error) {
	if recipientID == actor.ID {
		return repository.DirectMessage{}, apperr.Validation("cannot message yourself")
	}
	body, err := cleanBody(body)
	if err != nil {
		return repository.DirectMessage{}, err
	}

	active, err := s.repo.ProfileIsActive(ctx, recipientID)
	if err != nil {
		return repository.DirectMessage{}, apperr.Upstream(err)
	}
	if !active {
		return repository.DirectMessage{}, apperr.NotFound("recipient not found")
	}

	msg, err := s.repo.CreateDirect(ctx, actor.ID, recipientID, body)
	if err != nil {
		return repository.DirectMessage{}, apperr.Upstream(err)
	}
	return msg, nil
}

func (s *Service) ListDirect(ctx context.Context, actor Actor, box repository.Box) ([]repository.DirectMessage, error) {
	if box == "" {
		box = repository.BoxInbox
	}
	msgs, err := s.repo.ListDirect(ctx, actor.ID, box, defaultLimit)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return msgs, nil
}

func (s *Service) MarkDirectRead(ctx context.Context, actor Actor, id uuid.UUID) error {
	return mapErr(s.repo.MarkDirectRead(ctx, id, actor.ID, s.now()), msgMessageNotFound)
}

// DeleteDirect hides a message from the recipient's inbox.
func (s *Service) DeleteDirect(ctx context.Context, actor Actor, id uuid.UUID) error {
	return mapErr(s.repo.DeleteDirect(ctx, id, actor.ID, s.now()), msgMessageNotFound)
}

func (s *Service) Broadcast(ctx context.Context, actor Actor, title, body string) (repository.Broadcast, error) {
	if !access.Can(actor.Role, access.ActionMessagesBcast) {
		return repository.Broadcast{}, apperr.Forbidden("forbidden")
	}
	title = sanitize.Truncate(strings.TrimSpace(sanitize.StripHTML(title)), maxTitleRunes)
	if title == "" {
		return repository.Broadcast{}, apperr.Validation("title is empty")
	}
	body, err := cleanBody(body)
	if err != nil {
		return repository.Broadcast{}, err
	}

	b, err := s.repo.CreateBroadcast(ctx, actor.ID, title, body)
	if err != nil {
		return repository.Broadcast{}, apperr.Upstream(err)
	}

	s.eventBus.Publish(ctx, events.BroadcastPublished{
		BaseEvent: events.NewBaseEvent(),
		MessageID: b.ID,
		SenderID:  actor.ID,
		Title:     b.Title,
	})
	s.log.Info("broadcast published", "messageId", b.ID, "senderId", actor.ID)
	return b, nil
}

func (s *Service) ListBroadcasts(ctx context.Context, actor Actor) ([]repository.Broadcast, error) {
	items, err := s.repo.ListBroadcasts(ctx, actor.ID, defaultLimit)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return items, nil
}

func (s *Service) MarkBroadcastRead(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.repo.BroadcastSender(ctx, id); err != nil {
		return mapErr(err, msgBroadcastNotFound)
	}
	return mapErr(s.repo.MarkBroadcastRead(ctx, id, actor.ID, s.now()), msgBroadcastNotFound)
}

// DeleteBroadcast removes the broadcast for everyone when the caller sent it
// or administers the team. Anyone else only hides it for themselves.
func (s *Service) DeleteBroadcast(ctx context.Context, actor Actor, id uuid.UUID) (deleted bool, err error) {
	sender, err := s.repo.BroadcastSender(ctx, id)
	if err != nil {
		return false, mapErr(err, msgBroadcastNotFound)
	}

	if sender == actor.ID || access.Can(actor.Role, access.ActionTeamManage) {
		return true, mapErr(s.repo.DeleteBroadcast(ctx, id, s.now()), msgBroadcastNotFound)
	}
	return false, mapErr(s.repo.HideBroadcast(ctx, id, actor.ID, s.now()), msgBroadcastNotFound)
}

func (s *Service) Unread(ctx context.Context, actor Actor) (UnreadCounts, error) {
	direct, broadcast, err := s.repo.UnreadCounts(ctx, actor.ID)
	if err != nil {
		return UnreadCounts{}, apperr.Upstream(err)
	}
	return UnreadCounts{Direct: direct, Broadcast: broadcast, Total: direct + broadcast}, nil
}

func mapErr(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(notFound)
	}
	return apperr.Upstream(err)
}
