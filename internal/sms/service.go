// Package sms sends text messages to leads through an HTTP gateway.
package sms

import (
	"context"
	"errors"
	"strings"
	"sync"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/leads"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/phone"
	"leaddesk_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// MaxConcurrentSends bounds bulk fan-out.
	MaxConcurrentSends = 5
	maxBodyRunes       = 640
	maxBulkRecipients  = 500
)

// ErrDisabled is returned when no gateway is configured.
var ErrDisabled = errors.New("sms gateway not configured")

// Actor is the caller.
type Actor struct {
	ID   uuid.UUID
	Role access.Role
}

// BulkResult tallies a bulk send.
type BulkResult struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type Service struct {
	gateway Gateway
	log     DispatchLog
	leads   leads.Directory
	limiter *rate.Limiter
	region  string
	logger  *logger.Logger
}

// NewService builds the service. gateway may be nil, in which case every send
// reports ErrDisabled. perSecond <= 0 means unthrottled.
func NewService(gateway Gateway, dispatches DispatchLog, directory leads.Directory, perSecond float64, region string, log *logger.Logger) *Service {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Service{
		gateway: gateway,
		log:     dispatches,
		leads:   directory,
		limiter: rate.NewLimiter(limit, 1),
		region:  region,
		logger:  log,
	}
}

func (s *Service) Enabled() bool {
	return s.gateway != nil
}

// Render fills the {name} and {company} placeholders. {name} falls back to
// the company when the lead has no contact person.
func Render(template string, c leads.Contact) string {
	name := strings.TrimSpace(c.ContactName)
	if name == "" {
		name = c.CompanyName
	}
	return strings.NewReplacer("{name}", name, "{company}", c.CompanyName).Replace(template)
}

// SendToLead sends one message to a lead's phone and records the attempt.
// The lead gets an sms_sent activity row when the gateway accepts it.
func (s *Service) SendToLead(ctx context.Context, c leads.Contact, body string, sentBy *uuid.UUID) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	to, err := phone.ParseE164(c.Phone, s.region)
	if err != nil {
		return err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	leadID := c.ID
	d := Dispatch{LeadID: &leadID, Phone: to, Body: body, Status: StatusSent, SentBy: sentBy}
	sendErr := s.gateway.Send(ctx, to, body)
	if sendErr != nil {
		msg := sendErr.Error()
		d.Status, d.Error = StatusFailed, &msg
	}

	if err := s.log.RecordDispatch(ctx, d); err != nil {
		s.logger.Warn("failed to record sms dispatch", "leadId", c.ID, "error", err)
	}
	if sendErr != nil {
		return sendErr
	}

	if err := s.leads.RecordActivity(ctx, c.ID, sentBy, leads.ActivitySMSSent, map[string]any{"phone": to}); err != nil {
		s.logger.Warn("failed to record sms activity", "leadId", c.ID, "error", err)
	}
	return nil
}

// BulkSend messages every listed lead. Leads that do not exist, are not the
// caller's, or have no usable phone are skipped. Each recipient is attempted
// once; failures are counted, never retried.
func (s *Service) BulkSend(ctx context.Context, actor Actor, leadIDs []uuid.UUID, message string) (BulkResult, error) {
	if !s.Enabled() {
		return BulkResult{}, apperr.Unavailable("SMS is not configured")
	}
	message = sanitize.Truncate(strings.TrimSpace(message), maxBodyRunes)
	if message == "" {
		return BulkResult{}, apperr.Validation("message is empty")
	}
	ids := uniqueIDs(leadIDs)
	if len(ids) == 0 {
		return BulkResult{}, apperr.Validation("no leads selected")
	}
	if len(ids) > maxBulkRecipients {
		return BulkResult{}, apperr.Validation("too many recipients")
	}

	contacts, err := s.leads.GetContacts(ctx, ids)
	if err != nil {
		return BulkResult{}, apperr.Upstream(err)
	}

	var (
		mu  sync.Mutex
		res = BulkResult{Skipped: len(ids) - len(contacts)}
	)
	tally := func(f func(*BulkResult)) {
		mu.Lock()
		f(&res)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentSends)
	for _, c := range contacts {
		if !access.IsElevated(actor.Role) && !c.HandledBy(actor.ID) {
			tally(func(r *BulkResult) { r.Skipped++ })
			continue
		}
		if _, err := phone.ParseE164(c.Phone, s.region); err != nil {
			tally(func(r *BulkResult) { r.Skipped++ })
			continue
		}

		g.Go(func() error {
			if err := s.SendToLead(gctx, c, Render(message, c), &actor.ID); err != nil {
				s.logger.Warn("sms send failed", "leadId", c.ID, "error", err)
				tally(func(r *BulkResult) { r.Failed++ })
				return nil
			}
			tally(func(r *BulkResult) { r.Sent++ })
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("bulk sms finished", "actorId", actor.ID, "sent", res.Sent, "failed", res.Failed, "skipped", res.Skipped)
	return res, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
