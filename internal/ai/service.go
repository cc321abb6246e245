// Package ai enriches leads and drafts SMS copy with an LLM.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/leads"
	"leaddesk_backend/platform/ai/gemini"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/sanitize"

	"github.com/google/uuid"
)

// MaxSMSRunes is the longest text the SMS endpoints return.
const MaxSMSRunes = 320

const msgAIDisabled = "AI is not configured"

// Generator is the LLM call the service depends on.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req gemini.Request) (string, error)
}

// Actor is the caller.
type Actor struct {
	ID   uuid.UUID
	Role access.Role
}

// Enrichment is the document stored on leads.enrichment.
type Enrichment struct {
	Website              string    `json:"website"`
	Facebook             string    `json:"facebook"`
	Instagram            string    `json:"instagram"`
	GoogleRating         *float64  `json:"googleRating"`
	ReviewCount          *int      `json:"reviewCount"`
	Summary              string    `json:"summary"`
	DigitalPresenceScore int       `json:"digitalPresenceScore"`
	SuggestedPotential   string    `json:"suggestedPotential"`
	Model                string    `json:"model"`
	EnrichedAt           time.Time `json:"enrichedAt"`
}

func (e *Enrichment) normalize() {
	e.Website = strings.TrimSpace(e.Website)
	e.Facebook = strings.TrimSpace(e.Facebook)
	e.Instagram = strings.TrimSpace(e.Instagram)
	e.Summary = sanitize.Text(e.Summary)
	e.DigitalPresenceScore = min(max(e.DigitalPresenceScore, 0), 10)
	if e.GoogleRating != nil && (*e.GoogleRating < 0 || *e.GoogleRating > 5) {
		e.GoogleRating = nil
	}
	switch e.SuggestedPotential {
	case "high", "medium", "low":
	default:
		e.SuggestedPotential = "not_assessed"
	}
}

// ParseEnrichment decodes a model answer into an Enrichment.
func ParseEnrichment(answer string) (Enrichment, error) {
	raw, err := gemini.ExtractJSON(answer)
	if err != nil {
		return Enrichment{}, err
	}
	var e Enrichment
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return Enrichment{}, err
	}
	e.normalize()
	return e, nil
}

type Service struct {
	gen   Generator
	leads leads.Directory
	log   *logger.Logger
	now   func() time.Time
}

// NewService builds the service. gen may be nil, which disables every operation.
func NewService(gen Generator, directory leads.Directory, log *logger.Logger) *Service {
	return &Service{gen: gen, leads: directory, log: log, now: time.Now}
}

func (s *Service) Enabled() bool {
	return s.gen != nil
}

func (s *Service) contact(ctx context.Context, actor Actor, leadID uuid.UUID) (leads.Contact, error) {
	c, err := s.leads.GetContact(ctx, leadID)
	if errors.Is(err, leads.ErrLeadNotFound) {
		return leads.Contact{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return leads.Contact{}, apperr.Upstream(err)
	}
	if !access.IsElevated(actor.Role) && !c.HandledBy(actor.ID) {
		return leads.Contact{}, apperr.NotFound("lead not found")
	}
	return c, nil
}

// Enrich researches a lead with search grounding and stores the result.
func (s *Service) Enrich(ctx context.Context, actor Actor, leadID uuid.UUID) (Enrichment, error) {
	if !s.Enabled() {
		return Enrichment{}, apperr.Unavailable(msgAIDisabled)
	}
	c, err := s.contact(ctx, actor, leadID)
	if err != nil {
		return Enrichment{}, err
	}

	answer, err := s.gen.Generate(ctx, gemini.Request{
		System:       enrichSystem,
		Prompt:       enrichPrompt(c),
		GoogleSearch: true,
	})
	if err != nil {
		s.log.Error("lead enrichment failed", "leadId", leadID, "error", err)
		return Enrichment{}, apperr.Upstream(err)
	}

	e, err := ParseEnrichment(answer)
	if err != nil {
		s.log.Warn("unparseable enrichment answer", "leadId", leadID, "error", err)
		return Enrichment{}, apperr.Wrap(apperr.KindUpstream, "AI returned an unreadable answer", err)
	}
	e.Model = s.gen.Name()
	e.EnrichedAt = s.now().UTC()

	doc, err := json.Marshal(e)
	if err != nil {
		return Enrichment{}, apperr.Internal("encode enrichment")
	}
	if err := s.leads.SaveEnrichment(ctx, leadID, doc); err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			return Enrichment{}, apperr.NotFound("lead not found")
		}
		return Enrichment{}, apperr.Upstream(err)
	}

	s.log.Info("lead enriched", "leadId", leadID, "actorId", actor.ID, "score", e.DigitalPresenceScore)
	return e, nil
}

// DraftSMS writes an outreach text for a lead.
func (s *Service) DraftSMS(ctx context.Context, actor Actor, leadID uuid.UUID, tone, instructions string) (string, error) {
	if !s.Enabled() {
		return "", apperr.Unavailable(msgAIDisabled)
	}
	c, err := s.contact(ctx, actor, leadID)
	if err != nil {
		return "", err
	}
	if _, ok := toneHints[tone]; !ok {
		tone = "friendly"
	}

	text, err := s.gen.Generate(ctx, gemini.Request{
		System: draftSystem,
		Prompt: draftPrompt(c, tone, sanitize.Text(instructions)),
	})
	if err != nil {
		return "", apperr.Upstream(err)
	}
	return cleanSMS(text), nil
}

// CorrectSMS fixes spelling and grammar.
func (s *Service) CorrectSMS(ctx context.Context, text string) (string, error) {
	if !s.Enabled() {
		return "", apperr.Unavailable(msgAIDisabled)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.Validation("text is empty")
	}

	out, err := s.gen.Generate(ctx, gemini.Request{System: correctSystem, Prompt: text})
	if err != nil {
		return "", apperr.Upstream(err)
	}
	return cleanSMS(out), nil
}

func cleanSMS(text string) string {
	text = strings.Trim(strings.TrimSpace(text), `"`)
	return sanitize.Truncate(sanitize.StripHTML(text), MaxSMSRunes)
}
