package ai

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/leads"
	"leaddesk_backend/platform/ai/gemini"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

type stubGenerator struct {
	answer string
	last   gemini.Request
}

func (g *stubGenerator) Name() string { return "stub-model" }

func (g *stubGenerator) Generate(_ context.Context, req gemini.Request) (string, error) {
	g.last = req
	return g.answer, nil
}

type stubDirectory struct {
	contacts map[uuid.UUID]leads.Contact
	saved    map[uuid.UUID]json.RawMessage
}

func (d *stubDirectory) GetContact(_ context.Context, id uuid.UUID) (leads.Contact, error) {
	c, ok := d.contacts[id]
	if !ok {
		return leads.Contact{}, leads.ErrLeadNotFound
	}
	return c, nil
}

func (d *stubDirectory) GetContacts(context.Context, []uuid.UUID) ([]leads.Contact, error) {
	return nil, nil
}

func (d *stubDirectory) RecordActivity(context.Context, uuid.UUID, *uuid.UUID, string, map[string]any) error {
	return nil
}

func (d *stubDirectory) SaveEnrichment(_ context.Context, id uuid.UUID, doc json.RawMessage) error {
	d.saved[id] = doc
	return nil
}

func newDirectory(contacts ...leads.Contact) *stubDirectory {
	d := &stubDirectory{contacts: map[uuid.UUID]leads.Contact{}, saved: map[uuid.UUID]json.RawMessage{}}
	for _, c := range contacts {
		d.contacts[c.ID] = c
	}
	return d
}

func TestParseEnrichmentNormalizes(t *testing.T) {
	answer := "```json\n{\"website\":\" https://bakkerij.nl \",\"googleRating\":7.5,\"summary\":\"<b>Bakker</b> in Utrecht\",\"digitalPresenceScore\":14,\"suggestedPotential\":\"enorm\"}\n```"
	e, err := ParseEnrichment(answer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Website != "https://bakkerij.nl" {
		t.Fatalf("expected trimmed website, got %q", e.Website)
	}
	if e.GoogleRating != nil {
		t.Fatalf("expected out-of-range rating to be dropped")
	}
	if e.DigitalPresenceScore != 10 {
		t.Fatalf("expected score clamped to 10, got %d", e.DigitalPresenceScore)
	}
	if e.SuggestedPotential != "not_assessed" {
		t.Fatalf("expected unknown potential to become not_assessed, got %q", e.SuggestedPotential)
	}
	if e.Summary != "Bakker in Utrecht" {
		t.Fatalf("expected sanitized summary, got %q", e.Summary)
	}
}

func TestEnrichStoresDocument(t *testing.T) {
	lead := leads.Contact{ID: uuid.New(), CompanyName: "Bakkerij Jansen", City: "Utrecht"}
	dir := newDirectory(lead)
	gen := &stubGenerator{answer: `{"website":"https://jansen.nl","digitalPresenceScore":6,"suggestedPotential":"high"}`}
	svc := NewService(gen, dir, logger.Discard())
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	e, err := svc.Enrich(context.Background(), Actor{ID: uuid.New(), Role: access.RoleManager}, lead.ID)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if !gen.last.GoogleSearch {
		t.Fatalf("expected search grounding to be requested")
	}
	if !strings.Contains(gen.last.Prompt, "Bakkerij Jansen") {
		t.Fatalf("expected company name in prompt, got %q", gen.last.Prompt)
	}
	if e.Model != "stub-model" || e.SuggestedPotential != "high" {
		t.Fatalf("unexpected enrichment %+v", e)
	}

	var stored Enrichment
	if err := json.Unmarshal(dir.saved[lead.ID], &stored); err != nil {
		t.Fatalf("stored document is not valid JSON: %v", err)
	}
	if stored.Website != "https://jansen.nl" || !stored.EnrichedAt.Equal(e.EnrichedAt) {
		t.Fatalf("unexpected stored document %+v", stored)
	}
}

func TestEnrichUnreadableAnswer(t *testing.T) {
	lead := leads.Contact{ID: uuid.New(), CompanyName: "X"}
	svc := NewService(&stubGenerator{answer: "Sorry, geen informatie gevonden."}, newDirectory(lead), logger.Discard())
	_, err := svc.Enrich(context.Background(), Actor{ID: uuid.New(), Role: access.RoleAdmin}, lead.ID)
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestDisabledServiceIsUnavailable(t *testing.T) {
	svc := NewService(nil, newDirectory(), logger.Discard())
	ctx := context.Background()
	actor := Actor{ID: uuid.New(), Role: access.RoleFounder}

	if _, err := svc.Enrich(ctx, actor, uuid.New()); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable from Enrich, got %v", err)
	}
	if _, err := svc.DraftSMS(ctx, actor, uuid.New(), "", ""); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable from DraftSMS, got %v", err)
	}
	if _, err := svc.CorrectSMS(ctx, "tekst"); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable from CorrectSMS, got %v", err)
	}
}

func TestDraftSMSRespectsOwnershipAndLength(t *testing.T) {
	me := uuid.New()
	mine := leads.Contact{ID: uuid.New(), CompanyName: "Mijn Bedrijf", AssignedTo: &me}
	theirs := leads.Contact{ID: uuid.New(), CompanyName: "Ander Bedrijf"}
	gen := &stubGenerator{answer: `"` + strings.Repeat("a", 400) + `"`}
	svc := NewService(gen, newDirectory(mine, theirs), logger.Discard())
	agent := Actor{ID: me, Role: access.RoleAgent}

	if _, err := svc.DraftSMS(context.Background(), agent, theirs.ID, "", ""); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for someone else's lead, got %v", err)
	}

	text, err := svc.DraftSMS(context.Background(), agent, mine.ID, "formal", "noem de afspraak")
	if err != nil {
		t.Fatalf("draft failed: %v", err)
	}
	if len([]rune(text)) != MaxSMSRunes {
		t.Fatalf("expected text truncated to %d runes, got %d", MaxSMSRunes, len([]rune(text)))
	}
	if strings.HasPrefix(text, `"`) {
		t.Fatalf("expected surrounding quotes stripped")
	}
	if !strings.Contains(gen.last.Prompt, "formeel") {
		t.Fatalf("expected tone hint in prompt, got %q", gen.last.Prompt)
	}
}

func TestCorrectSMSRejectsEmpty(t *testing.T) {
	svc := NewService(&stubGenerator{answer: "ok"}, newDirectory(), logger.Discard())
	if _, err := svc.CorrectSMS(context.Background(), "   "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
