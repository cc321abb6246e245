package ai

import (
	"fmt"
	"strconv"
	"strings"

	"leaddesk_backend/internal/leads"
)

const enrichSystem = `Je bent een onderzoeker voor een Nederlands callcenter. Zoek online informatie over het bedrijf
en antwoord uitsluitend met één JSON-object, zonder uitleg, met precies deze velden:
{"website": string, "facebook": string, "instagram": string, "googleRating": number|null,
"reviewCount": number|null, "summary": string, "digitalPresenceScore": 0-10,
"suggestedPotential": "high"|"medium"|"low"}
Gebruik een lege string als je iets niet kunt vinden. De samenvatting is maximaal drie zinnen in het Nederlands.`

const draftSystem = `Je schrijft korte zakelijke sms-berichten namens een Nederlands callcenter.
Maximaal 320 tekens, geen emoji, geen links tenzij gevraagd. Antwoord alleen met de sms-tekst.`

const correctSystem = `Corrigeer spelling en grammatica van de sms-tekst. Behoud toon, betekenis en lengte.
Antwoord alleen met de gecorrigeerde tekst.`

var toneHints = map[string]string{
	"friendly": "Toon: vriendelijk en persoonlijk.",
	"formal":   "Toon: formeel, gebruik u.",
	"short":    "Toon: zo kort mogelijk, maximaal twee zinnen.",
}

func enrichPrompt(c leads.Contact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bedrijf: %s\n", c.CompanyName)
	if c.City != "" {
		fmt.Fprintf(&b, "Plaats: %s\n", c.City)
	}
	if c.Category != "" {
		fmt.Fprintf(&b, "Branche: %s\n", c.Category)
	}
	if c.Website != "" {
		fmt.Fprintf(&b, "Bekende website: %s\n", c.Website)
	}
	if c.Rating != nil {
		fmt.Fprintf(&b, "Bekende Google-score: %s (%d reviews)\n", strconv.FormatFloat(*c.Rating, 'f', 1, 64), c.ReviewCount)
	}
	return b.String()
}

func draftPrompt(c leads.Contact, tone, instructions string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Schrijf een sms aan %s", c.CompanyName)
	if c.ContactName != "" {
		fmt.Fprintf(&b, " (contactpersoon %s)", c.ContactName)
	}
	b.WriteString(".\n")
	if c.AppointmentAt != nil {
		fmt.Fprintf(&b, "Er staat een afspraak op %s.\n", c.AppointmentAt.Format("02-01-2006 15:04"))
	}
	b.WriteString(toneHints[tone])
	if instructions != "" {
		fmt.Fprintf(&b, "\nExtra instructies: %s", instructions)
	}
	return b.String()
}
