package leads

var statusLabels = map[string]string{
	"pending":        "Openstaand",
	"contacted":      "Gebeld",
	"callback":       "Terugbellen",
	"appointment":    "Afspraak",
	"sold":           "Verkocht",
	"rejected":       "Afgewezen",
	"not_interested": "Geen interesse",
	"no_answer":      "Geen gehoor",
	"cancelled":      "Geannuleerd",
}

var potentialLabels = map[string]string{
	"high":         "Hoog",
	"medium":       "Gemiddeld",
	"low":          "Laag",
	"not_assessed": "Niet beoordeeld",
}

// StatusLabel is the Dutch display name of a lead status.
func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// PotentialLabel is the Dutch display name of a potential level.
func PotentialLabel(level string) string {
	if l, ok := potentialLabels[level]; ok {
		return l
	}
	return level
}
