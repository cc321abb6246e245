package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

// DigestStatus is one line of the status breakdown.
type DigestStatus struct {
	Label string
	Count int
}

// DigestAgent is one agent's line in the daily digest.
type DigestAgent struct {
	Name         string
	Completed    int
	Appointments int
	Sold         int
	Conversion   string
}

// DailyDigest is the content of the morning report.
type DailyDigest struct {
	Date           string
	TotalCompleted int
	TotalImported  int
	PendingBacklog int
	ByStatus       []DigestStatus
	Agents         []DigestAgent
}

type dailyDigestEmailData struct {
	baseEmailData
	DailyDigest
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderDailyDigest returns the digest as an HTML document.
func RenderDailyDigest(d DailyDigest) (string, error) {
	return renderEmailTemplate("daily_digest.html", dailyDigestEmailData{
		baseEmailData: baseEmailData{
			Title:      fmt.Sprintf(subjectDailyDigestFmt, d.Date),
			Heading:    "Dagrapport",
			Subheading: d.Date,
		},
		DailyDigest: d,
	})
}
