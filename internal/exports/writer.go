// Package exports writes lead spreadsheets.
package exports

import (
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"leaddesk_backend/internal/leads"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Header is the fixed Dutch column row.
var Header = []string{
	"Bedrijfsnaam", "Contactpersoon", "Telefoon", "E-mail", "Adres", "Plaats",
	"Categorie", "Beoordeling", "Status", "Potentie", "Toegewezen aan", "Aangemaakt op",
}

var plainNumber = regexp.MustCompile(`^\+[0-9 ]+$`)

// GuardFormula neutralises values a spreadsheet would evaluate. International
// phone numbers such as +31612345678 pass unchanged.
func GuardFormula(v string) string {
	if v == "" || plainNumber.MatchString(v) {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

// Writer emits a UTF-8 CSV with a byte order mark and semicolon delimiter,
// the format Dutch Excel opens without an import dialog.
type Writer struct {
	csv *csv.Writer
	enc io.WriteCloser
	loc *time.Location
}

// NewWriter writes the BOM and header row to w.
func NewWriter(w io.Writer, loc *time.Location) (*Writer, error) {
	if loc == nil {
		loc = time.UTC
	}
	encoded := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(encoded)
	cw.Comma = ';'
	if err := cw.Write(Header); err != nil {
		return nil, err
	}
	return &Writer{csv: cw, enc: encoded, loc: loc}, nil
}

// Write appends one lead.
func (w *Writer) Write(r leads.ExportRow) error {
	rating := ""
	if r.Rating != nil {
		rating = strings.Replace(strconv.FormatFloat(*r.Rating, 'f', 1, 64), ".", ",", 1)
	}
	record := []string{
		r.CompanyName,
		r.ContactName,
		r.Phone,
		r.Email,
		r.Address,
		r.City,
		r.Category,
		rating,
		leads.StatusLabel(r.Status),
		leads.PotentialLabel(r.PotentialLevel),
		r.AgentName,
		r.CreatedAt.In(w.loc).Format("02-01-2006 15:04"),
	}
	for i, v := range record {
		record[i] = GuardFormula(v)
	}
	return w.csv.Write(record)
}

// Close flushes buffered rows. It does not close the underlying writer.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}
	return w.enc.Close()
}
