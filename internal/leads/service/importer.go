package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/phone"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column keys recognised in upload headers.
const (
	colCompany  = "company"
	colContact  = "contact"
	colPhone    = "phone"
	colEmail    = "email"
	colAddress  = "address"
	colCity     = "city"
	colCategory = "category"
	colRating   = "rating"
	colReviews  = "reviews"
	colWebsite  = "website"
)

var headerAliases = map[string]string{
	"company": colCompany, "company_name": colCompany, "companyname": colCompany, "name": colCompany,
	"bedrijf": colCompany, "bedrijfsnaam": colCompany, "title": colCompany,
	"contact": colContact, "contact_name": colContact, "contactname": colContact, "contactpersoon": colContact,
	"phone": colPhone, "phone_number": colPhone, "telephone": colPhone, "telefoon": colPhone, "telefoonnummer": colPhone,
	"email": colEmail, "e-mail": colEmail, "mail": colEmail,
	"address": colAddress, "adres": colAddress, "street": colAddress, "straat": colAddress,
	"city": colCity, "plaats": colCity, "stad": colCity, "woonplaats": colCity,
	"category": colCategory, "categorie": colCategory, "branche": colCategory, "categoryname": colCategory,
	"rating": colRating, "beoordeling": colRating, "totalscore": colRating, "score": colRating,
	"reviews": colReviews, "review_count": colReviews, "reviewscount": colReviews, "reviewcount": colReviews, "recensies": colReviews,
	"website": colWebsite, "url": colWebsite, "site": colWebsite,
}

// ImportStats summarises a parsed upload.
type ImportStats struct {
	Rows    int
	Skipped int
}

// ParseUpload reads a lead CSV. A UTF-8 BOM is dropped, the delimiter (';' or
// ',') is detected from the header line, and rows without a company name are
// skipped.
func ParseUpload(r io.Reader, region string) ([]repository.ImportRow, ImportStats, error) {
	br := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	headerLine, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, ImportStats{}, err
	}

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(headerLine)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ImportStats{}, errors.New("file is empty")
	}
	if err != nil {
		return nil, ImportStats{}, fmt.Errorf("read header: %w", err)
	}

	columns := mapHeader(header)
	if _, ok := columns[colCompany]; !ok {
		return nil, ImportStats{}, errors.New("missing company name column")
	}

	var (
		rows  []repository.ImportRow
		stats ImportStats
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", stats.Rows+stats.Skipped+2, err)
		}

		field := func(key string) string {
			idx, ok := columns[key]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		company := field(colCompany)
		if company == "" {
			stats.Skipped++
			continue
		}

		rows = append(rows, repository.ImportRow{
			CompanyName: company,
			ContactName: field(colContact),
			Phone:       phone.NormalizeE164(field(colPhone), region),
			Email:       strings.ToLower(field(colEmail)),
			Address:     field(colAddress),
			City:        field(colCity),
			Category:    field(colCategory),
			Rating:      parseRating(field(colRating)),
			ReviewCount: parseCount(field(colReviews)),
			Website:     field(colWebsite),
		})
		stats.Rows++
	}
	return rows, stats, nil
}

func detectDelimiter(sample []byte) rune {
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}
	if bytes.Count(sample, []byte{';'}) > bytes.Count(sample, []byte{','}) {
		return ';'
	}
	return ','
}

func mapHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.ReplaceAll(key, " ", "_")
		canonical, ok := headerAliases[key]
		if !ok {
			canonical, ok = headerAliases[strings.ReplaceAll(key, "_", "")]
		}
		if !ok {
			continue
		}
		if _, seen := columns[canonical]; !seen {
			columns[canonical] = i
		}
	}
	return columns
}

// parseRating accepts "4.5" and "4,5".
func parseRating(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || v < 0 || v > 5 {
		return nil
	}
	return &v
}

func parseCount(raw string) int {
	raw = strings.NewReplacer(".", "", ",", "", " ", "").Replace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// UploadInput is one multipart upload.
type UploadInput struct {
	Name        string
	FileName    string
	ContentType string
	Size        int64
	Content     io.ReadSeeker
}

// ImportUpload parses a CSV upload into a new batch. After a successful parse
// the raw file is archived when object storage is configured; archive failures
// only log.
func (s *Service) ImportUpload(ctx context.Context, actor Actor, in UploadInput) (domain.Batch, ImportStats, error) {
	rows, stats, err := ParseUpload(in.Content, s.cfg.GetPhoneDefaultRegion())
	if err != nil {
		return domain.Batch{}, stats, apperr.Validation(err.Error())
	}
	if len(rows) == 0 {
		return domain.Batch{}, stats, apperr.Validation("file contains no leads")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = strings.TrimSuffix(path.Base(in.FileName), path.Ext(in.FileName))
	}

	var objectKey *string
	if s.archive != nil {
		if _, err := in.Content.Seek(0, io.SeekStart); err == nil {
			key, aerr := s.archive.ArchiveUpload(ctx, "batches", in.FileName, in.ContentType, in.Content, in.Size)
			if aerr != nil {
				s.log.Warn("upload archive failed", "file", in.FileName, "error", aerr)
			} else {
				objectKey = &key
			}
		}
	}

	batch, err := s.repo.ImportBatch(ctx, repository.ImportBatchParams{
		Name:       name,
		FileName:   in.FileName,
		ObjectKey:  objectKey,
		UploadedBy: actor.ID,
		Rows:       rows,
	})
	if err != nil {
		return domain.Batch{}, stats, mapErr(err)
	}

	s.publish(ctx, events.LeadBatchImported{
		BaseEvent:  events.NewBaseEvent(),
		BatchID:    batch.ID,
		UploadedBy: actor.ID,
		LeadCount:  batch.LeadCount,
	})
	s.log.Info("lead batch imported", "batchId", batch.ID, "rows", stats.Rows, "skipped", stats.Skipped)
	return batch, stats, nil
}
