package exports

import (
	"context"
	"io"
	"time"

	"leaddesk_backend/internal/leads"
)

// Export writes every lead matching f to w and returns the row count.
func Export(ctx context.Context, source leads.Exporter, f leads.ExportFilter, w io.Writer, loc *time.Location) (int, error) {
	cw, err := NewWriter(w, loc)
	if err != nil {
		return 0, err
	}
	rows := 0
	err = source.ExportLeads(ctx, f, func(r leads.ExportRow) error {
		rows++
		return cw.Write(r)
	})
	if err != nil {
		return rows, err
	}
	return rows, cw.Close()
}
