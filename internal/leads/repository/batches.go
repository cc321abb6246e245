package repository

import (
	"context"
	"errors"
	"time"

	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ImportRow is one parsed lead from an upload.
type ImportRow struct {
	CompanyName string
	ContactName string
	Phone       string
	Email       string
	Address     string
	City        string
	Category    string
	Rating      *float64
	ReviewCount int
	Website     string
}

type ImportBatchParams struct {
	Name       string
	FileName   string
	ObjectKey  *string
	UploadedBy uuid.UUID
	Rows       []ImportRow
}

var importColumns = []string{
	"id", "batch_id", "company_name", "contact_name", "phone", "email", "address", "city",
	"category", "rating", "review_count", "website", "created_at",
}

// ImportBatch stores the batch record and bulk-copies its leads. Rows get
// strictly increasing created_at values so the upload order survives as the
// assignment order.
func (r *Repository) ImportBatch(ctx context.Context, params ImportBatchParams) (domain.Batch, error) {
	var batch domain.Batch
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO upload_batches (name, file_name, object_key, uploaded_by, lead_count)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, name, file_name, object_key, uploaded_by, lead_count, created_at
		`, params.Name, params.FileName, params.ObjectKey, params.UploadedBy, len(params.Rows)).Scan(
			&batch.ID, &batch.Name, &batch.FileName, &batch.ObjectKey, &batch.UploadedBy, &batch.LeadCount, &batch.CreatedAt,
		); err != nil {
			return err
		}

		base := batch.CreatedAt
		source := pgx.CopyFromSlice(len(params.Rows), func(i int) ([]any, error) {
			row := params.Rows[i]
			return []any{
				uuid.New(), batch.ID, row.CompanyName, row.ContactName, row.Phone, row.Email, row.Address,
				row.City, row.Category, row.Rating, row.ReviewCount, row.Website,
				base.Add(time.Duration(i) * time.Microsecond),
			}, nil
		})
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"leads"}, importColumns, source); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO lead_activity_logs (lead_id, agent_id, action, metadata)
			SELECT id, $2, 'imported', jsonb_build_object('batchId', $1::uuid)
			FROM leads WHERE batch_id = $1
		`, batch.ID, params.UploadedBy)
		return err
	})
	batch.UnassignedCount = batch.LeadCount
	return batch, err
}

// ListBatches returns every batch with its live unassigned count, newest first.
func (r *Repository) ListBatches(ctx context.Context) ([]domain.Batch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.name, b.file_name, b.object_key, b.uploaded_by, b.lead_count, b.created_at,
			(SELECT count(*) FROM leads l WHERE l.batch_id = b.id AND l.assigned_to IS NULL)
		FROM upload_batches b
		ORDER BY b.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := make([]domain.Batch, 0)
	for rows.Next() {
		var b domain.Batch
		if err := rows.Scan(&b.ID, &b.Name, &b.FileName, &b.ObjectKey, &b.UploadedBy, &b.LeadCount, &b.CreatedAt, &b.UnassignedCount); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (r *Repository) GetBatch(ctx context.Context, id uuid.UUID) (domain.Batch, error) {
	var b domain.Batch
	err := r.pool.QueryRow(ctx, `
		SELECT b.id, b.name, b.file_name, b.object_key, b.uploaded_by, b.lead_count, b.created_at,
			(SELECT count(*) FROM leads l WHERE l.batch_id = b.id AND l.assigned_to IS NULL)
		FROM upload_batches b
		WHERE b.id = $1
	`, id).Scan(&b.ID, &b.Name, &b.FileName, &b.ObjectKey, &b.UploadedBy, &b.LeadCount, &b.CreatedAt, &b.UnassignedCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Batch{}, ErrBatchNotFound
	}
	return b, err
}
