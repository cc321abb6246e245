package db

import (
	"errors"

	"leaddesk_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MapError converts pgx errors into typed application errors. Unknown failures
// become upstream errors that keep the raw database message.
func MapError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(notFoundMsg)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Wrap(apperr.KindConflict, pgErr.Message, err)
		case pgForeignKeyViolation:
			return apperr.Wrap(apperr.KindNotFound, pgErr.Message, err)
		case pgCheckViolation:
			return apperr.Wrap(apperr.KindValidation, pgErr.Message, err)
		}
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Upstream(err)
}
