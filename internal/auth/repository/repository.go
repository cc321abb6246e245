package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Profile is a team member as stored in profiles.
type Profile struct {
	ID             uuid.UUID
	FullName       string
	Email          string
	Phone          *string
	Role           string
	CommissionRate float64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Credentials pairs a profile with the password hash of its user.
type Credentials struct {
	Profile
	PasswordHash string
}

type CreateMemberParams struct {
	Email          string
	PasswordHash   string
	FullName       string
	Phone          *string
	Role           string
	CommissionRate float64
}

// UpdateProfileParams holds optional changes; nil fields are left untouched.
type UpdateProfileParams struct {
	FullName       *string
	Phone          *string
	Role           *string
	CommissionRate *float64
	IsActive       *bool
}

const profileColumns = `p.id, p.full_name, p.email, p.phone, p.role, p.commission_rate::float8, p.is_active, p.created_at, p.updated_at`

func scanProfile(row pgx.Row, extra ...any) (Profile, error) {
	var p Profile
	dest := []any{&p.ID, &p.FullName, &p.Email, &p.Phone, &p.Role, &p.CommissionRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt}
	dest = append(dest, extra...)
	err := row.Scan(dest...)
	return p, err
}

func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (Credentials, error) {
	var hash string
	p, err := scanProfile(r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`, u.password_hash
		FROM users u
		JOIN profiles p ON p.id = u.id
		WHERE lower(u.email) = lower($1)
	`, strings.TrimSpace(email)), &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credentials{}, ErrNotFound
	}
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Profile: p, PasswordHash: hash}, nil
}

func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles p WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

// LoadSessionProfile satisfies access.ProfileLoader.
func (r *Repository) LoadSessionProfile(ctx context.Context, userID uuid.UUID) (access.SessionProfile, error) {
	var sp access.SessionProfile
	err := r.pool.QueryRow(ctx, `
		SELECT id, full_name, role, is_active FROM profiles WHERE id = $1
	`, userID).Scan(&sp.ID, &sp.FullName, &sp.Role, &sp.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return access.SessionProfile{}, access.ErrProfileNotFound
	}
	return sp, err
}

func (r *Repository) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles p ORDER BY p.full_name, p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// CreateMember inserts the user and its profile in one transaction.
func (r *Repository) CreateMember(ctx context.Context, params CreateMemberParams) (Profile, error) {
	var profile Profile
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var userID uuid.UUID
		if err := tx.QueryRow(ctx, `
			INSERT INTO users (email, password_hash) VALUES (lower($1), $2) RETURNING id
		`, params.Email, params.PasswordHash).Scan(&userID); err != nil {
			return err
		}

		var err error
		profile, err = scanProfile(tx.QueryRow(ctx, `
			INSERT INTO profiles AS p (id, full_name, email, phone, role, commission_rate)
			VALUES ($1, $2, lower($3), $4, $5, $6)
			RETURNING `+profileColumns,
			userID, params.FullName, params.Email, params.Phone, params.Role, params.CommissionRate))
		return err
	})
	if err != nil {
		return Profile{}, db.MapError(err, "member not found")
	}
	return profile, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `
		UPDATE profiles AS p SET
			full_name = COALESCE($2, p.full_name),
			phone = COALESCE($3, p.phone),
			role = COALESCE($4, p.role),
			commission_rate = COALESCE($5, p.commission_rate),
			is_active = COALESCE($6, p.is_active),
			updated_at = now()
		WHERE p.id = $1
		RETURNING `+profileColumns,
		id, params.FullName, params.Phone, params.Role, params.CommissionRate, params.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

// DeleteMember returns the member's pending leads to the pool, clears every
// lock they hold and removes the profile and user, all in one transaction.
// It reports how many leads were released.
func (r *Repository) DeleteMember(ctx context.Context, id uuid.UUID) (int64, error) {
	var released int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE leads SET assigned_to = NULL, assigned_at = NULL,
				current_agent_id = NULL, locked_at = NULL, updated_at = now()
			WHERE assigned_to = $1 AND status = 'pending'
		`, id)
		if err != nil {
			return err
		}
		released = tag.RowsAffected()

		if _, err := tx.Exec(ctx, `
			UPDATE leads SET current_agent_id = NULL, locked_at = NULL, updated_at = now()
			WHERE current_agent_id = $1
		`, id); err != nil {
			return err
		}

		tag, err = tx.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})
	return released, err
}
