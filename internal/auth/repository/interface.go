package repository

import (
	"context"

	"leaddesk_backend/internal/access"

	"github.com/google/uuid"
)

// AuthRepository defines the data operations the auth service depends on.
type AuthRepository interface {
	GetCredentialsByEmail(ctx context.Context, email string) (Credentials, error)
	GetProfile(ctx context.Context, id uuid.UUID) (Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	CreateMember(ctx context.Context, params CreateMemberParams) (Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (Profile, error)
	DeleteMember(ctx context.Context, id uuid.UUID) (int64, error)
}

// Ensure Repository implements the consumer interfaces.
var (
	_ AuthRepository       = (*Repository)(nil)
	_ access.ProfileLoader = (*Repository)(nil)
)
