package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"leaddesk_backend/internal/access"
	"leaddesk_backend/internal/auth/password"
	"leaddesk_backend/internal/auth/repository"
	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/httpkit"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgMemberNotFound     = "member not found"
)

type Service struct {
	repo repository.AuthRepository
	cfg  config.SessionConfig
	log  *logger.Logger
	now  func() time.Time
}

func New(repo repository.AuthRepository, cfg config.SessionConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log, now: time.Now}
}

// Session is the result of a successful sign-in.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	Profile     repository.Profile
}

// SignIn verifies the credentials and issues a session token. Unknown emails,
// wrong passwords and deactivated members all produce the same 401.
func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (Session, error) {
	creds, err := s.repo.GetCredentialsByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.AuthEvent("sign_in", email, false, "unknown email")
		return Session{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return Session{}, apperr.Upstream(err)
	}

	if err := password.Compare(creds.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", email, false, "wrong password")
		return Session{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if !creds.IsActive {
		s.log.AuthEvent("sign_in", email, false, "inactive")
		return Session{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	now := s.now()
	ttl := s.cfg.GetAccessTokenTTL()
	token, err := httpkit.SignAccessToken(s.cfg, creds.ID, ttl, now)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.KindInternal, "could not issue session", err)
	}

	s.log.AuthEvent("sign_in", email, true, "")
	return Session{AccessToken: token, ExpiresAt: now.Add(ttl), Profile: creds.Profile}, nil
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (repository.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Profile{}, apperr.NotFound("profile not found")
	}
	if err != nil {
		return repository.Profile{}, apperr.Upstream(err)
	}
	return profile, nil
}

func (s *Service) ListTeam(ctx context.Context) ([]repository.Profile, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return profiles, nil
}

type CreateMemberInput struct {
	Email          string
	Password       string
	FullName       string
	Phone          *string
	Role           access.Role
	CommissionRate float64
}

func (s *Service) CreateMember(ctx context.Context, actor access.Role, in CreateMemberInput) (repository.Profile, error) {
	if !access.CanGrant(actor, in.Role) {
		return repository.Profile{}, apperr.Forbidden("only a founder can create founders or admins")
	}
	if len(in.Password) < password.MinLength {
		return repository.Profile{}, apperr.Validation("password too short")
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return repository.Profile{}, apperr.Wrap(apperr.KindInternal, "could not hash password", err)
	}

	profile, err := s.repo.CreateMember(ctx, repository.CreateMemberParams{
		Email:          strings.TrimSpace(in.Email),
		PasswordHash:   hash,
		FullName:       strings.TrimSpace(in.FullName),
		Phone:          in.Phone,
		Role:           string(in.Role),
		CommissionRate: in.CommissionRate,
	})
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return repository.Profile{}, apperr.Conflict("email already in use")
		}
		return repository.Profile{}, err
	}
	s.log.Info("team member created", "memberId", profile.ID, "role", profile.Role)
	return profile, nil
}

type UpdateMemberInput struct {
	FullName       *string
	Phone          *string
	Role           *access.Role
	CommissionRate *float64
	IsActive       *bool
}

func (s *Service) UpdateMember(ctx context.Context, actorID uuid.UUID, actor access.Role, memberID uuid.UUID, in UpdateMemberInput) (repository.Profile, error) {
	current, err := s.repo.GetProfile(ctx, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Profile{}, apperr.NotFound(msgMemberNotFound)
	}
	if err != nil {
		return repository.Profile{}, apperr.Upstream(err)
	}

	currentRole, _ := access.ParseRole(current.Role)
	if !access.CanGrant(actor, currentRole) {
		return repository.Profile{}, apperr.Forbidden("only a founder can change founders or admins")
	}

	params := repository.UpdateProfileParams{
		FullName:       in.FullName,
		Phone:          in.Phone,
		CommissionRate: in.CommissionRate,
		IsActive:       in.IsActive,
	}
	if in.Role != nil {
		if !access.CanGrant(actor, *in.Role) {
			return repository.Profile{}, apperr.Forbidden("only a founder can grant founder or admin")
		}
		role := string(*in.Role)
		params.Role = &role
	}
	if actorID == memberID && in.IsActive != nil && !*in.IsActive {
		return repository.Profile{}, apperr.BadRequest("you cannot deactivate yourself")
	}

	profile, err := s.repo.UpdateProfile(ctx, memberID, params)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Profile{}, apperr.NotFound(msgMemberNotFound)
	}
	if err != nil {
		return repository.Profile{}, apperr.Upstream(err)
	}
	return profile, nil
}

// DeleteMember removes a member and hands their pending leads back to the pool.
func (s *Service) DeleteMember(ctx context.Context, actorID uuid.UUID, actor access.Role, memberID uuid.UUID) (int64, error) {
	if actorID == memberID {
		return 0, apperr.BadRequest("you cannot delete yourself")
	}

	current, err := s.repo.GetProfile(ctx, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, apperr.NotFound(msgMemberNotFound)
	}
	if err != nil {
		return 0, apperr.Upstream(err)
	}
	currentRole, _ := access.ParseRole(current.Role)
	if !access.CanGrant(actor, currentRole) {
		return 0, apperr.Forbidden("only a founder can delete founders or admins")
	}

	released, err := s.repo.DeleteMember(ctx, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, apperr.NotFound(msgMemberNotFound)
	}
	if err != nil {
		return 0, apperr.Upstream(err)
	}
	s.log.Info("team member deleted", "memberId", memberID, "releasedLeads", released)
	return released, nil
}
