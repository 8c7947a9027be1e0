package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/community-cert-dashboard/internal/models"
	"github.com/community-cert-dashboard/internal/repository"
)

// Identity is the verified claim set handed over by the auth middleware.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// userService is the concrete implementation of UserService
type userService struct {
	users repository.UserRepository
	log   zerolog.Logger
}

// newUserService creates a new UserService
func newUserService(users repository.UserRepository, log zerolog.Logger) *userService {
	return &userService{
		users: users,
		log:   log.With().Str("service", "user").Logger(),
	}
}

// Authenticate resolves the profile for a verified identity. First sight of
// a principal creates a viewer profile with an empty allow-list; later
// sights refresh lastLogin and load role and allow-list unchanged. There is
// no self-service path to any other role; a super admin must assign it.
func (s *userService) Authenticate(ctx context.Context, identity Identity) (*models.UserProfile, error) {
	profile, err := s.users.GetByUID(ctx, identity.UID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		if err := s.users.UpdateLastLogin(ctx, identity.UID); err != nil {
			s.log.Warn().Err(err).Str("uid", identity.UID).Msg("Failed to refresh last login")
		}
		profile.LastLogin = time.Now()
		return profile, nil
	}

	displayName := identity.DisplayName
	if displayName == "" {
		displayName = "User"
	}
	now := time.Now()
	profile = &models.UserProfile{
		UID:                identity.UID,
		Email:              identity.Email,
		DisplayName:        displayName,
		PhotoURL:           identity.PhotoURL,
		Role:               models.RoleViewer,
		AllowedCommunities: []string{},
		CreatedAt:          now,
		LastLogin:          now,
	}
	if err := s.users.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.log.Info().Str("uid", profile.UID).Str("email", profile.Email).Msg("New user profile created")
	return profile, nil
}

// List returns all profiles. Super admin only.
func (s *userService) List(ctx context.Context, profile *models.UserProfile) ([]models.UserProfile, error) {
	if !profile.CanManage() {
		return nil, ErrForbidden
	}
	return s.users.List(ctx)
}

// SetRole changes a profile's role. Super admin only.
func (s *userService) SetRole(ctx context.Context, profile *models.UserProfile, uid string, role models.UserRole) error {
	if !profile.CanManage() {
		return ErrForbidden
	}
	if !models.ValidRoles[role] {
		return ErrInvalidRole
	}
	if err := s.users.UpdateRole(ctx, uid, role); err != nil {
		return err
	}
	s.log.Info().Str("uid", uid).Str("role", string(role)).Str("changed_by", profile.Email).Msg("User role changed")
	return nil
}

// SetAllowedCommunities replaces a profile's allow-list. Super admin only.
func (s *userService) SetAllowedCommunities(ctx context.Context, profile *models.UserProfile, uid string, codes []string) error {
	if !profile.CanManage() {
		return ErrForbidden
	}
	return s.users.UpdateAllowedCommunities(ctx, uid, codes)
}
