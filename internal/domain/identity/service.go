package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo UserRepository
	log  zerolog.Logger
}

func NewService(repo UserRepository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

var validRoles = map[string]bool{
	RoleAdmin:       true,
	RoleAuthorizer:  true,
	RoleHospital:    true,
	RoleBeneficiary: true,
}

// Create validates and persists a new user account. An empty role defaults
// to BENEFICIARY.
func (s *Service) Create(ctx context.Context, u *User) error {
	if u.Name == "" {
		return fmt.Errorf("user name is required")
	}
	if u.PhoneOrEmail == "" {
		return fmt.Errorf("phone or email is required")
	}
	if u.Role == "" {
		u.Role = RoleBeneficiary
	}
	if !validRoles[u.Role] {
		return fmt.Errorf("invalid role %q", u.Role)
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// ResolveByContact returns the existing account for a normalized phone or
// email, creating a beneficiary account when none exists.
func (s *Service) ResolveByContact(ctx context.Context, name, contact string) (*User, error) {
	if contact == "" {
		return nil, fmt.Errorf("contact is required")
	}
	existing, err := s.repo.GetByPhoneOrEmail(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("lookup user by contact: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	u := &User{Name: name, PhoneOrEmail: contact, Role: RoleBeneficiary}
	if err := s.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Debug().Str("user_id", u.ID.String()).Msg("created beneficiary account")
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
