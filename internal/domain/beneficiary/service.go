package beneficiary

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Create(ctx context.Context, b *Beneficiary) error {
	if b.Name == "" {
		return fmt.Errorf("beneficiary name is required")
	}
	if b.Age < 0 || b.Age > 120 {
		return fmt.Errorf("beneficiary age %d out of range", b.Age)
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return fmt.Errorf("create beneficiary: %w", err)
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Beneficiary, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get beneficiary: %w", err)
	}
	return b, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Beneficiary, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list beneficiaries for user: %w", err)
	}
	return list, nil
}
