package scheme

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

var validStatuses = map[string]bool{
	StatusDraft:     true,
	StatusSubmitted: true,
	StatusApproved:  true,
	StatusRejected:  true,
}

func (s *Service) Create(ctx context.Context, a *Application) error {
	if a.BeneficiaryID == uuid.Nil {
		return fmt.Errorf("application requires a beneficiary")
	}
	if a.SchemeType != TypeJSY && a.SchemeType != TypePMJAY {
		return fmt.Errorf("unknown scheme type %q", a.SchemeType)
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("invalid application status %q", a.Status)
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return fmt.Errorf("create scheme application: %w", err)
	}
	return nil
}

func (s *Service) ListByBeneficiary(ctx context.Context, beneficiaryID uuid.UUID) ([]*Application, error) {
	apps, err := s.repo.ListByBeneficiary(ctx, beneficiaryID)
	if err != nil {
		return nil, fmt.Errorf("list scheme applications: %w", err)
	}
	return apps, nil
}
