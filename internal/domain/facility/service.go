package facility

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

type Service struct {
	repo HospitalRepository
	log  zerolog.Logger
}

func NewService(repo HospitalRepository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Resolve returns the facility matching the (type, block, district) triple,
// creating it when unseen. Every fifth newly created facility is marked as
// NICU-equipped to approximate district-level NICU coverage until real
// facility registry data is linked.
func (s *Service) Resolve(ctx context.Context, facilityType, block, district, state string) (*Hospital, error) {
	if strings.TrimSpace(facilityType) == "" {
		facilityType = "Sub-Centre"
	}
	key := NormalizeKey(facilityType, block, district)

	existing, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("lookup facility: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count facilities: %w", err)
	}

	h := &Hospital{
		Name:         fmt.Sprintf("%s %s", strings.TrimSpace(block), strings.TrimSpace(facilityType)),
		FacilityType: strings.TrimSpace(facilityType),
		Block:        strings.TrimSpace(block),
		District:     strings.TrimSpace(district),
		State:        strings.TrimSpace(state),
		HasNICU:      (n+1)%5 == 0,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("create facility: %w", err)
	}
	s.log.Debug().Str("hospital_id", h.ID.String()).Str("name", h.Name).
		Bool("has_nicu", h.HasNICU).Msg("created facility")
	return h, nil
}
