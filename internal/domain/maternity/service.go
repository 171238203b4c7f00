package maternity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maatrinet/maatrinet/internal/risk"
)

// Service is the single place pregnancies, deliveries and children are
// scored. Both ingestion and profile edits flow through it, so a record can
// never be persisted with stale derived state.
type Service struct {
	pregnancies PregnancyRepository
	deliveries  DeliveryRepository
	children    ChildRepository
	engine      *risk.Engine
	log         zerolog.Logger
}

func NewService(p PregnancyRepository, d DeliveryRepository, c ChildRepository,
	engine *risk.Engine, log zerolog.Logger) *Service {
	return &Service{pregnancies: p, deliveries: d, children: c, engine: engine, log: log}
}

// CreatePregnancy scores the clinical inputs and persists the episode with
// its derived risk fields.
func (s *Service) CreatePregnancy(ctx context.Context, p *Pregnancy) error {
	if p.BeneficiaryID == uuid.Nil {
		return fmt.Errorf("pregnancy requires a beneficiary")
	}
	if p.ANCExpected <= 0 {
		p.ANCExpected = risk.DefaultANCExpected
	}

	s.applyPrebirth(p)
	if err := s.pregnancies.Create(ctx, p); err != nil {
		return fmt.Errorf("create pregnancy: %w", err)
	}
	return nil
}

// UpdatePregnancy rescores after a clinical edit and rewrites the row.
func (s *Service) UpdatePregnancy(ctx context.Context, p *Pregnancy) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("pregnancy id is required")
	}
	s.applyPrebirth(p)
	if err := s.pregnancies.Update(ctx, p); err != nil {
		return fmt.Errorf("update pregnancy: %w", err)
	}
	return nil
}

func (s *Service) applyPrebirth(p *Pregnancy) {
	pred := s.engine.PredictPrebirthRisk(p)
	p.RiskScore = pred.Score
	p.RiskLevel = string(pred.Level)
	p.RiskFactors = pred.TopFactors
}

// CreateDelivery scores the outcome and persists it.
func (s *Service) CreateDelivery(ctx context.Context, d *Delivery) error {
	if d.PregnancyID == uuid.Nil {
		return fmt.Errorf("delivery requires a pregnancy")
	}

	pred := s.engine.PredictPostbirthRisk(d)
	d.RiskScore = pred.Score
	d.RiskLevel = string(pred.Level)
	d.RiskFactors = pred.TopFactors

	if err := s.deliveries.Create(ctx, d); err != nil {
		return fmt.Errorf("create delivery: %w", err)
	}
	return nil
}

// CreateChild runs off-track detection over the immunization counts and
// persists the child.
func (s *Service) CreateChild(ctx context.Context, c *Child) error {
	if c.DeliveryID == uuid.Nil {
		return fmt.Errorf("child requires a delivery")
	}

	c.OfftrackFlag = s.engine.DetectOfftrack(c)

	if err := s.children.Create(ctx, c); err != nil {
		return fmt.Errorf("create child: %w", err)
	}
	return nil
}

func (s *Service) GetPregnancy(ctx context.Context, id uuid.UUID) (*Pregnancy, error) {
	p, err := s.pregnancies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get pregnancy: %w", err)
	}
	return p, nil
}

func (s *Service) GetDelivery(ctx context.Context, id uuid.UUID) (*Delivery, error) {
	d, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return d, nil
}

func (s *Service) GetChild(ctx context.Context, id uuid.UUID) (*Child, error) {
	c, err := s.children.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}
