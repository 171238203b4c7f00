package maternity

import (
	"context"

	"github.com/google/uuid"
)

type PregnancyRepository interface {
	Create(ctx context.Context, p *Pregnancy) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pregnancy, error)
	// Update rewrites the clinical inputs and the derived risk fields.
	Update(ctx context.Context, p *Pregnancy) error
	UpdateRisk(ctx context.Context, id uuid.UUID, score float64, level string, factors []string) error
	ListAll(ctx context.Context) ([]*Pregnancy, error)
}

type DeliveryRepository interface {
	Create(ctx context.Context, d *Delivery) error
	GetByID(ctx context.Context, id uuid.UUID) (*Delivery, error)
	UpdateRisk(ctx context.Context, id uuid.UUID, score float64, level string, factors []string) error
	ListAll(ctx context.Context) ([]*Delivery, error)
}

type ChildRepository interface {
	Create(ctx context.Context, c *Child) error
	GetByID(ctx context.Context, id uuid.UUID) (*Child, error)
	UpdateOfftrack(ctx context.Context, id uuid.UUID, completed, expected int, offtrack bool) error
	ListAll(ctx context.Context) ([]*Child, error)
}
