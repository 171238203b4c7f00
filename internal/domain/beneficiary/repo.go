package beneficiary

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *Beneficiary) error
	GetByID(ctx context.Context, id uuid.UUID) (*Beneficiary, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Beneficiary, error)
}
