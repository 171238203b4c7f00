package scheme

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Application) error
	ListByBeneficiary(ctx context.Context, beneficiaryID uuid.UUID) ([]*Application, error)
}
