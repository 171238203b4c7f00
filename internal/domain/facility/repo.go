package facility

import (
	"context"

	"github.com/google/uuid"
)

type HospitalRepository interface {
	Create(ctx context.Context, h *Hospital) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error)
	GetByKey(ctx context.Context, key Key) (*Hospital, error)
	Count(ctx context.Context) (int, error)
}
