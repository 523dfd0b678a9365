package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for patients.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	AddPenalty(ctx context.Context, id uuid.UUID) (int, error)
	ResetPenalties(ctx context.Context, id uuid.UUID) error
}
