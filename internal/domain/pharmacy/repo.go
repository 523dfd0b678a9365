package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for pharmacies.
type Repository interface {
	Create(ctx context.Context, p *Pharmacy) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error)
	Update(ctx context.Context, p *Pharmacy) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Pharmacy, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Pharmacy, int, error)
}

// LocationRepository defines the persistence interface for locations.
type LocationRepository interface {
	Create(ctx context.Context, loc *Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*Location, error)
	Update(ctx context.Context, loc *Location) error
	Delete(ctx context.Context, id uuid.UUID) error
}
