package drug

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for the drug catalog.
type Repository interface {
	Create(ctx context.Context, d *Drug) error
	GetByID(ctx context.Context, id uuid.UUID) (*Drug, error)
	Update(ctx context.Context, d *Drug) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Drug, int, error)
	Search(ctx context.Context, name string, limit, offset int) ([]*Drug, int, error)

	AddSubstitute(ctx context.Context, drugID, substituteID uuid.UUID) error
	Substitutes(ctx context.Context, drugID uuid.UUID) ([]*Drug, error)
}

// StockRepository defines the persistence interface for pharmacy stock.
type StockRepository interface {
	Upsert(ctx context.Context, e *StockEntry) error
	Get(ctx context.Context, pharmacyID, drugID uuid.UUID) (*StockEntry, error)

	// Decrement atomically takes one unit off the shelf. It reports false
	// when the row exists but has no remaining quantity.
	Decrement(ctx context.Context, pharmacyID, drugID uuid.UUID) (bool, error)
	Increment(ctx context.Context, pharmacyID, drugID uuid.UUID) error

	PharmaciesForDrug(ctx context.Context, drugID uuid.UUID) ([]*PharmacyPrice, error)
	ListForPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*StockEntry, int, error)
}
