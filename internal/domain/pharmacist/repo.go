package pharmacist

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for pharmacists and their
// employments.
type Repository interface {
	Create(ctx context.Context, p *Pharmacist) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pharmacist, error)
	Update(ctx context.Context, p *Pharmacist) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Pharmacist, int, error)
	ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Pharmacist, int, error)
	AddRating(ctx context.Context, id uuid.UUID, rating float64) error

	CreateEmployment(ctx context.Context, e *Employment) error
	DeleteEmploymentsFor(ctx context.Context, pharmacistID uuid.UUID) error

	// DeleteNotificationsFor removes a pharmacist's stored notifications so a
	// cascade delete leaves no orphaned rows.
	DeleteNotificationsFor(ctx context.Context, pharmacistID uuid.UUID) error

	// CountScheduled counts the pharmacist's scheduled appointments across all
	// pharmacies; CountScheduledAt restricts to one pharmacy.
	CountScheduled(ctx context.Context, pharmacistID uuid.UUID) (int, error)
	CountScheduledAt(ctx context.Context, pharmacistID, pharmacyID uuid.UUID) (int, error)
}
