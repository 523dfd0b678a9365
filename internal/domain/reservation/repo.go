package reservation

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for reservations.
type Repository interface {
	Create(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	// ListByPatient and ListByPharmacy return all statuses when status is
	// the empty string.
	ListByPatient(ctx context.Context, patientID uuid.UUID, status Status, limit, offset int) ([]*Reservation, int, error)
	ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, status Status, limit, offset int) ([]*Reservation, int, error)
}
