package pharmacist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pharmanet/pharmanet/internal/domain/pharmacy"
	"github.com/pharmanet/pharmanet/internal/platform/db"
)

var (
	// ErrNotFound is returned when a pharmacist does not exist.
	ErrNotFound = errors.New("pharmacist not found")

	// ErrHasAppointments is returned when a delete is refused because the
	// pharmacist still has scheduled appointments.
	ErrHasAppointments = errors.New("pharmacist has scheduled appointments")
)

// LocationStore is the slice of the location repository this service needs.
// pharmacy.LocationRepository satisfies it.
type LocationStore interface {
	Create(ctx context.Context, l *pharmacy.Location) error
	Update(ctx context.Context, l *pharmacy.Location) error
}

// Default working hours for a new employment, in minutes from midnight.
const (
	defaultShiftStart = 8 * 60
	defaultShiftEnd   = 16 * 60
)

type Service struct {
	pharmacists Repository
	locations   LocationStore
	txer        db.Txer
}

func NewService(pharmacists Repository, locations LocationStore, txer db.Txer) *Service {
	return &Service{pharmacists: pharmacists, locations: locations, txer: txer}
}

// Create persists the pharmacist's home location, the pharmacist, and an
// employment row binding them to the given pharmacy, in one transaction.
// Rating accumulators always start at zero and the role is fixed regardless
// of input.
func (s *Service) Create(ctx context.Context, p *Pharmacist, pharmacyID uuid.UUID) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("pharmacist name is required")
	}
	if p.Email == "" {
		return fmt.Errorf("pharmacist email is required")
	}
	if p.Location == nil || p.Location.Address == "" {
		return fmt.Errorf("pharmacist location is required")
	}
	if pharmacyID == uuid.Nil {
		return fmt.Errorf("pharmacy_id is required")
	}

	p.Role = Role
	p.RatingSum = 0
	p.RatingCount = 0
	p.FirstLogin = true

	return s.txer.WithTx(ctx, func(ctx context.Context) error {
		if err := s.locations.Create(ctx, p.Location); err != nil {
			return err
		}
		p.LocationID = p.Location.ID
		if err := s.pharmacists.Create(ctx, p); err != nil {
			return err
		}
		return s.pharmacists.CreateEmployment(ctx, &Employment{
			PharmacistID: p.ID,
			PharmacyID:   pharmacyID,
			StartDate:    time.Now().UTC(),
			ShiftStart:   defaultShiftStart,
			ShiftEnd:     defaultShiftEnd,
		})
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Pharmacist, error) {
	p, err := s.pharmacists.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Update overwrites the mutable profile fields and, when a location is
// supplied, the existing location row in place.
func (s *Service) Update(ctx context.Context, p *Pharmacist) error {
	existing, err := s.pharmacists.GetByID(ctx, p.ID)
	if err != nil {
		return ErrNotFound
	}
	// Rating accumulators and role are never writable through Update.
	p.Role = existing.Role
	p.RatingSum = existing.RatingSum
	p.RatingCount = existing.RatingCount
	p.LocationID = existing.LocationID

	return s.txer.WithTx(ctx, func(ctx context.Context) error {
		if p.Location != nil {
			p.Location.ID = existing.LocationID
			if err := s.locations.Update(ctx, p.Location); err != nil {
				return err
			}
		}
		return s.pharmacists.Update(ctx, p)
	})
}

// Delete removes the pharmacist row. It refuses when the pharmacist still
// has scheduled appointments.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pharmacists.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	count, err := s.pharmacists.CountScheduled(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasAppointments
	}
	return s.pharmacists.Delete(ctx, id)
}

// DeleteCascade removes the pharmacist along with their notifications and
// employment rows, in that order, inside one transaction. The delete is
// refused when scheduled appointments remain.
func (s *Service) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pharmacists.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	count, err := s.pharmacists.CountScheduled(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasAppointments
	}

	return s.txer.WithTx(ctx, func(ctx context.Context) error {
		if err := s.pharmacists.DeleteNotificationsFor(ctx, id); err != nil {
			return err
		}
		if err := s.pharmacists.Delete(ctx, id); err != nil {
			return err
		}
		return s.pharmacists.DeleteEmploymentsFor(ctx, id)
	})
}

// HasScheduledAppointments reports whether the pharmacist has scheduled
// appointments, at one pharmacy when pharmacyID is set or anywhere when it
// is uuid.Nil.
func (s *Service) HasScheduledAppointments(ctx context.Context, pharmacistID, pharmacyID uuid.UUID) (bool, error) {
	var (
		count int
		err   error
	)
	if pharmacyID == uuid.Nil {
		count, err = s.pharmacists.CountScheduled(ctx, pharmacistID)
	} else {
		count, err = s.pharmacists.CountScheduledAt(ctx, pharmacistID, pharmacyID)
	}
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Pharmacist, int, error) {
	return s.pharmacists.List(ctx, limit, offset)
}

func (s *Service) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Pharmacist, int, error) {
	return s.pharmacists.ListByPharmacy(ctx, pharmacyID, limit, offset)
}

// Rate records a patient rating between 1 and 5.
func (s *Service) Rate(ctx context.Context, id uuid.UUID, rating float64) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	if _, err := s.pharmacists.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.pharmacists.AddRating(ctx, id, rating)
}
