package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pharmanet/pharmanet/internal/domain/drug"
	"github.com/pharmanet/pharmanet/internal/domain/patient"
	"github.com/pharmanet/pharmanet/internal/domain/pharmacy"
	"github.com/pharmanet/pharmanet/internal/platform/db"
	"github.com/pharmanet/pharmanet/internal/platform/notification"
)

var (
	// ErrPatientNotFound is returned when the reserving patient does not exist.
	ErrPatientNotFound = errors.New("patient not found")

	// ErrPenaltyLimit is returned when the patient has too many penalty
	// points to reserve.
	ErrPenaltyLimit = errors.New("patient has reached the penalty limit")

	// ErrInvalidPickupDate is returned when the pickup date is not strictly
	// in the future.
	ErrInvalidPickupDate = errors.New("pickup date must be in the future")

	// ErrStockNotFound is returned when the pharmacy does not carry the drug.
	ErrStockNotFound = errors.New("pharmacy does not stock this drug")

	// ErrOutOfStock is returned when the pharmacy carries the drug but has
	// no units left.
	ErrOutOfStock = errors.New("drug is out of stock")

	// ErrNotFound is returned when a reservation does not exist.
	ErrNotFound = errors.New("reservation not found")

	// ErrNotOwner is returned when a patient operates on someone else's
	// reservation.
	ErrNotOwner = errors.New("reservation belongs to another patient")

	// ErrNotActive is returned when the reservation has already been
	// cancelled or picked up.
	ErrNotActive = errors.New("reservation is not active")

	// ErrCancelWindow is returned when the pickup date is too close to
	// cancel.
	ErrCancelWindow = errors.New("reservation can no longer be cancelled")
)

// PatientStore is the slice of the patient repository the reservation flow
// needs.
type PatientStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// StockStore is the slice of the stock repository the reservation flow needs.
type StockStore interface {
	Get(ctx context.Context, pharmacyID, drugID uuid.UUID) (*drug.StockEntry, error)
	Decrement(ctx context.Context, pharmacyID, drugID uuid.UUID) (bool, error)
	Increment(ctx context.Context, pharmacyID, drugID uuid.UUID) error
}

// DrugStore resolves drug details for notifications.
type DrugStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*drug.Drug, error)
}

// PharmacyStore resolves pharmacy details for notifications.
type PharmacyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*pharmacy.Pharmacy, error)
}

// Notifier sends templated notifications. notification.Manager satisfies it.
type Notifier interface {
	SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*notification.Notification, error)
}

type Service struct {
	reservations Repository
	patients     PatientStore
	stock        StockStore
	drugs        DrugStore
	pharmacies   PharmacyStore
	txer         db.Txer
	notifier     Notifier
	log          zerolog.Logger

	// now is swapped in tests to pin the clock.
	now func() time.Time
}

func NewService(
	reservations Repository,
	patients PatientStore,
	stock StockStore,
	drugs DrugStore,
	pharmacies PharmacyStore,
	txer db.Txer,
	notifier Notifier,
	log zerolog.Logger,
) *Service {
	return &Service{
		reservations: reservations,
		patients:     patients,
		stock:        stock,
		drugs:        drugs,
		pharmacies:   pharmacies,
		txer:         txer,
		notifier:     notifier,
		log:          log,
		now:          time.Now,
	}
}

// Reserve places a reservation for one unit of a drug at a pharmacy.
//
// The stock decrement and the reservation insert run in one transaction, and
// the decrement is a guarded single-row update, so concurrent reservations
// cannot oversell the last unit. The confirmation email goes out after
// commit and never affects the outcome.
func (s *Service) Reserve(ctx context.Context, patientID, drugID, pharmacyID uuid.UUID, pickupDate time.Time) (*Reservation, error) {
	pat, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, ErrPatientNotFound
	}
	if pat.Blocked() {
		return nil, ErrPenaltyLimit
	}
	if !pickupDate.After(s.now()) {
		return nil, ErrInvalidPickupDate
	}

	res := &Reservation{
		PatientID:  patientID,
		PharmacyID: pharmacyID,
		DrugID:     drugID,
		PickupDate: pickupDate,
		Status:     StatusReserved,
	}

	err = s.txer.WithTx(ctx, func(ctx context.Context) error {
		entry, err := s.stock.Get(ctx, pharmacyID, drugID)
		if err != nil {
			return ErrStockNotFound
		}

		taken, err := s.stock.Decrement(ctx, pharmacyID, drugID)
		if err != nil {
			return err
		}
		if !taken {
			return ErrOutOfStock
		}

		res.Price = entry.Price * pat.Tier.Discount()
		return s.reservations.Create(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	go s.notify(res, pat, "reservation-confirmed")
	return res, nil
}

// Cancel cancels a reservation and returns the unit to stock. Cancellation
// is allowed only while the pickup day is more than one day away; on the
// boundary day itself it is already too late.
func (s *Service) Cancel(ctx context.Context, reservationID, patientID uuid.UUID) error {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return ErrNotFound
	}
	if res.PatientID != patientID {
		return ErrNotOwner
	}
	if res.Status != StatusReserved {
		return ErrNotActive
	}

	pickupDay := startOfDay(res.PickupDate)
	deadline := startOfDay(s.now()).Add(24 * time.Hour)
	if !pickupDay.After(deadline) {
		return ErrCancelWindow
	}

	err = s.txer.WithTx(ctx, func(ctx context.Context) error {
		if err := s.reservations.UpdateStatus(ctx, res.ID, StatusCancelled); err != nil {
			return err
		}
		return s.stock.Increment(ctx, res.PharmacyID, res.DrugID)
	})
	if err != nil {
		return err
	}
	res.Status = StatusCancelled

	if pat, perr := s.patients.GetByID(ctx, patientID); perr == nil {
		go s.notify(res, pat, "reservation-cancelled")
	}
	return nil
}

// MarkPickedUp transitions a reservation to PICKED_UP. The unit stays off
// the shelf.
func (s *Service) MarkPickedUp(ctx context.Context, reservationID uuid.UUID) error {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return ErrNotFound
	}
	if res.Status != StatusReserved {
		return ErrNotActive
	}
	return s.reservations.UpdateStatus(ctx, res.ID, StatusPickedUp)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return res, nil
}

// ListByPatient returns a patient's reservations, optionally filtered to a
// single status. An empty status returns everything.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, status Status, limit, offset int) ([]*Reservation, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("unknown reservation status %q", status)
	}
	return s.reservations.ListByPatient(ctx, patientID, status, limit, offset)
}

func (s *Service) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, status Status, limit, offset int) ([]*Reservation, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("unknown reservation status %q", status)
	}
	return s.reservations.ListByPharmacy(ctx, pharmacyID, status, limit, offset)
}

// notify sends a lifecycle email in the background. Failures are logged and
// otherwise ignored; the reservation itself is already committed.
func (s *Service) notify(res *Reservation, pat *patient.Patient, templateID string) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data := map[string]string{
		"patient_name": pat.FirstName + " " + pat.LastName,
		"pickup_date":  res.PickupDate.Format("2006-01-02"),
		"price":        fmt.Sprintf("%.2f", res.Price),
	}
	if d, err := s.drugs.GetByID(ctx, res.DrugID); err == nil {
		data["drug_name"] = d.Name
	}
	if p, err := s.pharmacies.GetByID(ctx, res.PharmacyID); err == nil {
		data["pharmacy_name"] = p.Name
	}

	if _, err := s.notifier.SendFromTemplate(ctx, templateID, data, pat.Email); err != nil {
		s.log.Warn().Err(err).
			Str("reservation_id", res.ID.String()).
			Str("template", templateID).
			Msg("reservation notification failed")
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
