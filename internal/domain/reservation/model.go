package reservation

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusReserved  Status = "RESERVED"
	StatusCancelled Status = "CANCELLED"
	StatusPickedUp  Status = "PICKED_UP"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusReserved, StatusCancelled, StatusPickedUp:
		return true
	}
	return false
}

// Reservation maps to the reservation table. Price is the amount locked in
// at reservation time, after the patient's tier discount.
type Reservation struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	PharmacyID uuid.UUID `db:"pharmacy_id" json:"pharmacy_id"`
	DrugID     uuid.UUID `db:"drug_id" json:"drug_id"`
	Price      float64   `db:"price" json:"price"`
	PickupDate time.Time `db:"pickup_date" json:"pickup_date"`
	Status     Status    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
