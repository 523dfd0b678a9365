package pharmacist

import (
	"time"

	"github.com/google/uuid"

	"github.com/pharmanet/pharmanet/internal/domain/pharmacy"
)

// Role is the fixed role assigned to every pharmacist account.
const Role = "pharmacist"

// Pharmacist maps to the pharmacist table.
type Pharmacist struct {
	ID            uuid.UUID `db:"id" json:"id"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Email         string    `db:"email" json:"email"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	Role          string    `db:"role" json:"role"`
	RatingSum     float64   `db:"rating_sum" json:"-"`
	RatingCount   int       `db:"rating_count" json:"rating_count"`
	LocationID    uuid.UUID `db:"location_id" json:"location_id"`
	// FirstLogin stays true until the account holder completes their first
	// sign-in flow; the auth layer flips it.
	FirstLogin bool      `db:"first_login" json:"first_login"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`

	// Location carries the home address on writes; reads return only the
	// location_id reference.
	Location *pharmacy.Location `db:"-" json:"location,omitempty"`
}

// AverageRating returns the mean of all recorded ratings, or 0 when the
// pharmacist has not been rated yet.
func (p *Pharmacist) AverageRating() float64 {
	if p.RatingCount == 0 {
		return 0
	}
	return p.RatingSum / float64(p.RatingCount)
}

// Employment maps to the employment table and links a pharmacist to the
// pharmacy they work at. ShiftStart and ShiftEnd are the daily working
// hours, stored as minutes from midnight.
type Employment struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PharmacistID uuid.UUID  `db:"pharmacist_id" json:"pharmacist_id"`
	PharmacyID   uuid.UUID  `db:"pharmacy_id" json:"pharmacy_id"`
	StartDate    time.Time  `db:"start_date" json:"start_date"`
	EndDate      *time.Time `db:"end_date" json:"end_date,omitempty"`
	ShiftStart   int        `db:"shift_start" json:"shift_start"`
	ShiftEnd     int        `db:"shift_end" json:"shift_end"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}
