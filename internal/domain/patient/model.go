package patient

import (
	"time"

	"github.com/google/uuid"
)

// Tier is a patient's membership level. It determines the discount applied
// to reservation prices.
type Tier string

const (
	TierRegular Tier = "regular"
	TierSilver  Tier = "silver"
	TierGold    Tier = "gold"
)

// Discount returns the price multiplier for the tier. Unknown tiers pay
// full price.
func (t Tier) Discount() float64 {
	switch t {
	case TierSilver:
		return 0.95
	case TierGold:
		return 0.90
	default:
		return 1.0
	}
}

// Valid reports whether the tier is one of the recognized levels.
func (t Tier) Valid() bool {
	switch t {
	case TierRegular, TierSilver, TierGold:
		return true
	}
	return false
}

// PenaltyLimit is the number of penalty points at which a patient is
// blocked from making new reservations.
const PenaltyLimit = 3

// Patient maps to the patient table.
type Patient struct {
	ID           uuid.UUID `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Tier         Tier      `db:"tier" json:"tier"`
	PenaltyCount int       `db:"penalty_count" json:"penalty_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Blocked reports whether the patient has reached the penalty limit.
func (p *Patient) Blocked() bool {
	return p.PenaltyCount >= PenaltyLimit
}
