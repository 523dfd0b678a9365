package drug

import (
	"time"

	"github.com/google/uuid"
)

// Drug maps to the drug table.
type Drug struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Manufacturer string    `db:"manufacturer" json:"manufacturer"`
	Composition  *string   `db:"composition" json:"composition,omitempty"`
	Dosage       *string   `db:"dosage" json:"dosage,omitempty"`
	Form         *string   `db:"form" json:"form,omitempty"`
	Prescription bool      `db:"prescription" json:"prescription"`
	Rating       float64   `db:"rating" json:"rating"`
	Points       int       `db:"points" json:"points"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	// Substitutes carries the resolved substitute drugs when loaded.
	Substitutes []*Drug `db:"-" json:"substitutes,omitempty"`
}

// StockEntry maps to the stock table. Each row is one pharmacy's inventory
// and price for one drug.
type StockEntry struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PharmacyID uuid.UUID `db:"pharmacy_id" json:"pharmacy_id"`
	DrugID     uuid.UUID `db:"drug_id" json:"drug_id"`
	Quantity   int       `db:"quantity" json:"quantity"`
	Price      float64   `db:"price" json:"price"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// PharmacyPrice pairs a pharmacy with its price and availability for a drug.
type PharmacyPrice struct {
	PharmacyID   uuid.UUID `db:"pharmacy_id" json:"pharmacy_id"`
	PharmacyName string    `db:"pharmacy_name" json:"pharmacy_name"`
	Price        float64   `db:"price" json:"price"`
	Quantity     int       `db:"quantity" json:"quantity"`
}
