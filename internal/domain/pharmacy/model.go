package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Pharmacy maps to the pharmacy table.
type Pharmacy struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Email      *string   `db:"email" json:"email,omitempty"`
	LocationID uuid.UUID `db:"location_id" json:"location_id"`
	Location   *Location `db:"-" json:"location,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Location maps to the location table.
type Location struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Address    string    `db:"address" json:"address"`
	City       string    `db:"city" json:"city"`
	PostalCode *string   `db:"postal_code" json:"postal_code,omitempty"`
	Latitude   float64   `db:"latitude" json:"latitude"`
	Longitude  float64   `db:"longitude" json:"longitude"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
