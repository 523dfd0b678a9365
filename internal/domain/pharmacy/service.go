package pharmacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pharmanet/pharmanet/internal/platform/db"
)

// ErrNotFound is returned when a pharmacy does not exist.
var ErrNotFound = errors.New("pharmacy not found")

type Service struct {
	pharmacies Repository
	locations  LocationRepository
	txer       db.Txer
}

func NewService(pharmacies Repository, locations LocationRepository, txer db.Txer) *Service {
	return &Service{pharmacies: pharmacies, locations: locations, txer: txer}
}

// Create persists a pharmacy together with its location in one transaction.
func (s *Service) Create(ctx context.Context, p *Pharmacy) error {
	if p.Name == "" {
		return fmt.Errorf("pharmacy name is required")
	}
	if p.Location == nil || p.Location.Address == "" {
		return fmt.Errorf("pharmacy location is required")
	}

	return s.txer.WithTx(ctx, func(ctx context.Context) error {
		if err := s.locations.Create(ctx, p.Location); err != nil {
			return err
		}
		p.LocationID = p.Location.ID
		return s.pharmacies.Create(ctx, p)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	p, err := s.pharmacies.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, p *Pharmacy) error {
	if p.Name == "" {
		return fmt.Errorf("pharmacy name is required")
	}
	existing, err := s.pharmacies.GetByID(ctx, p.ID)
	if err != nil {
		return ErrNotFound
	}
	p.LocationID = existing.LocationID

	return s.txer.WithTx(ctx, func(ctx context.Context) error {
		if p.Location != nil {
			p.Location.ID = existing.LocationID
			if err := s.locations.Update(ctx, p.Location); err != nil {
				return err
			}
		}
		return s.pharmacies.Update(ctx, p)
	})
}

// Delete removes a pharmacy and its location.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.pharmacies.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	return s.txer.WithTx(ctx, func(ctx context.Context) error {
		if err := s.pharmacies.Delete(ctx, id); err != nil {
			return err
		}
		return s.locations.Delete(ctx, p.LocationID)
	})
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Pharmacy, int, error) {
	return s.pharmacies.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Pharmacy, int, error) {
	return s.pharmacies.Search(ctx, params, limit, offset)
}
