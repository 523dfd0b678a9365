package drug

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pharmanet/pharmanet/internal/platform/db"
)

var (
	// ErrNotFound is returned when a drug does not exist.
	ErrNotFound = errors.New("drug not found")

	// ErrSubstituteNotFound is returned when a substitute ID cannot be
	// resolved. The whole create fails; nothing is persisted.
	ErrSubstituteNotFound = errors.New("substitute drug not found")

	// ErrStockNotFound is returned when a pharmacy does not carry a drug.
	ErrStockNotFound = errors.New("stock entry not found")
)

type Service struct {
	drugs Repository
	stock StockRepository
	txer  db.Txer
}

func NewService(drugs Repository, stock StockRepository, txer db.Txer) *Service {
	return &Service{drugs: drugs, stock: stock, txer: txer}
}

// Create persists a drug and links it to each named substitute. Every
// substitute ID is resolved before anything is written; a single unknown ID
// fails the whole call.
func (s *Service) Create(ctx context.Context, d *Drug, substituteIDs []uuid.UUID) error {
	if d.Name == "" {
		return fmt.Errorf("drug name is required")
	}
	if d.Manufacturer == "" {
		return fmt.Errorf("drug manufacturer is required")
	}

	substitutes := make([]*Drug, 0, len(substituteIDs))
	for _, id := range substituteIDs {
		sub, err := s.drugs.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrSubstituteNotFound, id)
		}
		substitutes = append(substitutes, sub)
	}

	err := s.txer.WithTx(ctx, func(ctx context.Context) error {
		if err := s.drugs.Create(ctx, d); err != nil {
			return err
		}
		for _, sub := range substitutes {
			if err := s.drugs.AddSubstitute(ctx, d.ID, sub.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	d.Substitutes = substitutes
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Drug, error) {
	d, err := s.drugs.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	subs, err := s.drugs.Substitutes(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Substitutes = subs
	return d, nil
}

func (s *Service) Update(ctx context.Context, d *Drug) error {
	if _, err := s.drugs.GetByID(ctx, d.ID); err != nil {
		return ErrNotFound
	}
	return s.drugs.Update(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.drugs.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.drugs.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Drug, int, error) {
	return s.drugs.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, name string, limit, offset int) ([]*Drug, int, error) {
	return s.drugs.Search(ctx, name, limit, offset)
}

// AddSubstitute links two existing drugs as substitutes.
func (s *Service) AddSubstitute(ctx context.Context, drugID, substituteID uuid.UUID) error {
	if drugID == substituteID {
		return fmt.Errorf("a drug cannot substitute itself")
	}
	if _, err := s.drugs.GetByID(ctx, drugID); err != nil {
		return ErrNotFound
	}
	if _, err := s.drugs.GetByID(ctx, substituteID); err != nil {
		return ErrSubstituteNotFound
	}
	return s.drugs.AddSubstitute(ctx, drugID, substituteID)
}

// UpsertStock sets a pharmacy's quantity and price for a drug.
func (s *Service) UpsertStock(ctx context.Context, e *StockEntry) error {
	if e.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if e.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	if _, err := s.drugs.GetByID(ctx, e.DrugID); err != nil {
		return ErrNotFound
	}
	return s.stock.Upsert(ctx, e)
}

// GetStock returns the stock entry for a pharmacy and drug.
func (s *Service) GetStock(ctx context.Context, pharmacyID, drugID uuid.UUID) (*StockEntry, error) {
	e, err := s.stock.Get(ctx, pharmacyID, drugID)
	if err != nil {
		return nil, ErrStockNotFound
	}
	return e, nil
}

// PharmaciesForDrug returns pharmacies that currently have the drug on the
// shelf, cheapest first.
func (s *Service) PharmaciesForDrug(ctx context.Context, drugID uuid.UUID) ([]*PharmacyPrice, error) {
	if _, err := s.drugs.GetByID(ctx, drugID); err != nil {
		return nil, ErrNotFound
	}
	return s.stock.PharmaciesForDrug(ctx, drugID)
}

// ListStockForPharmacy returns a pharmacy's full inventory.
func (s *Service) ListStockForPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*StockEntry, int, error) {
	return s.stock.ListForPharmacy(ctx, pharmacyID, limit, offset)
}
