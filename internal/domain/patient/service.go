package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a patient does not exist.
var ErrNotFound = errors.New("patient not found")

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("patient name is required")
	}
	if p.Email == "" {
		return fmt.Errorf("patient email is required")
	}
	if p.Tier == "" {
		p.Tier = TierRegular
	}
	if !p.Tier.Valid() {
		return fmt.Errorf("unknown tier: %s", p.Tier)
	}
	// New patients always start with a clean record.
	p.PenaltyCount = 0
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	p, err := s.patients.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	existing, err := s.patients.GetByID(ctx, p.ID)
	if err != nil {
		return ErrNotFound
	}
	if p.Tier == "" {
		p.Tier = existing.Tier
	}
	if !p.Tier.Valid() {
		return fmt.Errorf("unknown tier: %s", p.Tier)
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.patients.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// AddPenalty records a missed pickup and returns the patient's new penalty
// count.
func (s *Service) AddPenalty(ctx context.Context, id uuid.UUID) (int, error) {
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return 0, ErrNotFound
	}
	return s.patients.AddPenalty(ctx, id)
}

// ResetPenalties clears a patient's penalty count.
func (s *Service) ResetPenalties(ctx context.Context, id uuid.UUID) error {
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.patients.ResetPenalties(ctx, id)
}
