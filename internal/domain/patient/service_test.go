package patient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockPatientRepo) GetByEmail(_ context.Context, email string) (*Patient, error) {
	for _, p := range m.patients {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	total := len(result)
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockPatientRepo) AddPenalty(_ context.Context, id uuid.UUID) (int, error) {
	p, ok := m.patients[id]
	if !ok {
		return 0, fmt.Errorf("not found")
	}
	p.PenaltyCount++
	return p.PenaltyCount, nil
}

func (m *mockPatientRepo) ResetPenalties(_ context.Context, id uuid.UUID) error {
	p, ok := m.patients[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	p.PenaltyCount = 0
	return nil
}

// -- Tests --

func TestTierDiscount(t *testing.T) {
	tests := []struct {
		tier Tier
		want float64
	}{
		{TierRegular, 1.0},
		{TierSilver, 0.95},
		{TierGold, 0.90},
		{Tier("unknown"), 1.0},
	}
	for _, tt := range tests {
		if got := tt.tier.Discount(); got != tt.want {
			t.Errorf("%s discount = %v, want %v", tt.tier, got, tt.want)
		}
	}
}

func TestCreate_DefaultsAndValidation(t *testing.T) {
	svc := NewService(newMockPatientRepo())

	p := &Patient{FirstName: "Ana", LastName: "Petrovic", Email: "ana@example.com", PenaltyCount: 5}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Tier != TierRegular {
		t.Errorf("tier = %s, want regular", p.Tier)
	}
	if p.PenaltyCount != 0 {
		t.Errorf("penalty count = %d, want 0 on create", p.PenaltyCount)
	}

	if err := svc.Create(context.Background(), &Patient{Email: "x@y"}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.Create(context.Background(), &Patient{FirstName: "A", LastName: "B"}); err == nil {
		t.Error("expected error for missing email")
	}
	if err := svc.Create(context.Background(), &Patient{
		FirstName: "A", LastName: "B", Email: "a@b", Tier: Tier("platinum"),
	}); err == nil {
		t.Error("expected error for unknown tier")
	}
}

func TestBlocked(t *testing.T) {
	p := &Patient{PenaltyCount: 2}
	if p.Blocked() {
		t.Error("2 penalties should not block")
	}
	p.PenaltyCount = 3
	if !p.Blocked() {
		t.Error("3 penalties should block")
	}
}

func TestAddPenaltyAndReset(t *testing.T) {
	repo := newMockPatientRepo()
	svc := NewService(repo)

	p := &Patient{FirstName: "Ana", LastName: "P", Email: "ana@example.com"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 1; i <= 3; i++ {
		count, err := svc.AddPenalty(context.Background(), p.ID)
		if err != nil {
			t.Fatalf("add penalty: %v", err)
		}
		if count != i {
			t.Errorf("count = %d, want %d", count, i)
		}
	}

	got, _ := svc.Get(context.Background(), p.ID)
	if !got.Blocked() {
		t.Error("patient should be blocked after 3 penalties")
	}

	if err := svc.ResetPenalties(context.Background(), p.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, _ = svc.Get(context.Background(), p.ID)
	if got.PenaltyCount != 0 {
		t.Errorf("penalty count after reset = %d", got.PenaltyCount)
	}
}

func TestGetByEmail(t *testing.T) {
	svc := NewService(newMockPatientRepo())

	p := &Patient{FirstName: "Ana", LastName: "P", Email: "ana@example.com"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.GetByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != p.ID {
		t.Error("wrong patient returned")
	}

	if _, err := svc.GetByEmail(context.Background(), "missing@example.com"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdate_PreservesTierWhenOmitted(t *testing.T) {
	svc := NewService(newMockPatientRepo())

	p := &Patient{FirstName: "Ana", LastName: "P", Email: "ana@example.com", Tier: TierGold}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}

	upd := &Patient{ID: p.ID, FirstName: "Anna", LastName: "P", Email: "ana@example.com"}
	if err := svc.Update(context.Background(), upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Tier != TierGold {
		t.Errorf("tier = %s, want gold preserved", upd.Tier)
	}
}
