package pharmacy

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repositories --

type noopTxer struct{}

func (noopTxer) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockPharmacyRepo struct {
	pharmacies map[uuid.UUID]*Pharmacy
}

func newMockPharmacyRepo() *mockPharmacyRepo {
	return &mockPharmacyRepo{pharmacies: make(map[uuid.UUID]*Pharmacy)}
}

func (m *mockPharmacyRepo) Create(_ context.Context, p *Pharmacy) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.pharmacies[p.ID] = p
	return nil
}

func (m *mockPharmacyRepo) GetByID(_ context.Context, id uuid.UUID) (*Pharmacy, error) {
	p, ok := m.pharmacies[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockPharmacyRepo) Update(_ context.Context, p *Pharmacy) error {
	if _, ok := m.pharmacies[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.pharmacies[p.ID] = p
	return nil
}

func (m *mockPharmacyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.pharmacies, id)
	return nil
}

func (m *mockPharmacyRepo) List(_ context.Context, limit, offset int) ([]*Pharmacy, int, error) {
	var result []*Pharmacy
	for _, p := range m.pharmacies {
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

func (m *mockPharmacyRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Pharmacy, int, error) {
	return m.List(context.Background(), limit, offset)
}

type mockLocationRepo struct {
	locations map[uuid.UUID]*Location
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{locations: make(map[uuid.UUID]*Location)}
}

func (m *mockLocationRepo) Create(_ context.Context, loc *Location) error {
	loc.ID = uuid.New()
	m.locations[loc.ID] = loc
	return nil
}

func (m *mockLocationRepo) GetByID(_ context.Context, id uuid.UUID) (*Location, error) {
	l, ok := m.locations[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return l, nil
}

func (m *mockLocationRepo) Update(_ context.Context, loc *Location) error {
	m.locations[loc.ID] = loc
	return nil
}

func (m *mockLocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.locations, id)
	return nil
}

func newTestService() (*Service, *mockPharmacyRepo, *mockLocationRepo) {
	pharmacies := newMockPharmacyRepo()
	locations := newMockLocationRepo()
	return NewService(pharmacies, locations, noopTxer{}), pharmacies, locations
}

// -- Tests --

func TestCreate(t *testing.T) {
	svc, _, locations := newTestService()

	p := &Pharmacy{
		Name: "Central Pharmacy",
		Location: &Location{
			Address:   "1 Main St",
			City:      "Springfield",
			Latitude:  44.8,
			Longitude: 20.4,
		},
	}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected pharmacy ID to be assigned")
	}
	if p.LocationID != p.Location.ID {
		t.Error("pharmacy should reference the created location")
	}
	if len(locations.locations) != 1 {
		t.Errorf("locations stored = %d, want 1", len(locations.locations))
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	if err := svc.Create(context.Background(), &Pharmacy{Location: &Location{Address: "x"}}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.Create(context.Background(), &Pharmacy{Name: "P"}); err == nil {
		t.Error("expected error for missing location")
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Get(context.Background(), uuid.New()); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	svc, _, _ := newTestService()

	p := &Pharmacy{Name: "Old Name", Location: &Location{Address: "1 Main St", City: "Springfield"}}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}

	updated := &Pharmacy{ID: p.ID, Name: "New Name"}
	if err := svc.Update(context.Background(), updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "New Name" {
		t.Errorf("name = %q, want New Name", got.Name)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Update(context.Background(), &Pharmacy{ID: uuid.New(), Name: "X"})
	if err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete_RemovesLocation(t *testing.T) {
	svc, pharmacies, locations := newTestService()

	p := &Pharmacy{Name: "P", Location: &Location{Address: "1 Main St", City: "S"}}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(pharmacies.pharmacies) != 0 || len(locations.locations) != 0 {
		t.Error("expected pharmacy and location to be removed")
	}
}

func TestList(t *testing.T) {
	svc, _, _ := newTestService()

	for i := 0; i < 3; i++ {
		p := &Pharmacy{Name: fmt.Sprintf("P%d", i), Location: &Location{Address: "a", City: "c"}}
		if err := svc.Create(context.Background(), p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, total, err := svc.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(list) != 3 {
		t.Errorf("total = %d len = %d, want 3", total, len(list))
	}
}
