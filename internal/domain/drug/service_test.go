package drug

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type noopTxer struct{}

func (noopTxer) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockDrugRepo struct {
	drugs       map[uuid.UUID]*Drug
	substitutes map[uuid.UUID][]uuid.UUID
	created     int
}

func newMockDrugRepo() *mockDrugRepo {
	return &mockDrugRepo{
		drugs:       make(map[uuid.UUID]*Drug),
		substitutes: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *mockDrugRepo) Create(_ context.Context, d *Drug) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	m.drugs[d.ID] = d
	m.created++
	return nil
}

func (m *mockDrugRepo) GetByID(_ context.Context, id uuid.UUID) (*Drug, error) {
	d, ok := m.drugs[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return d, nil
}

func (m *mockDrugRepo) Update(_ context.Context, d *Drug) error {
	m.drugs[d.ID] = d
	return nil
}

func (m *mockDrugRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.drugs, id)
	return nil
}

func (m *mockDrugRepo) List(_ context.Context, limit, offset int) ([]*Drug, int, error) {
	var result []*Drug
	for _, d := range m.drugs {
		result = append(result, d)
	}
	return result, len(result), nil
}

func (m *mockDrugRepo) Search(_ context.Context, name string, limit, offset int) ([]*Drug, int, error) {
	return m.List(context.Background(), limit, offset)
}

func (m *mockDrugRepo) AddSubstitute(_ context.Context, drugID, substituteID uuid.UUID) error {
	m.substitutes[drugID] = append(m.substitutes[drugID], substituteID)
	return nil
}

func (m *mockDrugRepo) Substitutes(_ context.Context, drugID uuid.UUID) ([]*Drug, error) {
	seen := make(map[uuid.UUID]bool)
	var result []*Drug
	for _, id := range m.substitutes[drugID] {
		if !seen[id] {
			seen[id] = true
			result = append(result, m.drugs[id])
		}
	}
	// Symmetric: drugs that name this one as a substitute.
	for owner, subs := range m.substitutes {
		for _, id := range subs {
			if id == drugID && !seen[owner] {
				seen[owner] = true
				result = append(result, m.drugs[owner])
			}
		}
	}
	return result, nil
}

type mockStockRepo struct {
	entries map[string]*StockEntry
	names   map[uuid.UUID]string
}

func newMockStockRepo() *mockStockRepo {
	return &mockStockRepo{
		entries: make(map[string]*StockEntry),
		names:   make(map[uuid.UUID]string),
	}
}

func stockKey(pharmacyID, drugID uuid.UUID) string {
	return pharmacyID.String() + "/" + drugID.String()
}

func (m *mockStockRepo) Upsert(_ context.Context, e *StockEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.UpdatedAt = time.Now()
	m.entries[stockKey(e.PharmacyID, e.DrugID)] = e
	return nil
}

func (m *mockStockRepo) Get(_ context.Context, pharmacyID, drugID uuid.UUID) (*StockEntry, error) {
	e, ok := m.entries[stockKey(pharmacyID, drugID)]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return e, nil
}

func (m *mockStockRepo) Decrement(_ context.Context, pharmacyID, drugID uuid.UUID) (bool, error) {
	e, ok := m.entries[stockKey(pharmacyID, drugID)]
	if !ok || e.Quantity <= 0 {
		return false, nil
	}
	e.Quantity--
	return true, nil
}

func (m *mockStockRepo) Increment(_ context.Context, pharmacyID, drugID uuid.UUID) error {
	e, ok := m.entries[stockKey(pharmacyID, drugID)]
	if !ok {
		return fmt.Errorf("not found")
	}
	e.Quantity++
	return nil
}

func (m *mockStockRepo) PharmaciesForDrug(_ context.Context, drugID uuid.UUID) ([]*PharmacyPrice, error) {
	var result []*PharmacyPrice
	for _, e := range m.entries {
		if e.DrugID == drugID && e.Quantity > 0 {
			result = append(result, &PharmacyPrice{
				PharmacyID:   e.PharmacyID,
				PharmacyName: m.names[e.PharmacyID],
				Price:        e.Price,
				Quantity:     e.Quantity,
			})
		}
	}
	return result, nil
}

func (m *mockStockRepo) ListForPharmacy(_ context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*StockEntry, int, error) {
	var result []*StockEntry
	for _, e := range m.entries {
		if e.PharmacyID == pharmacyID {
			result = append(result, e)
		}
	}
	return result, len(result), nil
}

func newTestService() (*Service, *mockDrugRepo, *mockStockRepo) {
	drugs := newMockDrugRepo()
	stock := newMockStockRepo()
	return NewService(drugs, stock, noopTxer{}), drugs, stock
}

func mustCreate(t *testing.T, svc *Service, name string) *Drug {
	t.Helper()
	d := &Drug{Name: name, Manufacturer: "Acme"}
	if err := svc.Create(context.Background(), d, nil); err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return d
}

// -- Tests --

func TestCreate_WithSubstitutes(t *testing.T) {
	svc, repo, _ := newTestService()

	subA := mustCreate(t, svc, "Brufen")
	subB := mustCreate(t, svc, "Nurofen")

	d := &Drug{Name: "Ibuprofen Generic", Manufacturer: "Acme"}
	if err := svc.Create(context.Background(), d, []uuid.UUID{subA.ID, subB.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(d.Substitutes) != 2 {
		t.Errorf("substitutes = %d, want 2", len(d.Substitutes))
	}
	if len(repo.substitutes[d.ID]) != 2 {
		t.Errorf("stored links = %d, want 2", len(repo.substitutes[d.ID]))
	}
}

func TestCreate_UnknownSubstituteFailsWhole(t *testing.T) {
	svc, repo, _ := newTestService()

	sub := mustCreate(t, svc, "Brufen")
	before := repo.created

	d := &Drug{Name: "Generic", Manufacturer: "Acme"}
	err := svc.Create(context.Background(), d, []uuid.UUID{sub.ID, uuid.New()})
	if !errors.Is(err, ErrSubstituteNotFound) {
		t.Fatalf("err = %v, want ErrSubstituteNotFound", err)
	}
	if repo.created != before {
		t.Error("drug must not be persisted when a substitute is unknown")
	}
	if len(repo.substitutes) != 0 {
		t.Error("no substitute links may be persisted")
	}
}

func TestSubstitutes_Symmetric(t *testing.T) {
	svc, _, _ := newTestService()

	a := mustCreate(t, svc, "Brufen")
	b := &Drug{Name: "Nurofen", Manufacturer: "Acme"}
	if err := svc.Create(context.Background(), b, []uuid.UUID{a.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// The relation must be visible from both ends.
	got, err := svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Substitutes) != 1 || got.Substitutes[0].ID != b.ID {
		t.Errorf("substitutes of a = %+v, want [b]", got.Substitutes)
	}
}

func TestAddSubstitute_SelfRejected(t *testing.T) {
	svc, _, _ := newTestService()
	d := mustCreate(t, svc, "Brufen")
	if err := svc.AddSubstitute(context.Background(), d.ID, d.ID); err == nil {
		t.Error("expected error for self-substitute")
	}
}

func TestUpsertStockAndGet(t *testing.T) {
	svc, _, _ := newTestService()
	d := mustCreate(t, svc, "Brufen")
	pharmacyID := uuid.New()

	entry := &StockEntry{PharmacyID: pharmacyID, DrugID: d.ID, Quantity: 10, Price: 4.50}
	if err := svc.UpsertStock(context.Background(), entry); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := svc.GetStock(context.Background(), pharmacyID, d.ID)
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if got.Quantity != 10 || got.Price != 4.50 {
		t.Errorf("stock = %+v", got)
	}

	if _, err := svc.GetStock(context.Background(), uuid.New(), d.ID); !errors.Is(err, ErrStockNotFound) {
		t.Errorf("err = %v, want ErrStockNotFound", err)
	}
}

func TestUpsertStock_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	d := mustCreate(t, svc, "Brufen")

	if err := svc.UpsertStock(context.Background(), &StockEntry{
		PharmacyID: uuid.New(), DrugID: d.ID, Quantity: -1,
	}); err == nil {
		t.Error("expected error for negative quantity")
	}
	if err := svc.UpsertStock(context.Background(), &StockEntry{
		PharmacyID: uuid.New(), DrugID: uuid.New(), Quantity: 1,
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for unknown drug", err)
	}
}

func TestDecrement_StopsAtZero(t *testing.T) {
	svc, _, stock := newTestService()
	d := mustCreate(t, svc, "Brufen")
	pharmacyID := uuid.New()

	if err := svc.UpsertStock(context.Background(), &StockEntry{
		PharmacyID: pharmacyID, DrugID: d.ID, Quantity: 2, Price: 1,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	for i := 0; i < 2; i++ {
		ok, err := stock.Decrement(context.Background(), pharmacyID, d.ID)
		if err != nil || !ok {
			t.Fatalf("decrement %d: ok=%v err=%v", i, ok, err)
		}
	}
	ok, err := stock.Decrement(context.Background(), pharmacyID, d.ID)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if ok {
		t.Error("decrement past zero must report false")
	}

	got, _ := svc.GetStock(context.Background(), pharmacyID, d.ID)
	if got.Quantity != 0 {
		t.Errorf("quantity = %d, want 0", got.Quantity)
	}
}

func TestPharmaciesForDrug_ExcludesEmpty(t *testing.T) {
	svc, _, stock := newTestService()
	d := mustCreate(t, svc, "Brufen")
	inStock := uuid.New()
	empty := uuid.New()
	stock.names[inStock] = "Central"

	_ = svc.UpsertStock(context.Background(), &StockEntry{PharmacyID: inStock, DrugID: d.ID, Quantity: 5, Price: 4})
	_ = svc.UpsertStock(context.Background(), &StockEntry{PharmacyID: empty, DrugID: d.ID, Quantity: 0, Price: 3})

	pharmacies, err := svc.PharmaciesForDrug(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("pharmacies for drug: %v", err)
	}
	if len(pharmacies) != 1 || pharmacies[0].PharmacyID != inStock {
		t.Errorf("pharmacies = %+v, want only the stocked one", pharmacies)
	}
	if pharmacies[0].PharmacyName != "Central" {
		t.Errorf("name = %q", pharmacies[0].PharmacyName)
	}
}
