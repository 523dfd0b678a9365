package drug

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmanet/pharmanet/internal/platform/db"
)

// queryable abstracts pgxpool.Pool and pgx.Tx for transaction-scoped queries.
type queryable interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// -- Drug Repository --

type drugRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &drugRepoPG{pool: pool}
}

func (r *drugRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const drugColumns = `id, name, manufacturer, composition, dosage, form, prescription, rating, points, created_at, updated_at`

func (r *drugRepoPG) Create(ctx context.Context, d *Drug) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO drug (id, name, manufacturer, composition, dosage, form, prescription, rating, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.Name, d.Manufacturer, d.Composition, d.Dosage, d.Form, d.Prescription, d.Rating, d.Points,
	)
	return err
}

func (r *drugRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Drug, error) {
	return scanDrug(r.conn(ctx).QueryRow(ctx,
		`SELECT `+drugColumns+` FROM drug WHERE id = $1`, id))
}

func (r *drugRepoPG) Update(ctx context.Context, d *Drug) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE drug SET name = $2, manufacturer = $3, composition = $4, dosage = $5, form = $6,
			prescription = $7, rating = $8, points = $9, updated_at = NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Manufacturer, d.Composition, d.Dosage, d.Form, d.Prescription, d.Rating, d.Points,
	)
	return err
}

func (r *drugRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM drug WHERE id = $1`, id)
	return err
}

func (r *drugRepoPG) List(ctx context.Context, limit, offset int) ([]*Drug, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM drug`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+drugColumns+` FROM drug ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectDrugs(rows, total)
}

func (r *drugRepoPG) Search(ctx context.Context, name string, limit, offset int) ([]*Drug, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM drug WHERE name ILIKE $1`, "%"+name+"%").Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+drugColumns+` FROM drug WHERE name ILIKE $1 ORDER BY name LIMIT $2 OFFSET $3`,
		"%"+name+"%", limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectDrugs(rows, total)
}

func (r *drugRepoPG) AddSubstitute(ctx context.Context, drugID, substituteID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO drug_substitute (drug_id, substitute_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		drugID, substituteID,
	)
	return err
}

// Substitutes returns both directions of the symmetric substitute relation.
func (r *drugRepoPG) Substitutes(ctx context.Context, drugID uuid.UUID) ([]*Drug, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+drugColumns+` FROM drug WHERE id IN (
			SELECT substitute_id FROM drug_substitute WHERE drug_id = $1
			UNION
			SELECT drug_id FROM drug_substitute WHERE substitute_id = $1
		) ORDER BY name`, drugID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drugs, _, err := collectDrugs(rows, 0)
	return drugs, err
}

func scanDrug(row pgx.Row) (*Drug, error) {
	var d Drug
	err := row.Scan(
		&d.ID, &d.Name, &d.Manufacturer, &d.Composition, &d.Dosage, &d.Form,
		&d.Prescription, &d.Rating, &d.Points, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDrugs(rows pgx.Rows, total int) ([]*Drug, int, error) {
	var drugs []*Drug
	for rows.Next() {
		d, err := scanDrug(rows)
		if err != nil {
			return nil, 0, err
		}
		drugs = append(drugs, d)
	}
	return drugs, total, nil
}

// -- Stock Repository --

type stockRepoPG struct {
	pool *pgxpool.Pool
}

func NewStockRepo(pool *pgxpool.Pool) StockRepository {
	return &stockRepoPG{pool: pool}
}

func (r *stockRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *stockRepoPG) Upsert(ctx context.Context, e *StockEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO stock (id, pharmacy_id, drug_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pharmacy_id, drug_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, price = EXCLUDED.price, updated_at = NOW()`,
		e.ID, e.PharmacyID, e.DrugID, e.Quantity, e.Price,
	)
	return err
}

func (r *stockRepoPG) Get(ctx context.Context, pharmacyID, drugID uuid.UUID) (*StockEntry, error) {
	var e StockEntry
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, pharmacy_id, drug_id, quantity, price, updated_at
		FROM stock WHERE pharmacy_id = $1 AND drug_id = $2`,
		pharmacyID, drugID).Scan(
		&e.ID, &e.PharmacyID, &e.DrugID, &e.Quantity, &e.Price, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Decrement takes one unit in a single guarded UPDATE so two concurrent
// reservations can never both consume the last unit.
func (r *stockRepoPG) Decrement(ctx context.Context, pharmacyID, drugID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE stock SET quantity = quantity - 1, updated_at = NOW()
		WHERE pharmacy_id = $1 AND drug_id = $2 AND quantity > 0`,
		pharmacyID, drugID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *stockRepoPG) Increment(ctx context.Context, pharmacyID, drugID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE stock SET quantity = quantity + 1, updated_at = NOW()
		WHERE pharmacy_id = $1 AND drug_id = $2`,
		pharmacyID, drugID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("stock entry not found")
	}
	return nil
}

func (r *stockRepoPG) PharmaciesForDrug(ctx context.Context, drugID uuid.UUID) ([]*PharmacyPrice, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT s.pharmacy_id, p.name, s.price, s.quantity
		FROM stock s
		JOIN pharmacy p ON p.id = s.pharmacy_id
		WHERE s.drug_id = $1 AND s.quantity > 0
		ORDER BY s.price`, drugID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*PharmacyPrice
	for rows.Next() {
		var pp PharmacyPrice
		if err := rows.Scan(&pp.PharmacyID, &pp.PharmacyName, &pp.Price, &pp.Quantity); err != nil {
			return nil, err
		}
		result = append(result, &pp)
	}
	return result, nil
}

func (r *stockRepoPG) ListForPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*StockEntry, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM stock WHERE pharmacy_id = $1`, pharmacyID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, pharmacy_id, drug_id, quantity, price, updated_at
		FROM stock WHERE pharmacy_id = $1
		ORDER BY updated_at DESC LIMIT $2 OFFSET $3`,
		pharmacyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*StockEntry
	for rows.Next() {
		var e StockEntry
		if err := rows.Scan(&e.ID, &e.PharmacyID, &e.DrugID, &e.Quantity, &e.Price, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, &e)
	}
	return entries, total, nil
}
