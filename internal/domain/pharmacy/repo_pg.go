package pharmacy

import (
	"context"
	"fmt"

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

// -- Pharmacy Repository --

type pharmacyRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &pharmacyRepoPG{pool: pool}
}

func (r *pharmacyRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const pharmacyColumns = `p.id, p.name, p.phone, p.email, p.location_id, p.created_at, p.updated_at,
	l.id, l.address, l.city, l.postal_code, l.latitude, l.longitude, l.created_at`

const pharmacyFrom = ` FROM pharmacy p JOIN location l ON l.id = p.location_id`

func (r *pharmacyRepoPG) Create(ctx context.Context, p *Pharmacy) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy (id, name, phone, email, location_id)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.Phone, p.Email, p.LocationID,
	)
	return err
}

func (r *pharmacyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	return scanPharmacy(r.conn(ctx).QueryRow(ctx,
		`SELECT `+pharmacyColumns+pharmacyFrom+` WHERE p.id = $1`, id))
}

func (r *pharmacyRepoPG) Update(ctx context.Context, p *Pharmacy) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacy SET name = $2, phone = $3, email = $4, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Phone, p.Email,
	)
	return err
}

func (r *pharmacyRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM pharmacy WHERE id = $1`, id)
	return err
}

func (r *pharmacyRepoPG) List(ctx context.Context, limit, offset int) ([]*Pharmacy, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pharmacy`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+pharmacyColumns+pharmacyFrom+` ORDER BY p.name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var pharmacies []*Pharmacy
	for rows.Next() {
		p, err := scanPharmacy(rows)
		if err != nil {
			return nil, 0, err
		}
		pharmacies = append(pharmacies, p)
	}
	return pharmacies, total, nil
}

func (r *pharmacyRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Pharmacy, int, error) {
	query := `SELECT ` + pharmacyColumns + pharmacyFrom + ` WHERE 1=1`
	countQuery := `SELECT COUNT(*)` + pharmacyFrom + ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if name, ok := params["name"]; ok {
		clause := fmt.Sprintf(` AND p.name ILIKE $%d`, idx)
		query += clause
		countQuery += clause
		args = append(args, "%"+name+"%")
		idx++
	}
	if city, ok := params["city"]; ok {
		clause := fmt.Sprintf(` AND l.city ILIKE $%d`, idx)
		query += clause
		countQuery += clause
		args = append(args, "%"+city+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY p.name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var pharmacies []*Pharmacy
	for rows.Next() {
		p, err := scanPharmacy(rows)
		if err != nil {
			return nil, 0, err
		}
		pharmacies = append(pharmacies, p)
	}
	return pharmacies, total, nil
}

func scanPharmacy(row pgx.Row) (*Pharmacy, error) {
	var p Pharmacy
	var l Location
	err := row.Scan(
		&p.ID, &p.Name, &p.Phone, &p.Email, &p.LocationID, &p.CreatedAt, &p.UpdatedAt,
		&l.ID, &l.Address, &l.City, &l.PostalCode, &l.Latitude, &l.Longitude, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Location = &l
	return &p, nil
}

// -- Location Repository --

type locationRepoPG struct {
	pool *pgxpool.Pool
}

func NewLocationRepo(pool *pgxpool.Pool) LocationRepository {
	return &locationRepoPG{pool: pool}
}

func (r *locationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *locationRepoPG) Create(ctx context.Context, loc *Location) error {
	loc.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO location (id, address, city, postal_code, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		loc.ID, loc.Address, loc.City, loc.PostalCode, loc.Latitude, loc.Longitude,
	)
	return err
}

func (r *locationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	var l Location
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, address, city, postal_code, latitude, longitude, created_at
		FROM location WHERE id = $1`, id).Scan(
		&l.ID, &l.Address, &l.City, &l.PostalCode, &l.Latitude, &l.Longitude, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *locationRepoPG) Update(ctx context.Context, loc *Location) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE location SET address = $2, city = $3, postal_code = $4, latitude = $5, longitude = $6
		WHERE id = $1`,
		loc.ID, loc.Address, loc.City, loc.PostalCode, loc.Latitude, loc.Longitude,
	)
	return err
}

func (r *locationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM location WHERE id = $1`, id)
	return err
}
