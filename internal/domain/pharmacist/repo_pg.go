package pharmacist

import (
	"context"

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

type pharmacistRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &pharmacistRepoPG{pool: pool}
}

func (r *pharmacistRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const pharmacistColumns = `id, first_name, last_name, email, license_number, role,
	rating_sum, rating_count, location_id, first_login, created_at, updated_at`

func (r *pharmacistRepoPG) Create(ctx context.Context, p *Pharmacist) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacist (id, first_name, last_name, email, license_number, role, rating_sum, rating_count, location_id, first_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.FirstName, p.LastName, p.Email, p.LicenseNumber, p.Role, p.RatingSum, p.RatingCount, p.LocationID, p.FirstLogin,
	)
	return err
}

func (r *pharmacistRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Pharmacist, error) {
	return scanPharmacist(r.conn(ctx).QueryRow(ctx,
		`SELECT `+pharmacistColumns+` FROM pharmacist WHERE id = $1`, id))
}

func (r *pharmacistRepoPG) Update(ctx context.Context, p *Pharmacist) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacist SET first_name = $2, last_name = $3, email = $4, license_number = $5, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Email, p.LicenseNumber,
	)
	return err
}

func (r *pharmacistRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM pharmacist WHERE id = $1`, id)
	return err
}

func (r *pharmacistRepoPG) List(ctx context.Context, limit, offset int) ([]*Pharmacist, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pharmacist`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+pharmacistColumns+` FROM pharmacist ORDER BY last_name, first_name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPharmacists(rows, total)
}

func (r *pharmacistRepoPG) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Pharmacist, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM pharmacist p
		JOIN employment e ON e.pharmacist_id = p.id
		WHERE e.pharmacy_id = $1 AND e.end_date IS NULL`, pharmacyID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, p.first_name, p.last_name, p.email, p.license_number, p.role,
			p.rating_sum, p.rating_count, p.location_id, p.first_login, p.created_at, p.updated_at
		FROM pharmacist p
		JOIN employment e ON e.pharmacist_id = p.id
		WHERE e.pharmacy_id = $1 AND e.end_date IS NULL
		ORDER BY p.last_name, p.first_name LIMIT $2 OFFSET $3`,
		pharmacyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPharmacists(rows, total)
}

func (r *pharmacistRepoPG) AddRating(ctx context.Context, id uuid.UUID, rating float64) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacist SET rating_sum = rating_sum + $2, rating_count = rating_count + 1, updated_at = NOW()
		WHERE id = $1`, id, rating)
	return err
}

func (r *pharmacistRepoPG) CreateEmployment(ctx context.Context, e *Employment) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO employment (id, pharmacist_id, pharmacy_id, start_date, end_date, shift_start, shift_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.PharmacistID, e.PharmacyID, e.StartDate, e.EndDate, e.ShiftStart, e.ShiftEnd,
	)
	return err
}

func (r *pharmacistRepoPG) DeleteEmploymentsFor(ctx context.Context, pharmacistID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM employment WHERE pharmacist_id = $1`, pharmacistID)
	return err
}

func (r *pharmacistRepoPG) DeleteNotificationsFor(ctx context.Context, pharmacistID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM user_notification WHERE user_id = $1`, pharmacistID)
	return err
}

func (r *pharmacistRepoPG) CountScheduled(ctx context.Context, pharmacistID uuid.UUID) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE pharmacist_id = $1 AND status = 'scheduled'`, pharmacistID).Scan(&count)
	return count, err
}

func (r *pharmacistRepoPG) CountScheduledAt(ctx context.Context, pharmacistID, pharmacyID uuid.UUID) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE pharmacist_id = $1 AND pharmacy_id = $2 AND status = 'scheduled'`,
		pharmacistID, pharmacyID).Scan(&count)
	return count, err
}

func scanPharmacist(row pgx.Row) (*Pharmacist, error) {
	var p Pharmacist
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.LicenseNumber, &p.Role,
		&p.RatingSum, &p.RatingCount, &p.LocationID, &p.FirstLogin, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPharmacists(rows pgx.Rows, total int) ([]*Pharmacist, int, error) {
	var pharmacists []*Pharmacist
	for rows.Next() {
		p, err := scanPharmacist(rows)
		if err != nil {
			return nil, 0, err
		}
		pharmacists = append(pharmacists, p)
	}
	return pharmacists, total, nil
}
