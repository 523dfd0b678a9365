package reservation

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

type reservationRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &reservationRepoPG{pool: pool}
}

func (r *reservationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const reservationColumns = `id, patient_id, pharmacy_id, drug_id, price, pickup_date, status, created_at, updated_at`

func (r *reservationRepoPG) Create(ctx context.Context, res *Reservation) error {
	res.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO reservation (id, patient_id, pharmacy_id, drug_id, price, pickup_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.ID, res.PatientID, res.PharmacyID, res.DrugID, res.Price, res.PickupDate, res.Status,
	)
	return err
}

func (r *reservationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	return scanReservation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservation WHERE id = $1`, id))
}

func (r *reservationRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE reservation SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *reservationRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, status Status, limit, offset int) ([]*Reservation, int, error) {
	return r.listBy(ctx, `patient_id`, patientID, status, limit, offset)
}

func (r *reservationRepoPG) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, status Status, limit, offset int) ([]*Reservation, int, error) {
	return r.listBy(ctx, `pharmacy_id`, pharmacyID, status, limit, offset)
}

func (r *reservationRepoPG) listBy(ctx context.Context, column string, id uuid.UUID, status Status, limit, offset int) ([]*Reservation, int, error) {
	where := column + ` = $1`
	args := []interface{}{id}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM reservation WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	n := len(args)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT `+reservationColumns+` FROM reservation WHERE `+where+`
		 ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n+1, n+2), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reservations []*Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, err
		}
		reservations = append(reservations, res)
	}
	return reservations, total, nil
}

func scanReservation(row pgx.Row) (*Reservation, error) {
	var res Reservation
	err := row.Scan(
		&res.ID, &res.PatientID, &res.PharmacyID, &res.DrugID, &res.Price,
		&res.PickupDate, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
