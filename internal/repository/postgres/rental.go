package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/logger"
	"rental-backend/internal/repository"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const rentalColumns = `r.id, r.customer_id, r.ordered_on, r.event_date, r.duration_days, r.total_charge, r.status,
	COALESCE(r.feedback, ''), COALESCE(r.install_address, ''), r.teardown_date, r.created_on, r.updated_on,
	c.name, c.phone`

type rentalRepository struct {
	db dbtx
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return newRentalRepository(db)
}

func newRentalRepository(db dbtx) *rentalRepository {
	return &rentalRepository{db: db}
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{Customer: &domain.Customer{}}
	var status string
	err := row.Scan(&rt.ID, &rt.CustomerID, &rt.OrderedOn, &rt.EventDate, &rt.DurationDays, &rt.TotalCharge, &status,
		&rt.Feedback, &rt.InstallAddress, &rt.TeardownDate, &rt.CreatedOn, &rt.UpdatedOn,
		&rt.Customer.Name, &rt.Customer.Phone)
	if err != nil {
		return nil, err
	}
	rt.Status = domain.RentalStatus(status)
	rt.Customer.ID = rt.CustomerID
	return rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (customer_id, ordered_on, event_date, duration_days, total_charge, status,
	          feedback, install_address, teardown_date, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	now := time.Now()
	rt.CreatedOn = now
	rt.UpdatedOn = now
	if rt.OrderedOn.IsZero() {
		rt.OrderedOn = now
	}
	return r.db.QueryRowContext(ctx, query,
		rt.CustomerID, rt.OrderedOn, rt.EventDate, rt.DurationDays, rt.TotalCharge, string(rt.Status),
		rt.Feedback, rt.InstallAddress, rt.TeardownDate, now, now,
	).Scan(&rt.ID)
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals r JOIN customers c ON c.id = r.customer_id WHERE r.id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "rental", id)
	}
	return rt, nil
}

func (r *rentalRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals r JOIN customers c ON c.id = r.customer_id
	          WHERE r.id = $1 FOR UPDATE OF r`
	logger.DatabaseCall("LockRental", query, "rental_id", id)
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "rental", id)
	}
	return rt, nil
}

// Update writes header fields only. Status and total charge have their own
// writers so the ledger stays the single place that moves them.
func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	query := `UPDATE rentals SET event_date=$1, duration_days=$2, feedback=$3, install_address=$4,
	          teardown_date=$5, updated_on=$6 WHERE id=$7`
	rt.UpdatedOn = time.Now()
	return execOne(ctx, r.db, "rental", rt.ID, query,
		rt.EventDate, rt.DurationDays, rt.Feedback, rt.InstallAddress, rt.TeardownDate, rt.UpdatedOn, rt.ID)
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, id int32, status domain.RentalStatus) error {
	query := `UPDATE rentals SET status=$1, updated_on=$2 WHERE id=$3`
	logger.DatabaseCall("UpdateRentalStatus", query, "rental_id", id, "status", status)
	return execOne(ctx, r.db, "rental", id, query, string(status), time.Now(), id)
}

func (r *rentalRepository) SetTotalCharge(ctx context.Context, id int32, total decimal.Decimal) error {
	query := `UPDATE rentals SET total_charge=$1, updated_on=$2 WHERE id=$3`
	return execOne(ctx, r.db, "rental", id, query, total.Round(2), time.Now(), id)
}

func (r *rentalRepository) Delete(ctx context.Context, id int32) error {
	return execOne(ctx, r.db, "rental", id, `DELETE FROM rentals WHERE id = $1`, id)
}

func (r *rentalRepository) List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals r JOIN customers c ON c.id = r.customer_id WHERE 1=1`

	var args []any
	argIdx := 1
	if filter.Status != "" {
		query += fmt.Sprintf(" AND r.status = $%d", argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if len(filter.Statuses) > 0 {
		query += fmt.Sprintf(" AND r.status = ANY($%d)", argIdx)
		args = append(args, pq.Array(statusStrings(filter.Statuses)))
		argIdx++
	}
	if filter.CustomerID != 0 {
		query += fmt.Sprintf(" AND r.customer_id = $%d", argIdx)
		args = append(args, filter.CustomerID)
		argIdx++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND r.ordered_on >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND r.ordered_on < $%d", argIdx)
		args = append(args, filter.To.AddDate(0, 0, 1))
		argIdx++
	}
	query += " ORDER BY r.ordered_on DESC, r.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func statusStrings(statuses []domain.RentalStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
