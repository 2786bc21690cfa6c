package postgres

import (
	"context"
	"database/sql"
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/logger"
	"rental-backend/internal/repository"

	"github.com/shopspring/decimal"
)

const lineColumns = `l.id, l.rental_id, l.item_id, i.name, l.quantity, l.condition, l.problem_count, l.subtotal,
	l.stock_returned_on, l.created_on, l.updated_on`

type rentalLineRepository struct {
	db dbtx
}

func NewRentalLineRepository(db *sql.DB) repository.RentalLineRepository {
	return newRentalLineRepository(db)
}

func newRentalLineRepository(db dbtx) *rentalLineRepository {
	return &rentalLineRepository{db: db}
}

func scanLine(row rowScanner) (*domain.RentalLine, error) {
	l := &domain.RentalLine{}
	var condition string
	err := row.Scan(&l.ID, &l.RentalID, &l.ItemID, &l.ItemName, &l.Quantity, &condition, &l.ProblemCount, &l.Subtotal,
		&l.StockReturnedOn, &l.CreatedOn, &l.UpdatedOn)
	if err != nil {
		return nil, err
	}
	l.Condition = domain.LineCondition(condition)
	return l, nil
}

func (r *rentalLineRepository) Create(ctx context.Context, l *domain.RentalLine) error {
	query := `INSERT INTO rental_lines (rental_id, item_id, quantity, condition, problem_count, subtotal, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	l.CreatedOn = now
	l.UpdatedOn = now
	if l.Condition == "" {
		l.Condition = domain.LineConditionGood
	}
	return r.db.QueryRowContext(ctx, query,
		l.RentalID, l.ItemID, l.Quantity, string(l.Condition), l.ProblemCount, l.Subtotal, now, now,
	).Scan(&l.ID)
}

func (r *rentalLineRepository) GetByID(ctx context.Context, id int32) (*domain.RentalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM rental_lines l JOIN items i ON i.id = l.item_id WHERE l.id = $1`
	l, err := scanLine(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "rental line", id)
	}
	return l, nil
}

func (r *rentalLineRepository) GetForUpdate(ctx context.Context, id int32) (*domain.RentalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM rental_lines l JOIN items i ON i.id = l.item_id
	          WHERE l.id = $1 FOR UPDATE OF l`
	l, err := scanLine(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "rental line", id)
	}
	return l, nil
}

func (r *rentalLineRepository) Update(ctx context.Context, l *domain.RentalLine) error {
	query := `UPDATE rental_lines SET item_id=$1, quantity=$2, condition=$3, problem_count=$4, subtotal=$5, updated_on=$6
	          WHERE id=$7`
	l.UpdatedOn = time.Now()
	return execOne(ctx, r.db, "rental line", l.ID, query,
		l.ItemID, l.Quantity, string(l.Condition), l.ProblemCount, l.Subtotal, l.UpdatedOn, l.ID)
}

func (r *rentalLineRepository) Delete(ctx context.Context, id int32) error {
	return execOne(ctx, r.db, "rental line", id, `DELETE FROM rental_lines WHERE id = $1`, id)
}

func (r *rentalLineRepository) ListByRental(ctx context.Context, rentalID int32) ([]domain.RentalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM rental_lines l JOIN items i ON i.id = l.item_id
	          WHERE l.rental_id = $1 ORDER BY l.id`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.RentalLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *l)
	}
	return lines, rows.Err()
}

func (r *rentalLineRepository) MarkStockReturned(ctx context.Context, id int32, at time.Time) (bool, error) {
	query := `UPDATE rental_lines SET stock_returned_on=$1, updated_on=$1 WHERE id=$2 AND stock_returned_on IS NULL`
	logger.DatabaseCall("MarkStockReturned", query, "line_id", id)
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		logger.DatabaseResult("MarkStockReturned", 0, err, "line_id", id)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	logger.DatabaseResult("MarkStockReturned", n, nil, "line_id", id)
	return n == 1, nil
}

func (r *rentalLineRepository) SumSubtotals(ctx context.Context, rentalID int32) (decimal.Decimal, int, error) {
	var total decimal.Decimal
	var count int
	query := `SELECT COALESCE(SUM(subtotal), 0), COUNT(*) FROM rental_lines WHERE rental_id = $1`
	if err := r.db.QueryRowContext(ctx, query, rentalID).Scan(&total, &count); err != nil {
		return decimal.Zero, 0, err
	}
	return total.Round(2), count, nil
}

func (r *rentalLineRepository) RentalIDsByItem(ctx context.Context, itemID int32) ([]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT rental_id FROM rental_lines WHERE item_id = $1 ORDER BY rental_id`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
