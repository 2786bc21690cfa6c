package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/repository"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type reportRepository struct {
	db dbtx
}

func NewReportRepository(db *sql.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) count(ctx context.Context, query string, args ...any) (int32, error) {
	var n int32
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *reportRepository) CountCustomers(ctx context.Context) (int32, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM customers`)
}

func (r *reportRepository) CountItems(ctx context.Context) (int32, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM items`)
}

func (r *reportRepository) CountOutOfStock(ctx context.Context) (int32, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM items WHERE quantity = 0`)
}

func (r *reportRepository) CountRentals(ctx context.Context, statuses []domain.RentalStatus) (int32, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM rentals WHERE status = ANY($1)`, pq.Array(statusStrings(statuses)))
}

// SumRevenue totals charges of rentals matching filter. Rentals whose total
// has never been computed count as zero.
func (r *reportRepository) SumRevenue(ctx context.Context, filter domain.RentalFilter) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(total_charge), 0) FROM rentals WHERE 1=1`

	var args []any
	argIdx := 1
	if len(filter.Statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", argIdx)
		args = append(args, pq.Array(statusStrings(filter.Statuses)))
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND ordered_on >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND ordered_on < $%d", argIdx)
		args = append(args, filter.To.AddDate(0, 0, 1))
		argIdx++
	}

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total.Round(2), nil
}

func (r *reportRepository) MonthlyRevenue(ctx context.Context, statuses []domain.RentalStatus, since time.Time) ([]domain.MonthlyRevenue, error) {
	query := `SELECT date_trunc('month', ordered_on) AS month, COALESCE(SUM(total_charge), 0)
	          FROM rentals WHERE status = ANY($1) AND ordered_on >= $2
	          GROUP BY month ORDER BY month`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(statusStrings(statuses)), since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MonthlyRevenue
	for rows.Next() {
		var m domain.MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Total); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *reportRepository) ConditionRows(ctx context.Context, condition domain.LineCondition) ([]domain.ConditionRow, error) {
	query := `SELECT l.rental_id, r.event_date, i.name, l.quantity, l.condition
	          FROM rental_lines l
	          JOIN rentals r ON r.id = l.rental_id
	          JOIN items i ON i.id = l.item_id`
	var args []any
	if condition != "" {
		query += ` WHERE l.condition = $1`
		args = append(args, string(condition))
	}
	query += ` ORDER BY r.event_date DESC, l.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ConditionRow
	for rows.Next() {
		var row domain.ConditionRow
		var cond string
		if err := rows.Scan(&row.RentalID, &row.EventDate, &row.ItemName, &row.Quantity, &cond); err != nil {
			return nil, err
		}
		row.Condition = domain.LineCondition(cond)
		out = append(out, row)
	}
	return out, rows.Err()
}
