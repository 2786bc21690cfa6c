package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/logger"
	"rental-backend/internal/repository"
)

const itemColumns = `id, name, unit_price, quantity, COALESCE(size, ''), COALESCE(description, ''), COALESCE(photo_key, ''), created_on, updated_on`

type itemRepository struct {
	db dbtx
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return newItemRepository(db)
}

func newItemRepository(db dbtx) *itemRepository {
	return &itemRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	it := &domain.Item{}
	err := row.Scan(&it.ID, &it.Name, &it.UnitPrice, &it.Quantity, &it.Size, &it.Description, &it.PhotoKey, &it.CreatedOn, &it.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *itemRepository) Create(ctx context.Context, it *domain.Item) error {
	query := `INSERT INTO items (name, unit_price, quantity, size, description, photo_key, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	it.CreatedOn = now
	it.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query, it.Name, it.UnitPrice, it.Quantity, it.Size, it.Description, it.PhotoKey, now, now).Scan(&it.ID)
}

func (r *itemRepository) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "item", id)
	}
	return it, nil
}

// Update writes the staff-editable fields. Quantity is deliberately absent:
// on-hand stock only moves through AdjustQuantity.
func (r *itemRepository) Update(ctx context.Context, it *domain.Item) error {
	query := `UPDATE items SET name=$1, unit_price=$2, size=$3, description=$4, updated_on=$5 WHERE id=$6`
	it.UpdatedOn = time.Now()
	return execOne(ctx, r.db, "item", it.ID, query, it.Name, it.UnitPrice, it.Size, it.Description, it.UpdatedOn, it.ID)
}

func (r *itemRepository) Delete(ctx context.Context, id int32) error {
	return execOne(ctx, r.db, "item", id, `DELETE FROM items WHERE id = $1`, id)
}

func (r *itemRepository) SetPhoto(ctx context.Context, id int32, photoKey string) error {
	query := `UPDATE items SET photo_key=$1, updated_on=$2 WHERE id=$3`
	return execOne(ctx, r.db, "item", id, query, photoKey, time.Now(), id)
}

func (r *itemRepository) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`

	var args []any
	argIdx := 1
	if filter.InStockOnly {
		query += " AND quantity > 0"
	}
	if filter.Query != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Query+"%")
		argIdx++
	}
	if filter.Size != "" {
		query += fmt.Sprintf(" AND size = $%d", argIdx)
		args = append(args, filter.Size)
		argIdx++
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *itemRepository) AdjustQuantity(ctx context.Context, id int32, delta int32) (int32, error) {
	query := `UPDATE items SET quantity = quantity + $1, updated_on = NOW()
	          WHERE id = $2 AND quantity + $1 >= 0 RETURNING quantity`
	logger.DatabaseCall("AdjustQuantity", query, "item_id", id, "delta", delta)

	var onHand int32
	err := r.db.QueryRowContext(ctx, query, delta, id).Scan(&onHand)
	if err == nil {
		logger.DatabaseResult("AdjustQuantity", 1, nil, "item_id", id, "on_hand", onHand)
		return onHand, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("AdjustQuantity", 0, err, "item_id", id)
		return 0, err
	}

	// No row matched: either the item is gone or the guard refused the change.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM items WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, domain.NewReferenceError("item", id)
	}
	return 0, &domain.StockError{ItemID: id, Requested: delta}
}
