package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rental-backend/internal/domain"
	"rental-backend/internal/logger"
	"rental-backend/internal/repository"

	_ "github.com/lib/pq"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so every repository can run
// inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.ItemRepository
	repository.CustomerRepository
	repository.RentalRepository
	repository.RentalLineRepository
	repository.ReportRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                   db,
		ItemRepository:       NewItemRepository(db),
		CustomerRepository:   NewCustomerRepository(db),
		RentalRepository:     NewRentalRepository(db),
		RentalLineRepository: NewRentalLineRepository(db),
		ReportRepository:     NewReportRepository(db),
	}
}

// Repos returns the non-transactional repositories.
func (s *Store) Repos() repository.Repos {
	return repository.Repos{
		Items:     s.ItemRepository,
		Customers: s.CustomerRepository,
		Rentals:   s.RentalRepository,
		Lines:     s.RentalLineRepository,
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(repos repository.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	repos := repository.Repos{
		Items:     newItemRepository(tx),
		Customers: newCustomerRepository(tx),
		Rentals:   newRentalRepository(tx),
		Lines:     newRentalLineRepository(tx),
	}
	if err := fn(repos); err != nil {
		logger.Debug("Rolling back transaction", "error", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// notFound converts sql.ErrNoRows into a reference error for entity.
func notFound(err error, entity string, id int32) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewReferenceError(entity, id)
	}
	return err
}

// execOne runs an UPDATE/DELETE expected to touch exactly one row.
func execOne(ctx context.Context, db dbtx, entity string, id int32, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewReferenceError(entity, id)
	}
	return nil
}
