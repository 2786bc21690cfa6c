package repository

import (
	"context"
	"time"

	"rental-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id int32) (*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	SetPhoto(ctx context.Context, id int32, photoKey string) error

	// AdjustQuantity applies quantity = quantity + delta in a single statement
	// and returns the new on-hand quantity. It fails with a *domain.StockError
	// when the result would be negative and with a *domain.ReferenceError when
	// the item does not exist.
	AdjustQuantity(ctx context.Context, id int32, delta int32) (int32, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int32) (*domain.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	TouchLastLogin(ctx context.Context, id int32, at time.Time) error
	List(ctx context.Context) ([]domain.Customer, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)

	// GetForUpdate reads a rental and locks its row until the surrounding
	// transaction ends. Ledger operations take this lock before touching the
	// rental's lines, so they run one at a time per rental.
	GetForUpdate(ctx context.Context, id int32) (*domain.Rental, error)
	Update(ctx context.Context, rental *domain.Rental) error
	UpdateStatus(ctx context.Context, id int32, status domain.RentalStatus) error
	SetTotalCharge(ctx context.Context, id int32, total decimal.Decimal) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error)
}

type RentalLineRepository interface {
	Create(ctx context.Context, line *domain.RentalLine) error
	GetByID(ctx context.Context, id int32) (*domain.RentalLine, error)
	GetForUpdate(ctx context.Context, id int32) (*domain.RentalLine, error)
	Update(ctx context.Context, line *domain.RentalLine) error
	Delete(ctx context.Context, id int32) error
	ListByRental(ctx context.Context, rentalID int32) ([]domain.RentalLine, error)

	// MarkStockReturned stamps a line whose stock has not been returned yet.
	// It reports false when the line was already stamped, in which case the
	// caller must not return the stock again.
	MarkStockReturned(ctx context.Context, id int32, at time.Time) (bool, error)
	RentalIDsByItem(ctx context.Context, itemID int32) ([]int32, error)

	// SumSubtotals returns the sum of subtotals of a rental's lines and how
	// many lines contributed to it.
	SumSubtotals(ctx context.Context, rentalID int32) (decimal.Decimal, int, error)
}

// ReportRepository holds read-only aggregate queries.
type ReportRepository interface {
	CountCustomers(ctx context.Context) (int32, error)
	CountItems(ctx context.Context) (int32, error)
	CountOutOfStock(ctx context.Context) (int32, error)
	CountRentals(ctx context.Context, statuses []domain.RentalStatus) (int32, error)
	SumRevenue(ctx context.Context, filter domain.RentalFilter) (decimal.Decimal, error)
	MonthlyRevenue(ctx context.Context, statuses []domain.RentalStatus, since time.Time) ([]domain.MonthlyRevenue, error)
	ConditionRows(ctx context.Context, condition domain.LineCondition) ([]domain.ConditionRow, error)
}

// CartRepository keeps session carts outside the database.
type CartRepository interface {
	Get(ctx context.Context, cartID string) (*domain.Cart, error)
	Save(ctx context.Context, cartID string, cart *domain.Cart) error
	Delete(ctx context.Context, cartID string) error
}

// Repos groups the repositories that share one unit of work.
type Repos struct {
	Items     ItemRepository
	Customers CustomerRepository
	Rentals   RentalRepository
	Lines     RentalLineRepository
}

// Transactor runs fn against repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos Repos) error) error
}
