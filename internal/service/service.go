package service

import (
	"context"
	"io"

	"rental-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// LedgerService keeps item stock and rental totals consistent with rental
// lines. Every method runs as one all-or-nothing transaction.
type LedgerService interface {
	CreateLine(ctx context.Context, rentalID, itemID, quantity int32) (*domain.RentalLine, error)
	UpdateLine(ctx context.Context, lineID, quantity int32, condition domain.LineCondition) (*domain.RentalLine, error)
	DeleteLine(ctx context.Context, lineID int32) error
	RecomputeTotal(ctx context.Context, rentalID int32) (decimal.Decimal, error)
	TransitionStatus(ctx context.Context, rentalID int32, status domain.RentalStatus) (*domain.Rental, error)
	TransitionStatusFrom(ctx context.Context, rentalID int32, from, to domain.RentalStatus) (*domain.Rental, error)
	Restock(ctx context.Context, itemID, delta int32, reason string) (*domain.Item, error)
	BatchApply(ctx context.Context, rentalID int32, batch domain.LineBatch) (*domain.Rental, error)
	OpenRental(ctx context.Context, draft *domain.Rental, lines []domain.LineRequest) (*domain.Rental, error)
	DeleteRental(ctx context.Context, rentalID int32) error
	Run(ctx context.Context, fn func(book *Book) error) error
}

type CatalogService interface {
	ListAvailable(ctx context.Context, query, size string) ([]domain.Item, error)
	GetItem(ctx context.Context, id int32) (*domain.Item, error)
}

type CartService interface {
	Add(ctx context.Context, cartID string, itemID, quantity int32) (*domain.Cart, error)
	SetQuantity(ctx context.Context, cartID string, itemID, quantity int32) (*domain.Cart, error)
	Remove(ctx context.Context, cartID string, itemID int32) (*domain.Cart, error)
	View(ctx context.Context, cartID string) (*domain.CartView, error)
	Count(ctx context.Context, cartID string) (int32, error)
	Clear(ctx context.Context, cartID string) error
}

type CheckoutService interface {
	Submit(ctx context.Context, customerID int32, cartID string, form domain.CheckoutForm) (*domain.Rental, error)
	ListMyRentals(ctx context.Context, customerID int32) ([]domain.Rental, error)
	GetMyRental(ctx context.Context, customerID, rentalID int32) (*domain.Rental, []domain.RentalLine, error)
}

type AdminService interface {
	ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error)
	GetRental(ctx context.Context, rentalID int32) (*domain.Rental, []domain.RentalLine, error)
	CreateRental(ctx context.Context, draft *domain.Rental, lines []domain.LineRequest) (*domain.Rental, error)
	UpdateRental(ctx context.Context, header *domain.Rental, batch domain.LineBatch) (*domain.Rental, error)
	ApplyLines(ctx context.Context, rentalID int32, batch domain.LineBatch) (*domain.Rental, error)
	AddLine(ctx context.Context, rentalID int32, req domain.LineRequest) (*domain.RentalLine, error)
	EditLine(ctx context.Context, edit domain.LineEdit) (*domain.RentalLine, error)
	RemoveLine(ctx context.Context, lineID int32) error
	ChangeStatus(ctx context.Context, rentalID int32, status domain.RentalStatus) (*domain.Rental, error)
	DeleteRental(ctx context.Context, rentalID int32) error

	ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	CreateItem(ctx context.Context, item *domain.Item) error
	UpdateItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, itemID int32) error
	UploadItemPhoto(ctx context.Context, itemID int32, contentType string, photo io.Reader) (*domain.Item, error)
	AdjustStock(ctx context.Context, itemID, delta int32, reason string) (*domain.Item, error)

	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}

type ReportService interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	RentalReport(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error)
	FinancialReport(ctx context.Context, filter domain.RentalFilter) (*domain.FinancialReport, error)
	ConditionReport(ctx context.Context, condition domain.LineCondition) ([]domain.ConditionRow, error)
	InventoryReport(ctx context.Context) ([]domain.Item, error)
	CustomerReport(ctx context.Context) ([]domain.Customer, error)
}

type AuthService interface {
	Register(ctx context.Context, name, phone, password, confirm string) (*domain.Customer, string, error)
	Login(ctx context.Context, phone, password string) (*domain.Customer, string, error)
	StaffLogin(ctx context.Context, username, password string) (string, error)
}

type EmailService interface {
	SendNewRentalNotice(ctx context.Context, rental *domain.Rental, lines []domain.RentalLine) error
	SendTeardownReminder(ctx context.Context, rentals []domain.Rental) error
	SendOutOfStockDigest(ctx context.Context, items []domain.Item) error
}
