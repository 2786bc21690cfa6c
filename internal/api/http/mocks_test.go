package http

import (
	"context"
	"io"

	"rental-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListAvailable(ctx context.Context, query, size string) ([]domain.Item, error) {
	args := m.Called(ctx, query, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}

func (m *MockCatalogService) GetItem(ctx context.Context, id int32) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*domain.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, cartID string, itemID, quantity int32) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, cartID, itemID, quantity))
}

func (m *MockCartService) SetQuantity(ctx context.Context, cartID string, itemID, quantity int32) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, cartID, itemID, quantity))
}

func (m *MockCartService) Remove(ctx context.Context, cartID string, itemID int32) (*domain.Cart, error) {
	return m.cart(m.Called(ctx, cartID, itemID))
}

func (m *MockCartService) View(ctx context.Context, cartID string) (*domain.CartView, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartView), args.Error(1)
}

func (m *MockCartService) Count(ctx context.Context, cartID string) (int32, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, cartID string) error {
	return m.Called(ctx, cartID).Error(0)
}

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Submit(ctx context.Context, customerID int32, cartID string, form domain.CheckoutForm) (*domain.Rental, error) {
	args := m.Called(ctx, customerID, cartID, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockCheckoutService) ListMyRentals(ctx context.Context, customerID int32) ([]domain.Rental, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockCheckoutService) GetMyRental(ctx context.Context, customerID, rentalID int32) (*domain.Rental, []domain.RentalLine, error) {
	args := m.Called(ctx, customerID, rentalID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Rental), args.Get(1).([]domain.RentalLine), args.Error(2)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) rental(args mock.Arguments) (*domain.Rental, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockAdminService) line(args mock.Arguments) (*domain.RentalLine, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalLine), args.Error(1)
}

func (m *MockAdminService) ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockAdminService) GetRental(ctx context.Context, rentalID int32) (*domain.Rental, []domain.RentalLine, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Rental), args.Get(1).([]domain.RentalLine), args.Error(2)
}

func (m *MockAdminService) CreateRental(ctx context.Context, draft *domain.Rental, lines []domain.LineRequest) (*domain.Rental, error) {
	return m.rental(m.Called(ctx, draft, lines))
}

func (m *MockAdminService) UpdateRental(ctx context.Context, header *domain.Rental, batch domain.LineBatch) (*domain.Rental, error) {
	return m.rental(m.Called(ctx, header, batch))
}

func (m *MockAdminService) ApplyLines(ctx context.Context, rentalID int32, batch domain.LineBatch) (*domain.Rental, error) {
	return m.rental(m.Called(ctx, rentalID, batch))
}

func (m *MockAdminService) AddLine(ctx context.Context, rentalID int32, req domain.LineRequest) (*domain.RentalLine, error) {
	return m.line(m.Called(ctx, rentalID, req))
}

func (m *MockAdminService) EditLine(ctx context.Context, edit domain.LineEdit) (*domain.RentalLine, error) {
	return m.line(m.Called(ctx, edit))
}

func (m *MockAdminService) RemoveLine(ctx context.Context, lineID int32) error {
	return m.Called(ctx, lineID).Error(0)
}

func (m *MockAdminService) ChangeStatus(ctx context.Context, rentalID int32, status domain.RentalStatus) (*domain.Rental, error) {
	return m.rental(m.Called(ctx, rentalID, status))
}

func (m *MockAdminService) DeleteRental(ctx context.Context, rentalID int32) error {
	return m.Called(ctx, rentalID).Error(0)
}

func (m *MockAdminService) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}

func (m *MockAdminService) CreateItem(ctx context.Context, item *domain.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockAdminService) UpdateItem(ctx context.Context, item *domain.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockAdminService) DeleteItem(ctx context.Context, itemID int32) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *MockAdminService) UploadItemPhoto(ctx context.Context, itemID int32, contentType string, photo io.Reader) (*domain.Item, error) {
	args := m.Called(ctx, itemID, contentType, photo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockAdminService) AdjustStock(ctx context.Context, itemID, delta int32, reason string) (*domain.Item, error) {
	args := m.Called(ctx, itemID, delta, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockAdminService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

func (m *MockReportService) RentalReport(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockReportService) FinancialReport(ctx context.Context, filter domain.RentalFilter) (*domain.FinancialReport, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialReport), args.Error(1)
}

func (m *MockReportService) ConditionReport(ctx context.Context, condition domain.LineCondition) ([]domain.ConditionRow, error) {
	args := m.Called(ctx, condition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConditionRow), args.Error(1)
}

func (m *MockReportService) InventoryReport(ctx context.Context) ([]domain.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}

func (m *MockReportService) CustomerReport(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, name, phone, password, confirm string) (*domain.Customer, string, error) {
	args := m.Called(ctx, name, phone, password, confirm)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.Customer), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, phone, password string) (*domain.Customer, string, error) {
	args := m.Called(ctx, phone, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.Customer), args.String(1), args.Error(2)
}

func (m *MockAuthService) StaffLogin(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}
