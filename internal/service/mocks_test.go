package service

import (
	"context"
	"time"

	"rental-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendNewRentalNotice(ctx context.Context, rental *domain.Rental, lines []domain.RentalLine) error {
	args := m.Called(ctx, rental, lines)
	return args.Error(0)
}

func (m *MockEmailService) SendTeardownReminder(ctx context.Context, rentals []domain.Rental) error {
	args := m.Called(ctx, rentals)
	return args.Error(0)
}

func (m *MockEmailService) SendOutOfStockDigest(ctx context.Context, items []domain.Item) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) CountCustomers(ctx context.Context) (int32, error) {
	args := m.Called(ctx)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockReportRepo) CountItems(ctx context.Context) (int32, error) {
	args := m.Called(ctx)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockReportRepo) CountOutOfStock(ctx context.Context) (int32, error) {
	args := m.Called(ctx)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockReportRepo) CountRentals(ctx context.Context, statuses []domain.RentalStatus) (int32, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockReportRepo) SumRevenue(ctx context.Context, filter domain.RentalFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReportRepo) MonthlyRevenue(ctx context.Context, statuses []domain.RentalStatus, since time.Time) ([]domain.MonthlyRevenue, error) {
	args := m.Called(ctx, statuses, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthlyRevenue), args.Error(1)
}

func (m *MockReportRepo) ConditionRows(ctx context.Context, condition domain.LineCondition) ([]domain.ConditionRow, error) {
	args := m.Called(ctx, condition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConditionRow), args.Error(1)
}

// memCarts is an in-memory repository.CartRepository.
type memCarts map[string]map[int32]int32

func (c memCarts) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart := domain.NewCart()
	for id, q := range c[cartID] {
		cart.Items[id] = q
	}
	return cart, nil
}

func (c memCarts) Save(ctx context.Context, cartID string, cart *domain.Cart) error {
	items := make(map[int32]int32, len(cart.Items))
	for id, q := range cart.Items {
		items[id] = q
	}
	c[cartID] = items
	return nil
}

func (c memCarts) Delete(ctx context.Context, cartID string) error {
	delete(c, cartID)
	return nil
}
