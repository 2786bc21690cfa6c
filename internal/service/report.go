package service

import (
	"context"
	"fmt"
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/repository"
	"rental-backend/internal/utils"

	"github.com/shopspring/decimal"
)

// dashboardMonths is how many monthly revenue buckets the dashboard shows.
const dashboardMonths = 6

type reportService struct {
	reports      repository.ReportRepository
	itemRepo     repository.ItemRepository
	customerRepo repository.CustomerRepository
	rentalRepo   repository.RentalRepository
	now          func() time.Time
}

func NewReportService(reports repository.ReportRepository, repos repository.Repos) ReportService {
	return &reportService{
		reports:      reports,
		itemRepo:     repos.Items,
		customerRepo: repos.Customers,
		rentalRepo:   repos.Rentals,
		now:          time.Now,
	}
}

func (s *reportService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	var (
		d   domain.Dashboard
		err error
	)
	if d.TotalCustomers, err = s.reports.CountCustomers(ctx); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if d.TotalItems, err = s.reports.CountItems(ctx); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	if d.OutOfStockItems, err = s.reports.CountOutOfStock(ctx); err != nil {
		return nil, fmt.Errorf("failed to count out of stock items: %w", err)
	}
	if d.TotalRentals, err = s.reports.CountRentals(ctx, domain.SuccessfulStatuses); err != nil {
		return nil, fmt.Errorf("failed to count rentals: %w", err)
	}
	if d.PendingRentals, err = s.reports.CountRentals(ctx, []domain.RentalStatus{domain.RentalStatusPending}); err != nil {
		return nil, fmt.Errorf("failed to count pending rentals: %w", err)
	}
	if d.TotalRevenue, err = s.reports.SumRevenue(ctx, domain.RentalFilter{Statuses: domain.SuccessfulStatuses}); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	since := utils.MonthsBack(s.now().UTC(), dashboardMonths)
	monthly, err := s.reports.MonthlyRevenue(ctx, domain.SuccessfulStatuses, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly revenue: %w", err)
	}
	d.MonthlyRevenue = fillMonths(since, dashboardMonths, monthly)
	return &d, nil
}

// fillMonths returns exactly n consecutive buckets starting at since, with
// months that had no revenue set to zero.
func fillMonths(since time.Time, n int, rows []domain.MonthlyRevenue) []domain.MonthlyRevenue {
	byMonth := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		byMonth[r.Month.Format("2006-01")] = r.Total
	}
	out := make([]domain.MonthlyRevenue, n)
	for i := 0; i < n; i++ {
		month := since.AddDate(0, i, 0)
		total, ok := byMonth[month.Format("2006-01")]
		if !ok {
			total = decimal.Zero
		}
		out[i] = domain.MonthlyRevenue{Month: month, Total: total}
	}
	return out
}

func (s *reportService) RentalReport(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "unknown status")
	}
	return s.rentalRepo.List(ctx, filter)
}

// FinancialReport lists Confirmed and Completed rentals in the order-date
// range of filter, with their summed charge.
func (s *reportService) FinancialReport(ctx context.Context, filter domain.RentalFilter) (*domain.FinancialReport, error) {
	filter.Status = ""
	filter.Statuses = domain.SuccessfulStatuses
	rentals, err := s.rentalRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, r := range rentals {
		if r.TotalCharge.Valid {
			total = total.Add(r.TotalCharge.Decimal)
		}
	}
	return &domain.FinancialReport{Rentals: rentals, Total: total.Round(utils.MoneyPlaces)}, nil
}

func (s *reportService) ConditionReport(ctx context.Context, condition domain.LineCondition) ([]domain.ConditionRow, error) {
	if condition != "" && !condition.Valid() {
		return nil, domain.NewValidationError("condition", "unknown condition")
	}
	return s.reports.ConditionRows(ctx, condition)
}

func (s *reportService) InventoryReport(ctx context.Context) ([]domain.Item, error) {
	return s.itemRepo.List(ctx, domain.ItemFilter{})
}

func (s *reportService) CustomerReport(ctx context.Context) ([]domain.Customer, error) {
	return s.customerRepo.List(ctx)
}
