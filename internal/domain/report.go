package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MonthlyRevenue struct {
	Month time.Time       `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type Dashboard struct {
	TotalCustomers  int32            `json:"total_customers"`
	TotalItems      int32            `json:"total_items"`
	TotalRentals    int32            `json:"total_rentals"` // Confirmed + Completed
	TotalRevenue    decimal.Decimal  `json:"total_revenue"`
	MonthlyRevenue  []MonthlyRevenue `json:"monthly_revenue"`
	OutOfStockItems int32            `json:"out_of_stock_items"`
	PendingRentals  int32            `json:"pending_rentals"`
}

func (d *Dashboard) HasData() bool {
	return d.TotalRentals > 0 || d.TotalRevenue.IsPositive()
}

// ConditionRow is one line of the item-condition report.
type ConditionRow struct {
	RentalID  int32         `json:"rental_id"`
	EventDate time.Time     `json:"event_date"`
	ItemName  string        `json:"item_name"`
	Quantity  int32         `json:"quantity"`
	Condition LineCondition `json:"condition"`
}

type FinancialReport struct {
	Rentals []Rental        `json:"rentals"`
	Total   decimal.Decimal `json:"total"`
}
