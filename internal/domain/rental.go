package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "PENDING"
	RentalStatusConfirmed RentalStatus = "CONFIRMED"
	RentalStatusCompleted RentalStatus = "COMPLETED"
	RentalStatusCancelled RentalStatus = "CANCELLED"
)

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusPending, RentalStatusConfirmed, RentalStatusCompleted, RentalStatusCancelled:
		return true
	}
	return false
}

// Terminal statuses have returned their stock and cannot be left again.
func (s RentalStatus) Terminal() bool {
	return s == RentalStatusCompleted || s == RentalStatusCancelled
}

// SuccessfulStatuses are the statuses counted as revenue.
var SuccessfulStatuses = []RentalStatus{RentalStatusConfirmed, RentalStatusCompleted}

type LineCondition string

const (
	LineConditionGood    LineCondition = "GOOD"
	LineConditionDamaged LineCondition = "DAMAGED"
	LineConditionLost    LineCondition = "LOST"
)

func (c LineCondition) Valid() bool {
	switch c {
	case LineConditionGood, LineConditionDamaged, LineConditionLost:
		return true
	}
	return false
}

type Rental struct {
	ID             int32               `json:"id"`
	CustomerID     int32               `json:"customer_id"`
	Customer       *Customer           `json:"customer,omitempty"` // Populated for reports and admin views
	OrderedOn      time.Time           `json:"ordered_on"`
	EventDate      time.Time           `json:"event_date"`
	DurationDays   int32               `json:"duration_days"`
	TotalCharge    decimal.NullDecimal `json:"total_charge"`
	Status         RentalStatus        `json:"status"`
	Feedback       string              `json:"feedback"`
	InstallAddress string              `json:"install_address"`
	TeardownDate   time.Time           `json:"teardown_date"`
	CreatedOn      time.Time           `json:"created_on"`
	UpdatedOn      time.Time           `json:"updated_on"`
}

type RentalLine struct {
	ID              int32           `json:"id"`
	RentalID        int32           `json:"rental_id"`
	ItemID          int32           `json:"item_id"`
	ItemName        string          `json:"item_name,omitempty"` // Populated on listing
	Quantity        int32           `json:"quantity"`
	Condition       LineCondition   `json:"condition"`
	ProblemCount    int32           `json:"problem_count"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	StockReturnedOn *time.Time      `json:"stock_returned_on,omitempty"`
	CreatedOn       time.Time       `json:"created_on"`
	UpdatedOn       time.Time       `json:"updated_on"`
}

// StockOutstanding reports whether the line still holds committed stock.
func (l *RentalLine) StockOutstanding() bool {
	return l.StockReturnedOn == nil
}

// RentalFilter is used by staff listings and the rental report.
type RentalFilter struct {
	Status     RentalStatus
	Statuses   []RentalStatus
	CustomerID int32
	From       *time.Time // inclusive, on ordered_on
	To         *time.Time // inclusive, on ordered_on
}
