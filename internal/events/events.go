// Package events publishes rental domain events to a RabbitMQ topic exchange.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Routing keys
const (
	RKRentalSubmitted     = "rental.submitted"
	RKRentalStatusChanged = "rental.status_changed"
	RKRentalDeleted       = "rental.deleted"
	RKStockDepleted       = "item.out_of_stock"
)

type RentalLinePayload struct {
	ItemID   int32           `json:"item_id"`
	ItemName string          `json:"item_name"`
	Quantity int32           `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type RentalSubmittedPayload struct {
	RentalID     int32               `json:"rental_id"`
	CustomerID   int32               `json:"customer_id"`
	EventDate    time.Time           `json:"event_date"`
	DurationDays int32               `json:"duration_days"`
	TotalCharge  decimal.Decimal     `json:"total_charge"`
	Lines        []RentalLinePayload `json:"lines"`
}

type RentalStatusChangedPayload struct {
	RentalID int32  `json:"rental_id"`
	From     string `json:"from"`
	To       string `json:"to"`
}

type RentalDeletedPayload struct {
	RentalID int32 `json:"rental_id"`
}

type StockDepletedPayload struct {
	ItemIDs []int32 `json:"item_ids"`
}
