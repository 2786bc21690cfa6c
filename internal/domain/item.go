package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID          int32           `json:"id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int32           `json:"quantity"`
	Size        string          `json:"size"`
	Description string          `json:"description"`
	PhotoKey    string          `json:"photo_key,omitempty"`
	PhotoURL    string          `json:"photo_url,omitempty"` // Populated by the catalog service
	CreatedOn   time.Time       `json:"created_on"`
	UpdatedOn   time.Time       `json:"updated_on"`
}

// ItemFilter narrows catalog listings. Zero values mean "no filter".
type ItemFilter struct {
	Query       string
	Size        string
	InStockOnly bool
}

// Validate checks the staff-editable fields of an item. Quantity is only
// checked on creation; afterwards it is owned by the ledger.
func (i *Item) Validate(creating bool) error {
	if i.Name == "" {
		return NewValidationError("name", "is required")
	}
	if len(i.Name) > 50 {
		return NewValidationError("name", "must be at most 50 characters")
	}
	if i.UnitPrice.IsNegative() {
		return NewValidationError("unit_price", "must not be negative")
	}
	if creating && i.Quantity < 0 {
		return NewValidationError("quantity", "must not be negative")
	}
	if len(i.Description) > 200 {
		return NewValidationError("description", "must be at most 200 characters")
	}
	if len(i.Size) > 30 {
		return NewValidationError("size", "must be at most 30 characters")
	}
	return nil
}
