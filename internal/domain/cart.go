package domain

import "github.com/shopspring/decimal"

// Cart maps item IDs to requested quantities. It lives in the session store,
// never in the database.
type Cart struct {
	Items map[int32]int32 `json:"items"`
}

func NewCart() *Cart {
	return &Cart{Items: make(map[int32]int32)}
}

func (c *Cart) Count() int32 {
	var n int32
	for _, q := range c.Items {
		n += q
	}
	return n
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

type CartLine struct {
	Item     Item            `json:"item"`
	Quantity int32           `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Lines []CartLine      `json:"lines"`
	Count int32           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// CheckoutForm is the rental request a customer submits with the cart.
type CheckoutForm struct {
	EventDate      string `json:"event_date"` // yyyy-mm-dd
	DurationDays   int32  `json:"duration_days"`
	InstallAddress string `json:"install_address"`
	Feedback       string `json:"feedback"`
}
