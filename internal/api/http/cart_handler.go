package http

import (
	"net/http"
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/service"

	"github.com/google/uuid"
)

const cartCookie = "cart_id"

type CartHandler struct {
	carts service.CartService
	ttl   time.Duration
}

func NewCartHandler(carts service.CartService, ttl time.Duration) *CartHandler {
	return &CartHandler{carts: carts, ttl: ttl}
}

type cartItemRequest struct {
	ItemID   int32 `json:"item_id"`
	Quantity int32 `json:"quantity"`
}

type cartResponse struct {
	Items map[int32]int32 `json:"items"`
	Count int32           `json:"count"`
}

// existingCartID returns the cart cookie value if it holds a valid id.
func existingCartID(r *http.Request) (string, bool) {
	c, err := r.Cookie(cartCookie)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

// cartID returns the visitor's cart id, issuing a new cookie when needed.
func (h *CartHandler) cartID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := existingCartID(r); ok {
		return id
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func writeCart(w http.ResponseWriter, cart *domain.Cart) {
	writeJSON(w, http.StatusOK, cartResponse{Items: cart.Items, Count: cart.Count()})
}

func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.View(r.Context(), h.cartID(w, r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.carts.Count(r.Context(), h.cartID(w, r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int32{"count": n})
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.carts.Add(r.Context(), h.cartID(w, r), req.ItemID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, cart)
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "item_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.carts.SetQuantity(r.Context(), h.cartID(w, r), itemID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, cart)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "item_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := h.carts.Remove(r.Context(), h.cartID(w, r), itemID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, cart)
}
