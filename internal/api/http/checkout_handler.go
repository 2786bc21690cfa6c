package http

import (
	"net/http"

	"rental-backend/internal/domain"
	"rental-backend/internal/service"
)

type CheckoutHandler struct {
	checkout service.CheckoutService
}

func NewCheckoutHandler(checkout service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type rentalDetail struct {
	Rental *domain.Rental      `json:"rental"`
	Lines  []domain.RentalLine `json:"lines"`
}

// Submit turns the visitor's cart into a rental request for the logged-in
// customer.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	cartID, ok := existingCartID(r)
	if !ok {
		writeError(w, r, domain.ErrEmptyCart)
		return
	}
	var form domain.CheckoutForm
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.checkout.Submit(r.Context(), customerID(r), cartID, form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

func (h *CheckoutHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.checkout.ListMyRentals(r.Context(), customerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *CheckoutHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, lines, err := h.checkout.GetMyRental(r.Context(), customerID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentalDetail{Rental: rental, Lines: lines})
}
