package http

import (
	"net/http"
	"strconv"
	"strings"

	"rental-backend/internal/domain"
	"rental-backend/internal/service"
	"rental-backend/internal/utils"

	"github.com/shopspring/decimal"
)

// AdminHandler serves the back-office rental, item and customer screens.
type AdminHandler struct {
	admin service.AdminService
}

func NewAdminHandler(admin service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

type rentalHeaderRequest struct {
	CustomerID     int32               `json:"customer_id"`
	EventDate      string              `json:"event_date"`
	DurationDays   int32               `json:"duration_days"`
	InstallAddress string              `json:"install_address"`
	Feedback       string              `json:"feedback"`
	Status         domain.RentalStatus `json:"status"`
}

type createRentalRequest struct {
	rentalHeaderRequest
	Lines []domain.LineRequest `json:"lines"`
}

type updateRentalRequest struct {
	rentalHeaderRequest
	Lines domain.LineBatch `json:"lines"`
}

type statusRequest struct {
	Status domain.RentalStatus `json:"status"`
}

type itemRequest struct {
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int32           `json:"quantity"`
	Size        string          `json:"size"`
	Description string          `json:"description"`
}

type stockRequest struct {
	Delta  int32  `json:"delta"`
	Reason string `json:"reason"`
}

func (req rentalHeaderRequest) toRental() (*domain.Rental, error) {
	eventDate, err := utils.ParseDate(req.EventDate)
	if err != nil {
		return nil, domain.NewValidationError("event_date", err.Error())
	}
	return &domain.Rental{
		CustomerID:     req.CustomerID,
		EventDate:      eventDate,
		DurationDays:   req.DurationDays,
		InstallAddress: strings.TrimSpace(req.InstallAddress),
		Feedback:       req.Feedback,
		Status:         req.Status,
	}, nil
}

func (req itemRequest) toItem() *domain.Item {
	return &domain.Item{
		Name:        strings.TrimSpace(req.Name),
		UnitPrice:   req.UnitPrice,
		Quantity:    req.Quantity,
		Size:        req.Size,
		Description: req.Description,
	}
}

// rentalFilter reads ?status=, ?from=, ?to= and ?customer_id=.
func rentalFilter(r *http.Request) (domain.RentalFilter, error) {
	q := r.URL.Query()
	var filter domain.RentalFilter
	if s := q.Get("status"); s != "" {
		filter.Status = domain.RentalStatus(strings.ToUpper(s))
	}
	if s := q.Get("from"); s != "" {
		from, err := utils.ParseDate(s)
		if err != nil {
			return filter, domain.NewValidationError("from", err.Error())
		}
		filter.From = &from
	}
	if s := q.Get("to"); s != "" {
		to, err := utils.ParseDate(s)
		if err != nil {
			return filter, domain.NewValidationError("to", err.Error())
		}
		filter.To = &to
	}
	if s := q.Get("customer_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return filter, domain.NewValidationError("customer_id", "must be an integer")
		}
		filter.CustomerID = int32(id)
	}
	return filter, nil
}

func (h *AdminHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	filter, err := rentalFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rentals, err := h.admin.ListRentals(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *AdminHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, lines, err := h.admin.GetRental(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentalDetail{Rental: rental, Lines: lines})
}

func (h *AdminHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	draft, err := req.toRental()
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.admin.CreateRental(r.Context(), draft, req.Lines)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

// UpdateRental saves the rental header and the multi-row line form together.
func (h *AdminHandler) UpdateRental(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateRentalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	header, err := req.toRental()
	if err != nil {
		writeError(w, r, err)
		return
	}
	header.ID = id
	rental, err := h.admin.UpdateRental(r.Context(), header, req.Lines)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *AdminHandler) DeleteRental(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.admin.DeleteRental(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.admin.ChangeStatus(r.Context(), id, domain.RentalStatus(strings.ToUpper(string(req.Status))))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *AdminHandler) ApplyLines(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var batch domain.LineBatch
	if err := decodeJSON(r, &batch); err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.admin.ApplyLines(r.Context(), id, batch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *AdminHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.LineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	line, err := h.admin.AddLine(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (h *AdminHandler) EditLine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var edit domain.LineEdit
	if err := decodeJSON(r, &edit); err != nil {
		writeError(w, r, err)
		return
	}
	edit.LineID = id
	line, err := h.admin.EditLine(r.Context(), edit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (h *AdminHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.admin.RemoveLine(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ItemFilter{Query: q.Get("q"), Size: q.Get("size"), InStockOnly: q.Get("in_stock") == "true"}
	items, err := h.admin.ListItems(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AdminHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item := req.toItem()
	if err := h.admin.CreateItem(r.Context(), item); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *AdminHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item := req.toItem()
	item.ID = id
	if err := h.admin.UpdateItem(r.Context(), item); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// AdjustStock applies a signed stock correction, e.g. {"delta": -2, "reason": "lost"}.
func (h *AdminHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.admin.AdjustStock(r.Context(), id, req.Delta, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *AdminHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.admin.DeleteItem(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.admin.ListCustomers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}
