package http

import (
	"net/http"

	"rental-backend/internal/service"
)

type CatalogHandler struct {
	catalog service.CatalogService
}

func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List returns in-stock items, optionally narrowed by ?q= and ?size=.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.catalog.ListAvailable(r.Context(), q.Get("q"), q.Get("size"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.catalog.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
