package http

import (
	"fmt"
	"net/http"
	"strings"

	"rental-backend/internal/domain"
	"rental-backend/internal/report"
	"rental-backend/internal/service"
)

// ReportHandler serves the dashboard and the read-only reports. Reports are
// JSON by default; ?format=html or ?format=csv returns a printable export.
type ReportHandler struct {
	reports service.ReportService
}

func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func writeReport(w http.ResponseWriter, r *http.Request, data any, table func() *report.Table) {
	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, data)
		return
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		writeError(w, r, domain.NewValidationError("format", "must be json, html or csv"))
		return
	}

	t := table()
	w.Header().Set("Content-Type", f.ContentType())
	if f == report.FormatCSV {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", t.Filename(f)))
	}
	if err := report.Render(w, f, t); err != nil {
		writeError(w, r, err)
	}
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reports.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *ReportHandler) Rentals(w http.ResponseWriter, r *http.Request) {
	filter, err := rentalFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rentals, err := h.reports.RentalReport(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeReport(w, r, rentals, func() *report.Table { return report.RentalTable(rentals) })
}

func (h *ReportHandler) Financial(w http.ResponseWriter, r *http.Request) {
	filter, err := rentalFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fin, err := h.reports.FinancialReport(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeReport(w, r, fin, func() *report.Table { return report.FinancialTable(fin) })
}

func (h *ReportHandler) Conditions(w http.ResponseWriter, r *http.Request) {
	condition := domain.LineCondition(strings.ToUpper(r.URL.Query().Get("condition")))
	rows, err := h.reports.ConditionReport(r.Context(), condition)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeReport(w, r, rows, func() *report.Table { return report.ConditionTable(rows) })
}

func (h *ReportHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.reports.InventoryReport(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeReport(w, r, items, func() *report.Table { return report.InventoryTable(items) })
}

func (h *ReportHandler) Customers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.reports.CustomerReport(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeReport(w, r, customers, func() *report.Table { return report.CustomerTable(customers) })
}
