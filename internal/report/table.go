// Package report turns report data into printable tables and renders them
// as HTML or CSV downloads.
package report

import (
	"fmt"
	"strconv"

	"rental-backend/internal/domain"
	"rental-backend/internal/utils"
)

// Table is a format-agnostic report: a title, a header row, body rows and
// an optional footer row.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string
}

func customerName(r domain.Rental) string {
	if r.Customer == nil {
		return ""
	}
	return r.Customer.Name
}

func totalCharge(r domain.Rental) string {
	if !r.TotalCharge.Valid {
		return "-"
	}
	return utils.FormatRupiah(r.TotalCharge.Decimal)
}

func RentalTable(rentals []domain.Rental) *Table {
	t := &Table{
		Title:   "Rental Report",
		Headers: []string{"ID", "Customer", "Ordered", "Event Date", "Days", "Teardown", "Status", "Total"},
	}
	for _, r := range rentals {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(int(r.ID)),
			customerName(r),
			r.OrderedOn.Format(utils.DateLayout),
			r.EventDate.Format(utils.DateLayout),
			strconv.Itoa(int(r.DurationDays)),
			r.TeardownDate.Format(utils.DateLayout),
			string(r.Status),
			totalCharge(r),
		})
	}
	return t
}

func FinancialTable(report *domain.FinancialReport) *Table {
	t := &Table{
		Title:   "Financial Report",
		Headers: []string{"ID", "Customer", "Ordered", "Event Date", "Status", "Total"},
		Footer:  []string{"", "", "", "", "Total", utils.FormatRupiah(report.Total)},
	}
	for _, r := range report.Rentals {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(int(r.ID)),
			customerName(r),
			r.OrderedOn.Format(utils.DateLayout),
			r.EventDate.Format(utils.DateLayout),
			string(r.Status),
			totalCharge(r),
		})
	}
	return t
}

func ConditionTable(rows []domain.ConditionRow) *Table {
	t := &Table{
		Title:   "Item Condition Report",
		Headers: []string{"Rental", "Event Date", "Item", "Quantity", "Condition"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(int(r.RentalID)),
			r.EventDate.Format(utils.DateLayout),
			r.ItemName,
			strconv.Itoa(int(r.Quantity)),
			string(r.Condition),
		})
	}
	return t
}

func InventoryTable(items []domain.Item) *Table {
	t := &Table{
		Title:   "Inventory Report",
		Headers: []string{"ID", "Name", "Size", "Unit Price", "In Stock"},
	}
	for _, it := range items {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(int(it.ID)),
			it.Name,
			it.Size,
			utils.FormatRupiah(it.UnitPrice),
			strconv.Itoa(int(it.Quantity)),
		})
	}
	return t
}

func CustomerTable(customers []domain.Customer) *Table {
	t := &Table{
		Title:   "Customer Report",
		Headers: []string{"ID", "Name", "Phone", "Registered", "Last Login"},
	}
	for _, c := range customers {
		lastLogin := "-"
		if c.LastLoginOn != nil {
			lastLogin = c.LastLoginOn.Format("2006-01-02 15:04")
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(int(c.ID)),
			c.Name,
			c.Phone,
			c.CreatedOn.Format(utils.DateLayout),
			lastLogin,
		})
	}
	return t
}

// Filename suggests a download name such as "rental-report.csv".
func (t *Table) Filename(f Format) string {
	return fmt.Sprintf("%s.%s", slug(t.Title), f)
}

func slug(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out = append(out, c)
		case len(out) > 0 && out[len(out)-1] != '-':
			out = append(out, '-')
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	return string(out)
}
