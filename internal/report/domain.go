// Package report builds the sales and stock report: per-item sales amounts
// and remaining stock over a date window, rendered to PDF.
package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/shared"
)

// DateRange bounds the expense invoices included in a report. A zero Start
// or End leaves that side open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate rejects an entirely open range and inverted bounds.
func (r DateRange) Validate() error {
	if r.Start.IsZero() && r.End.IsZero() {
		return fmt.Errorf("report: start_date or end_date is required: %w", shared.ErrValidation)
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return fmt.Errorf("report: end_date precedes start_date: %w", shared.ErrValidation)
	}
	return nil
}

// Predicate renders the SQL condition for column, with placeholders starting
// at $1, and the matching argument slice.
func (r DateRange) Predicate(column string) (string, []any) {
	switch {
	case !r.Start.IsZero() && !r.End.IsZero():
		return column + " BETWEEN $1 AND $2", []any{r.Start, r.End}
	case !r.Start.IsZero():
		return column + " > $1", []any{r.Start}
	default:
		return column + " < $1", []any{r.End}
	}
}

// Filename is the attachment name for the rendered PDF.
func (r DateRange) Filename() string {
	return fmt.Sprintf("report_from_%s_to_%s.pdf", r.bound(r.Start), r.bound(r.End))
}

func (r DateRange) bound(t time.Time) string {
	if t.IsZero() {
		return "all"
	}
	return t.Format("2006-01-02")
}

// CacheKeyParts identifies this range in the dataset cache.
func (r DateRange) CacheKeyParts() []string {
	return []string{"report", r.bound(r.Start), r.bound(r.End)}
}

// Row is one item's sales and stock position within the range.
type Row struct {
	ItemID       int64           `json:"item_id"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	SalesQty     int             `json:"sales_qty"`
	SalesAmount  decimal.Decimal `json:"sales_amount"`
	StockQty     int             `json:"stock_qty"`
	StockBalance int             `json:"stock_balance"`
}

// Summary aggregates the report across all items in the range.
type Summary struct {
	ItemCount   int             `json:"item_count"`
	TotalQty    int             `json:"total_qty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Dataset is the cacheable intermediate the PDF is rendered from.
type Dataset struct {
	Range   DateRange `json:"range"`
	Rows    []Row     `json:"rows"`
	Summary Summary   `json:"summary"`
}
