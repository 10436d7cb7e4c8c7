// Package expense manages expense invoices: goods sold out of stock. Creation
// and update allocate against the oldest available lot matching the requested
// title and keep stock quantity, availability, and totals coherent.
package expense

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/catalog"
)

// Invoice is an expense invoice dressed with its item's presentation fields.
type Invoice struct {
	ID           int64
	Date         time.Time
	Number       string
	CustomerName string
	Qty          int
	TotalAmount  decimal.Decimal
	Item         catalog.Item
}

// CreateInput is the allocation payload: which title to sell, how much, and
// the invoice fields to record.
type CreateInput struct {
	Title        string
	Qty          int
	Number       string
	CustomerName string
}

// UpdateInput mirrors CreateInput for editing an existing expense.
type UpdateInput = CreateInput

// Result is the explicit success/failure marker every mutating expense
// operation reports alongside a human-readable message.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// InsufficientStockError reports an allocation that would oversell the
// resolved lot. No write survives when it is returned.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}
