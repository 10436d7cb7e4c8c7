// Package income manages income invoices: goods purchased into stock. Each
// income invoice owns exactly one item lot, created atomically with it.
package income

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/catalog"
)

// Invoice is an income invoice together with its owned item.
type Invoice struct {
	ID           int64
	Date         time.Time
	Number       string
	CustomerName string
	TotalAmount  decimal.Decimal
	Item         catalog.Item
}

// InvoiceFields carries the invoice part of a creation payload.
type InvoiceFields struct {
	Number       string
	CustomerName string
}

// ItemFields carries the item part of a creation payload.
type ItemFields struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Type        catalog.ItemType
	Qty         int
}

// CreateInput groups both halves of an income creation.
type CreateInput struct {
	Invoice InvoiceFields
	Item    ItemFields
}

// UpdateInput carries the invoice-level fields of an income update. The owned
// item and the derived total are not touched here; item edits go through the
// catalog service.
type UpdateInput struct {
	Date         time.Time
	Number       string
	CustomerName string
}
