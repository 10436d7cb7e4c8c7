// Package catalog manages the item ledger: product and service records, their
// stock quantity, availability flag, and the FIFO lot resolution used when
// expenses are allocated against stock.
package catalog

import "github.com/shopspring/decimal"

// ItemType enumerates the kinds of ledger entries.
type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeService ItemType = "service"
)

// Item is one ledger record. Every item originates from exactly one income
// invoice and is deleted only by that invoice's cascade.
type Item struct {
	ID              int64
	Title           string
	Description     string
	Price           decimal.Decimal
	Type            ItemType
	Qty             int
	IsAvailable     bool
	IncomeInvoiceID int64
}

// ItemUpdate is a typed partial update; nil fields are left untouched.
type ItemUpdate struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Type        *ItemType
	Qty         *int
}

// IsEmpty reports whether the update changes nothing.
func (u ItemUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Price == nil && u.Type == nil && u.Qty == nil
}

// TouchesTotal reports whether the update requires recomputing the owning
// income invoice's total amount.
func (u ItemUpdate) TouchesTotal() bool {
	return u.Price != nil || u.Qty != nil
}

// Lot is the resolution result for an expense allocation: the oldest available
// item matching a title, its unit price, and how much stock it has left.
type Lot struct {
	ItemID    int64
	Price     decimal.Decimal
	Remaining int
}
