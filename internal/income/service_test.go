package income

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/catalog"
	"github.com/ledgerline/ledgerline/internal/shared"
)

type memoryRepo struct {
	invoices map[int64]Invoice
	nextID   int64

	failInsertItem bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{invoices: make(map[int64]Invoice)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := make(map[int64]Invoice, len(r.invoices))
	for k, v := range r.invoices {
		snapshot[k] = v
	}
	savedID := r.nextID
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.invoices = snapshot
		r.nextID = savedID
		return err
	}
	return nil
}

func (r *memoryRepo) DeleteInvoice(ctx context.Context, id int64) error {
	if _, ok := r.invoices[id]; !ok {
		return fmt.Errorf("invoice %d: %w", id, shared.ErrNotFound)
	}
	delete(r.invoices, id)
	return nil
}

func (r *memoryRepo) UpdateInvoice(ctx context.Context, id int64, input UpdateInput) error {
	inv, ok := r.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %d: %w", id, shared.ErrNotFound)
	}
	inv.Date = input.Date
	inv.Number = input.Number
	inv.CustomerName = input.CustomerName
	r.invoices[id] = inv
	return nil
}

func (r *memoryRepo) ListInvoices(ctx context.Context) ([]Invoice, error) {
	out := make([]Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, inv)
	}
	return out, nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (tx *memoryTx) InsertInvoice(ctx context.Context, number, customerName string, total decimal.Decimal) (int64, error) {
	tx.repo.nextID++
	id := tx.repo.nextID
	tx.repo.invoices[id] = Invoice{ID: id, Number: number, CustomerName: customerName, TotalAmount: total}
	return id, nil
}

func (tx *memoryTx) InsertItem(ctx context.Context, item catalog.Item) (int64, error) {
	if tx.repo.failInsertItem {
		return 0, errors.New("insert item boom")
	}
	inv, ok := tx.repo.invoices[item.IncomeInvoiceID]
	if !ok {
		return 0, fmt.Errorf("invoice %d: %w", item.IncomeInvoiceID, shared.ErrNotFound)
	}
	item.ID = item.IncomeInvoiceID
	inv.Item = item
	tx.repo.invoices[item.IncomeInvoiceID] = inv
	return item.ID, nil
}

func validInput() CreateInput {
	return CreateInput{
		Invoice: InvoiceFields{Number: "INC-1001", CustomerName: "Acme Supplies"},
		Item: ItemFields{
			Title:       "Office Chair",
			Description: "Mesh chair",
			Price:       decimal.RequireFromString("120.00"),
			Type:        catalog.ItemTypeProduct,
			Qty:         10,
		},
	}
}

func TestCreateDerivesTotalFromItem(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	require.NoError(t, svc.Create(context.Background(), validInput()))

	require.Len(t, repo.invoices, 1)
	inv := repo.invoices[1]
	require.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("1200.00")))
	require.Equal(t, "Office Chair", inv.Item.Title)
	require.True(t, inv.Item.IsAvailable)
	require.Equal(t, inv.ID, inv.Item.IncomeInvoiceID)
}

func TestCreateRollsBackWhenItemInsertFails(t *testing.T) {
	repo := newMemoryRepo()
	repo.failInsertItem = true
	svc := NewService(repo, nil)

	err := svc.Create(context.Background(), validInput())
	require.Error(t, err)
	require.Empty(t, repo.invoices)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	cases := map[string]func(*CreateInput){
		"missing number":   func(in *CreateInput) { in.Invoice.Number = "" },
		"missing customer": func(in *CreateInput) { in.Invoice.CustomerName = "" },
		"missing title":    func(in *CreateInput) { in.Item.Title = "" },
		"bad type":         func(in *CreateInput) { in.Item.Type = "subscription" },
		"zero qty":         func(in *CreateInput) { in.Item.Qty = 0 },
		"negative price":   func(in *CreateInput) { in.Item.Price = decimal.RequireFromString("-1") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			require.ErrorIs(t, svc.Create(context.Background(), in), shared.ErrValidation)
		})
	}
}

func TestDeleteRemovesInvoiceAndOwnedItem(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	require.NoError(t, svc.Create(context.Background(), validInput()))

	require.NoError(t, svc.Delete(context.Background(), 1))

	invoices, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, invoices)
	require.Empty(t, repo.invoices)
}

func TestDeleteUnknownInvoice(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	require.ErrorIs(t, svc.Delete(context.Background(), 9), shared.ErrNotFound)
}

func TestUpdateRewritesInvoiceFields(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	require.NoError(t, svc.Create(context.Background(), validInput()))

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	err := svc.Update(context.Background(), 1, UpdateInput{Date: date, Number: "INC-1001-R", CustomerName: "Acme"})
	require.NoError(t, err)

	inv := repo.invoices[1]
	require.Equal(t, "INC-1001-R", inv.Number)
	require.Equal(t, "Acme", inv.CustomerName)
	require.Equal(t, date, inv.Date)
	// Total stays derived from the item, not the update.
	require.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("1200.00")))
}

func TestUpdateRequiresAllFields(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	err := svc.Update(context.Background(), 1, UpdateInput{Number: "X", CustomerName: "Y"})
	require.ErrorIs(t, err, shared.ErrValidation)
}
