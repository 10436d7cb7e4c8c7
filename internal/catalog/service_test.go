package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/shared"
)

type memoryRepo struct {
	items  map[int64]Item
	totals map[int64]decimal.Decimal
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]Item), totals: make(map[int64]decimal.Decimal)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

type memoryTx struct {
	repo *memoryRepo
}

func (tx *memoryTx) GetItemForUpdate(ctx context.Context, id int64) (Item, error) {
	item, ok := tx.repo.items[id]
	if !ok {
		return Item{}, fmt.Errorf("item %d: %w", id, shared.ErrNotFound)
	}
	return item, nil
}

func (tx *memoryTx) ApplyItemUpdate(ctx context.Context, id int64, update ItemUpdate) error {
	item := tx.repo.items[id]
	if update.Title != nil {
		item.Title = *update.Title
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.Price != nil {
		item.Price = *update.Price
	}
	if update.Type != nil {
		item.Type = *update.Type
	}
	if update.Qty != nil {
		item.Qty = *update.Qty
	}
	tx.repo.items[id] = item
	return nil
}

func (tx *memoryTx) SetIncomeTotal(ctx context.Context, invoiceID int64, total decimal.Decimal) error {
	tx.repo.totals[invoiceID] = total
	return nil
}

func seedItem(repo *memoryRepo) Item {
	item := Item{
		ID:              1,
		Title:           "Office Chair",
		Description:     "Mesh chair",
		Price:           decimal.RequireFromString("120.00"),
		Type:            ItemTypeProduct,
		Qty:             10,
		IsAvailable:     true,
		IncomeInvoiceID: 7,
	}
	repo.items[item.ID] = item
	return item
}

func TestUpdateItemRecomputesTotalOnQtyChange(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo)
	svc := NewService(repo, nil)

	qty := 3
	err := svc.UpdateItem(context.Background(), 1, ItemUpdate{Qty: &qty})
	require.NoError(t, err)

	require.Equal(t, 3, repo.items[1].Qty)
	require.True(t, repo.totals[7].Equal(decimal.RequireFromString("360.00")))
}

func TestUpdateItemRecomputesTotalOnPriceChange(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo)
	svc := NewService(repo, nil)

	price := decimal.RequireFromString("99.50")
	err := svc.UpdateItem(context.Background(), 1, ItemUpdate{Price: &price})
	require.NoError(t, err)

	require.True(t, repo.totals[7].Equal(decimal.RequireFromString("995.00")))
}

func TestUpdateItemTitleOnlyLeavesTotalAlone(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo)
	svc := NewService(repo, nil)

	title := "Desk Chair"
	err := svc.UpdateItem(context.Background(), 1, ItemUpdate{Title: &title})
	require.NoError(t, err)

	require.Equal(t, "Desk Chair", repo.items[1].Title)
	require.Empty(t, repo.totals)
}

func TestUpdateItemRejectsEmptyUpdate(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo)
	svc := NewService(repo, nil)

	err := svc.UpdateItem(context.Background(), 1, ItemUpdate{})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateItemRejectsNonPositiveQty(t *testing.T) {
	repo := newMemoryRepo()
	seedItem(repo)
	svc := NewService(repo, nil)

	// Zero would violate the items qty check; reject it before the write.
	for _, qty := range []int{0, -1} {
		q := qty
		err := svc.UpdateItem(context.Background(), 1, ItemUpdate{Qty: &q})
		require.ErrorIs(t, err, shared.ErrValidation)
	}
	require.Equal(t, 10, repo.items[1].Qty)
}

func TestUpdateItemUnknownID(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	qty := 2
	err := svc.UpdateItem(context.Background(), 42, ItemUpdate{Qty: &qty})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
