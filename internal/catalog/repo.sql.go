package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/platform/db"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Repository persists items in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations used by Service.
type TxRepository interface {
	GetItemForUpdate(ctx context.Context, id int64) (Item, error)
	ApplyItemUpdate(ctx context.Context, id int64, update ItemUpdate) error
	SetIncomeTotal(ctx context.Context, invoiceID int64, total decimal.Decimal) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("catalog repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const lotQuery = `SELECT i.id, i.price, COALESCE(i.qty - spent.total, i.qty) AS remaining
FROM items i
JOIN income_invoices inv ON inv.id = i.income_invoice_id
LEFT JOIN (
	SELECT item_id, SUM(qty) AS total FROM expense_invoices GROUP BY item_id
) spent ON spent.item_id = i.id
WHERE i.title = $1 AND i.is_available = TRUE
ORDER BY inv.invoice_date ASC
LIMIT 1
FOR UPDATE OF i`

// ResolveOldestAvailableLotTx resolves and row-locks the oldest available lot
// inside the caller's transaction. Allocators use this so the
// read-check-write sequence serialises on the item row.
func ResolveOldestAvailableLotTx(ctx context.Context, tx pgx.Tx, title string) (Lot, error) {
	var lot Lot
	err := tx.QueryRow(ctx, lotQuery, title).Scan(&lot.ItemID, &lot.Price, &lot.Remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lot{}, fmt.Errorf("catalog: no available item titled %q: %w", title, shared.ErrNotFound)
		}
		return Lot{}, err
	}
	return lot, nil
}

// InsertItemTx inserts an item inside the caller's transaction and returns its id.
func InsertItemTx(ctx context.Context, tx pgx.Tx, item Item) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `INSERT INTO items (title, description, price, item_type, qty, is_available, income_invoice_id)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		item.Title, item.Description, item.Price, string(item.Type), item.Qty, item.IsAvailable, item.IncomeInvoiceID).Scan(&id)
	return id, err
}

// MarkUnavailableTx flips is_available to false inside the caller's transaction.
func MarkUnavailableTx(ctx context.Context, tx pgx.Tx, itemID int64) error {
	tag, err := tx.Exec(ctx, `UPDATE items SET is_available = FALSE WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("catalog: item %d: %w", itemID, shared.ErrNotFound)
	}
	return nil
}

func (r *txRepository) GetItemForUpdate(ctx context.Context, id int64) (Item, error) {
	var item Item
	var itemType string
	err := r.tx.QueryRow(ctx, `SELECT id, title, description, price, item_type, qty, is_available, income_invoice_id
FROM items WHERE id = $1 FOR UPDATE`, id).
		Scan(&item.ID, &item.Title, &item.Description, &item.Price, &itemType, &item.Qty, &item.IsAvailable, &item.IncomeInvoiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, fmt.Errorf("catalog: item %d: %w", id, shared.ErrNotFound)
		}
		return Item{}, err
	}
	item.Type = ItemType(itemType)
	return item, nil
}

func (r *txRepository) ApplyItemUpdate(ctx context.Context, id int64, update ItemUpdate) error {
	_, err := r.tx.Exec(ctx, `UPDATE items SET
	title = COALESCE($2, title),
	description = COALESCE($3, description),
	price = COALESCE($4, price),
	item_type = COALESCE($5, item_type),
	qty = COALESCE($6, qty)
WHERE id = $1`, id, update.Title, update.Description, update.Price, itemTypeArg(update.Type), update.Qty)
	return mapConstraintError(err)
}

func (r *txRepository) SetIncomeTotal(ctx context.Context, invoiceID int64, total decimal.Decimal) error {
	tag, err := r.tx.Exec(ctx, `UPDATE income_invoices SET total_amount = $2 WHERE id = $1`, invoiceID, total)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("catalog: income invoice %d: %w", invoiceID, shared.ErrNotFound)
	}
	return nil
}

func itemTypeArg(t *ItemType) any {
	if t == nil {
		return nil
	}
	return string(*t)
}

func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("catalog: %s: %w", pgErr.ConstraintName, shared.ErrDuplicate)
		case "23514":
			return fmt.Errorf("catalog: %s: %w", pgErr.ConstraintName, shared.ErrValidation)
		}
	}
	return err
}
