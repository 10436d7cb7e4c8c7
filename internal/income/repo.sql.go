package income

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/catalog"
	"github.com/ledgerline/ledgerline/internal/platform/db"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Repository persists income invoices in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations used by Service.
type TxRepository interface {
	InsertInvoice(ctx context.Context, number, customerName string, total decimal.Decimal) (int64, error)
	InsertItem(ctx context.Context, item catalog.Item) (int64, error)
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("income repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *txRepository) InsertInvoice(ctx context.Context, number, customerName string, total decimal.Decimal) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO income_invoices (invoice_number, customer_name, total_amount)
VALUES ($1,$2,$3) RETURNING id`, number, customerName, total).Scan(&id)
	return id, mapConstraintError(err)
}

func (r *txRepository) InsertItem(ctx context.Context, item catalog.Item) (int64, error) {
	id, err := catalog.InsertItemTx(ctx, r.tx, item)
	return id, mapConstraintError(err)
}

// DeleteInvoice removes an income invoice; the owned item goes with it via the
// ON DELETE CASCADE on items.income_invoice_id.
func (r *Repository) DeleteInvoice(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM income_invoices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("income: invoice %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// UpdateInvoice rewrites the invoice-level fields.
func (r *Repository) UpdateInvoice(ctx context.Context, id int64, input UpdateInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE income_invoices SET invoice_date = $2, invoice_number = $3, customer_name = $4
WHERE id = $1`, id, input.Date, input.Number, input.CustomerName)
	if err != nil {
		return mapConstraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("income: invoice %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// ListInvoices returns every income invoice with its owned item, oldest first.
func (r *Repository) ListInvoices(ctx context.Context) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT inv.id, inv.invoice_date, inv.invoice_number, inv.customer_name, inv.total_amount,
	i.id, i.title, i.description, i.price, i.item_type, i.qty, i.is_available
FROM income_invoices inv
JOIN items i ON i.income_invoice_id = inv.id
ORDER BY inv.invoice_date ASC, inv.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	invoices := []Invoice{}
	for rows.Next() {
		var inv Invoice
		var itemType string
		if err := rows.Scan(&inv.ID, &inv.Date, &inv.Number, &inv.CustomerName, &inv.TotalAmount,
			&inv.Item.ID, &inv.Item.Title, &inv.Item.Description, &inv.Item.Price, &itemType, &inv.Item.Qty, &inv.Item.IsAvailable); err != nil {
			return nil, err
		}
		inv.Item.Type = catalog.ItemType(itemType)
		inv.Item.IncomeInvoiceID = inv.ID
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invoices, nil
}

func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("income: %s: %w", pgErr.ConstraintName, shared.ErrDuplicate)
		case "23514":
			return fmt.Errorf("income: %s: %w", pgErr.ConstraintName, shared.ErrValidation)
		}
	}
	return err
}
