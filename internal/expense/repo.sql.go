package expense

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/catalog"
	"github.com/ledgerline/ledgerline/internal/platform/db"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Repository persists expense invoices on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the writes an allocation performs inside a single
// transaction. The lot lookup locks the item row so concurrent allocations
// against the same title serialize.
type TxRepository interface {
	ResolveOldestAvailableLot(ctx context.Context, title string) (catalog.Lot, error)
	GetExpenseForUpdate(ctx context.Context, id int64) (Invoice, error)
	MarkItemUnavailable(ctx context.Context, itemID int64) error
	InsertExpense(ctx context.Context, inv Invoice) (int64, error)
	UpdateExpense(ctx context.Context, inv Invoice) error
}

func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, repo TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) ResolveOldestAvailableLot(ctx context.Context, title string) (catalog.Lot, error) {
	return catalog.ResolveOldestAvailableLotTx(ctx, r.tx, title)
}

func (r *txRepository) MarkItemUnavailable(ctx context.Context, itemID int64) error {
	return catalog.MarkUnavailableTx(ctx, r.tx, itemID)
}

func (r *txRepository) GetExpenseForUpdate(ctx context.Context, id int64) (Invoice, error) {
	const query = `
		SELECT id, invoice_date, invoice_number, customer_name, qty, total_amount, item_id
		FROM expense_invoices
		WHERE id = $1
		FOR UPDATE`

	var inv Invoice
	err := r.tx.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.Date, &inv.Number, &inv.CustomerName, &inv.Qty, &inv.TotalAmount, &inv.Item.ID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, fmt.Errorf("expense: get %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return Invoice{}, fmt.Errorf("expense: get %d: %w", id, err)
	}
	return inv, nil
}

func (r *txRepository) InsertExpense(ctx context.Context, inv Invoice) (int64, error) {
	const query = `
		INSERT INTO expense_invoices (invoice_number, customer_name, qty, total_amount, item_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.tx.QueryRow(ctx, query, inv.Number, inv.CustomerName, inv.Qty, inv.TotalAmount, inv.Item.ID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("expense: insert: %w", mapConstraintError(err))
	}
	return id, nil
}

func (r *txRepository) UpdateExpense(ctx context.Context, inv Invoice) error {
	const query = `
		UPDATE expense_invoices
		SET invoice_number = $2, customer_name = $3, qty = $4, total_amount = $5
		WHERE id = $1`

	tag, err := r.tx.Exec(ctx, query, inv.ID, inv.Number, inv.CustomerName, inv.Qty, inv.TotalAmount)
	if err != nil {
		return fmt.Errorf("expense: update %d: %w", inv.ID, mapConstraintError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense: update %d: %w", inv.ID, shared.ErrNotFound)
	}
	return nil
}

func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expense_invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("expense: delete %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense: delete %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *Repository) ListExpenses(ctx context.Context) ([]Invoice, error) {
	const query = `
		SELECT e.id, e.invoice_date, e.invoice_number, e.customer_name, e.qty, e.total_amount,
		       i.id, i.title, i.description, i.price, i.item_type, i.qty, i.is_available, i.income_invoice_id
		FROM expense_invoices e
		JOIN items i ON i.id = e.item_id
		ORDER BY e.id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("expense: list: %w", err)
	}
	defer rows.Close()

	out := make([]Invoice, 0, 16)
	for rows.Next() {
		var inv Invoice
		err := rows.Scan(
			&inv.ID, &inv.Date, &inv.Number, &inv.CustomerName, &inv.Qty, &inv.TotalAmount,
			&inv.Item.ID, &inv.Item.Title, &inv.Item.Description, &inv.Item.Price, &inv.Item.Type,
			&inv.Item.Qty, &inv.Item.IsAvailable, &inv.Item.IncomeInvoiceID,
		)
		if err != nil {
			return nil, fmt.Errorf("expense: scan: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("expense: list: %w", err)
	}
	return out, nil
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, shared.ErrDuplicate)
		case "23514":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, shared.ErrValidation)
		}
	}
	return err
}
