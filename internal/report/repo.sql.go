package report

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads report aggregates from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Sales amounts are priced at the item's current price, not the totals
// booked on the expense invoices, so a price edit reprices past sales in the
// report the same way it reprices the invoice totals.
const salesRowsQuery = `
	SELECT i.id, i.title, i.price,
	       COALESCE(SUM(e.qty), 0) AS sales_qty,
	       i.price * COALESCE(SUM(e.qty), 0) AS sales_amount,
	       i.qty AS stock_qty,
	       i.qty - COALESCE(SUM(e.qty), 0) AS stock_balance
	FROM items i
	JOIN expense_invoices e ON e.item_id = i.id
	WHERE %s
	GROUP BY i.id, i.title, i.price, i.qty
	ORDER BY i.title ASC, i.id ASC`

const totalsQuery = `
	SELECT COUNT(DISTINCT e.item_id),
	       COALESCE(SUM(e.qty), 0),
	       COALESCE(SUM(e.qty * i.price), 0)
	FROM expense_invoices e
	JOIN items i ON i.id = e.item_id
	WHERE %s`

// SalesRows groups expense invoices within the range by item. Items with no
// sales in the range do not appear; stock balances subtract only the
// expenses the range matched.
func (r *Repository) SalesRows(ctx context.Context, rng DateRange) ([]Row, error) {
	predicate, args := rng.Predicate("e.invoice_date")
	query := fmt.Sprintf(salesRowsQuery, predicate)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("report: sales rows: %w", err)
	}
	defer rows.Close()

	out := make([]Row, 0, 16)
	for rows.Next() {
		var row Row
		err := rows.Scan(&row.ItemID, &row.Title, &row.Price, &row.SalesQty, &row.SalesAmount, &row.StockQty, &row.StockBalance)
		if err != nil {
			return nil, fmt.Errorf("report: scan: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: sales rows: %w", err)
	}
	return out, nil
}

// Totals aggregates the same range across all items.
func (r *Repository) Totals(ctx context.Context, rng DateRange) (Summary, error) {
	predicate, args := rng.Predicate("e.invoice_date")
	query := fmt.Sprintf(totalsQuery, predicate)

	var summary Summary
	err := r.pool.QueryRow(ctx, query, args...).Scan(&summary.ItemCount, &summary.TotalQty, &summary.TotalAmount)
	if err != nil {
		return Summary{}, fmt.Errorf("report: totals: %w", err)
	}
	return summary, nil
}
