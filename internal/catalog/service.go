package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/shared"
)

// RepositoryPort abstracts repository usage for Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates item ledger operations.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// UpdateItem applies a partial update. When price or qty changes, the owning
// income invoice's total amount is recomputed from the new-or-existing price
// and qty; both writes commit as one transaction.
func (s *Service) UpdateItem(ctx context.Context, id int64, update ItemUpdate) error {
	if update.IsEmpty() {
		return fmt.Errorf("catalog: empty item update: %w", shared.ErrValidation)
	}
	if update.Qty != nil && *update.Qty <= 0 {
		return fmt.Errorf("catalog: qty must be positive: %w", shared.ErrValidation)
	}
	if update.Price != nil && update.Price.IsNegative() {
		return fmt.Errorf("catalog: price must not be negative: %w", shared.ErrValidation)
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.GetItemForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.ApplyItemUpdate(ctx, id, update); err != nil {
			return err
		}
		if !update.TouchesTotal() {
			return nil
		}
		price := item.Price
		if update.Price != nil {
			price = *update.Price
		}
		qty := item.Qty
		if update.Qty != nil {
			qty = *update.Qty
		}
		total := price.Mul(decimal.NewFromInt(int64(qty)))
		return tx.SetIncomeTotal(ctx, item.IncomeInvoiceID, total)
	})
	if err != nil {
		return err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "item:update",
			Entity:   "item",
			EntityID: strconv.FormatInt(id, 10),
			Meta:     map[string]any{"total_recomputed": update.TouchesTotal()},
		})
	}
	return nil
}
