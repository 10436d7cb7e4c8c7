package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/catalog"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// RepositoryPort is the persistence surface the service depends on.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repo TxRepository) error) error
	DeleteExpense(ctx context.Context, id int64) error
	ListExpenses(ctx context.Context) ([]Invoice, error)
}

// AuditPort records audit trail entries for expense mutations.
type AuditPort interface {
	Record(ctx context.Context, entry shared.AuditLog) error
}

type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
	audit  AuditPort
}

func NewService(logger *slog.Logger, repo RepositoryPort, audit AuditPort) *Service {
	return &Service{logger: logger, repo: repo, audit: audit}
}

// Create allocates input.Qty units against the oldest available lot whose
// title matches. The lot row stays locked for the duration of the
// transaction, so concurrent allocations against the same title cannot both
// observe the same remaining quantity. Overselling rolls back and reports a
// failed Result; exact depletion marks the lot unavailable.
func (s *Service) Create(ctx context.Context, input CreateInput) (Result, int64, error) {
	if err := validateInput(input); err != nil {
		return Result{}, 0, err
	}

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo TxRepository) error {
		lot, err := repo.ResolveOldestAvailableLot(ctx, input.Title)
		if err != nil {
			return err
		}
		diff := lot.Remaining - input.Qty
		if diff < 0 {
			return &InsufficientStockError{Available: lot.Remaining, Requested: input.Qty}
		}
		if diff == 0 {
			if err := repo.MarkItemUnavailable(ctx, lot.ItemID); err != nil {
				return err
			}
		}
		id, err = repo.InsertExpense(ctx, Invoice{
			Number:       input.Number,
			CustomerName: input.CustomerName,
			Qty:          input.Qty,
			TotalAmount:  lot.Price.Mul(decimal.NewFromInt(int64(input.Qty))),
			Item:         catalog.Item{ID: lot.ItemID},
		})
		return err
	})

	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		s.logger.Warn("expense allocation rejected",
			slog.String("title", input.Title),
			slog.Int("available", stockErr.Available),
			slog.Int("requested", stockErr.Requested))
		return Result{Success: false, Message: stockErr.Error()}, 0, nil
	}
	if err != nil {
		return Result{}, 0, err
	}

	s.recordAudit(ctx, "expense:create", id, map[string]any{
		"invoice_number": input.Number,
		"title":          input.Title,
		"qty":            input.Qty,
	})
	return Result{Success: true, Message: "Created"}, id, nil
}

// Update re-runs the allocation for an existing expense. The previously
// booked quantity is credited back before checking the new one, so shrinking
// or keeping the quantity always passes. The stored item link is kept as-is.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (Result, error) {
	if err := validateInput(input); err != nil {
		return Result{}, err
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo TxRepository) error {
		lot, err := repo.ResolveOldestAvailableLot(ctx, input.Title)
		if err != nil {
			return err
		}
		prev, err := repo.GetExpenseForUpdate(ctx, id)
		if err != nil {
			return err
		}
		diff := lot.Remaining + prev.Qty - input.Qty
		if diff < 0 {
			return &InsufficientStockError{Available: lot.Remaining, Requested: input.Qty}
		}
		if diff == 0 {
			if err := repo.MarkItemUnavailable(ctx, lot.ItemID); err != nil {
				return err
			}
		}
		return repo.UpdateExpense(ctx, Invoice{
			ID:           id,
			Number:       input.Number,
			CustomerName: input.CustomerName,
			Qty:          input.Qty,
			TotalAmount:  lot.Price.Mul(decimal.NewFromInt(int64(input.Qty))),
		})
	})

	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		s.logger.Warn("expense update rejected",
			slog.String("title", input.Title),
			slog.Int("available", stockErr.Available),
			slog.Int("requested", stockErr.Requested))
		return Result{Success: false, Message: stockErr.Error()}, nil
	}
	if err != nil {
		return Result{}, err
	}

	s.recordAudit(ctx, "expense:update", id, map[string]any{
		"invoice_number": input.Number,
		"title":          input.Title,
		"qty":            input.Qty,
	})
	return Result{Success: true, Message: "Updated"}, nil
}

// Delete removes the expense record. Allocated stock is not credited back to
// the lot; deletion is bookkeeping, not a stock reversal.
func (s *Service) Delete(ctx context.Context, id int64) (Result, error) {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return Result{}, err
	}
	s.recordAudit(ctx, "expense:delete", id, nil)
	return Result{Success: true, Message: "Deleted"}, nil
}

func (s *Service) List(ctx context.Context) ([]Invoice, error) {
	return s.repo.ListExpenses(ctx)
}

func validateInput(input CreateInput) error {
	switch {
	case input.Title == "":
		return fmt.Errorf("title is required: %w", shared.ErrValidation)
	case input.Qty <= 0:
		return fmt.Errorf("qty must be positive: %w", shared.ErrValidation)
	case input.Number == "":
		return fmt.Errorf("invoice_number is required: %w", shared.ErrValidation)
	case input.CustomerName == "":
		return fmt.Errorf("customer_name is required: %w", shared.ErrValidation)
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditLog{Action: action, Entity: "expense_invoice", EntityID: strconv.FormatInt(id, 10), Meta: meta}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
