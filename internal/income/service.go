package income

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/catalog"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// RepositoryPort abstracts repository usage for Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	DeleteInvoice(ctx context.Context, id int64) error
	UpdateInvoice(ctx context.Context, id int64, input UpdateInput) error
	ListInvoices(ctx context.Context) ([]Invoice, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates income invoice operations.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Create inserts an income invoice and its owned item as one atomic unit.
// The invoice total is derived from the item: price multiplied by qty.
func (s *Service) Create(ctx context.Context, input CreateInput) error {
	if input.Invoice.Number == "" || input.Invoice.CustomerName == "" {
		return fmt.Errorf("income: invoice number and customer name required: %w", shared.ErrValidation)
	}
	if input.Item.Title == "" {
		return fmt.Errorf("income: item title required: %w", shared.ErrValidation)
	}
	if input.Item.Type != catalog.ItemTypeProduct && input.Item.Type != catalog.ItemTypeService {
		return fmt.Errorf("income: item type must be product or service: %w", shared.ErrValidation)
	}
	if input.Item.Qty <= 0 {
		return fmt.Errorf("income: item qty must be positive: %w", shared.ErrValidation)
	}
	if input.Item.Price.IsNegative() {
		return fmt.Errorf("income: item price must not be negative: %w", shared.ErrValidation)
	}

	total := input.Item.Price.Mul(decimal.NewFromInt(int64(input.Item.Qty)))

	var invoiceID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertInvoice(ctx, input.Invoice.Number, input.Invoice.CustomerName, total)
		if err != nil {
			return err
		}
		invoiceID = id
		_, err = tx.InsertItem(ctx, catalog.Item{
			Title:           input.Item.Title,
			Description:     input.Item.Description,
			Price:           input.Item.Price,
			Type:            input.Item.Type,
			Qty:             input.Item.Qty,
			IsAvailable:     true,
			IncomeInvoiceID: id,
		})
		return err
	})
	if err != nil {
		return err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "income:create",
			Entity:   "income_invoice",
			EntityID: strconv.FormatInt(invoiceID, 10),
			Meta:     map[string]any{"number": input.Invoice.Number, "total": total.String()},
		})
	}
	return nil
}

// Delete removes an income invoice; the owned item is removed by cascade.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "income:delete",
			Entity:   "income_invoice",
			EntityID: strconv.FormatInt(id, 10),
		})
	}
	return nil
}

// Update rewrites the invoice-level fields; the derived total is untouched.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) error {
	if input.Number == "" || input.CustomerName == "" || input.Date.IsZero() {
		return fmt.Errorf("income: date, invoice number and customer name required: %w", shared.ErrValidation)
	}
	if err := s.repo.UpdateInvoice(ctx, id, input); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "income:update",
			Entity:   "income_invoice",
			EntityID: strconv.FormatInt(id, 10),
		})
	}
	return nil
}

// List returns every income invoice with its owned item.
func (s *Service) List(ctx context.Context) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx)
}
