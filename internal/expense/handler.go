package expense

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Handler wires HTTP endpoints for expense invoices.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the expense handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/expense", h.handleCreate)
	r.Get("/expense", h.handleList)
	r.Put("/expense/{id}", h.handleUpdate)
	r.Delete("/expense/{id}", h.handleDelete)
}

type allocateRequest struct {
	Title         string `json:"title" validate:"required"`
	Qty           int    `json:"qty" validate:"required,gt=0"`
	InvoiceNumber string `json:"invoice_number" validate:"required"`
	CustomerName  string `json:"customer_name" validate:"required"`
}

type invoiceResponse struct {
	ID            int64           `json:"id"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	Qty           int             `json:"qty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Item          itemResponse    `json:"item"`
}

type itemResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ItemType    string          `json:"item_type"`
	IsAvailable bool            `json:"is_available"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeAllocation(w, r)
	if !ok {
		return
	}
	result, _, err := h.service.Create(r.Context(), input)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.JSON(w, http.StatusNotFound, Result{Success: false, Message: "no available item with that title"})
			return
		}
		h.logger.Error("create expense failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusCreated
	if !result.Success {
		status = http.StatusConflict
	}
	httpx.JSON(w, status, result)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list expense failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	resp := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp = append(resp, invoiceResponse{
			ID:            inv.ID,
			InvoiceDate:   inv.Date,
			InvoiceNumber: inv.Number,
			CustomerName:  inv.CustomerName,
			Qty:           inv.Qty,
			TotalAmount:   inv.TotalAmount,
			Item: itemResponse{
				ID:          inv.Item.ID,
				Title:       inv.Item.Title,
				Description: inv.Item.Description,
				Price:       inv.Item.Price,
				ItemType:    string(inv.Item.Type),
				IsAvailable: inv.Item.IsAvailable,
			},
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeAllocation(w, r)
	if !ok {
		return
	}
	result, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.JSON(w, http.StatusNotFound, Result{Success: false, Message: "expense invoice not found"})
			return
		}
		h.logger.Error("update expense failed", slog.Int64("expense_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusConflict
	}
	httpx.JSON(w, status, result)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	result, err := h.service.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.JSON(w, http.StatusNotFound, Result{Success: false, Message: "expense invoice not found"})
			return
		}
		h.logger.Error("delete expense failed", slog.Int64("expense_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) decodeAllocation(w http.ResponseWriter, r *http.Request) (CreateInput, bool) {
	var req allocateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return CreateInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return CreateInput{}, false
	}
	return CreateInput{
		Title:        req.Title,
		Qty:          req.Qty,
		Number:       req.InvoiceNumber,
		CustomerName: req.CustomerName,
	}, true
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return 0, false
	}
	return id, true
}
