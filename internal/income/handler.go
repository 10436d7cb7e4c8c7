package income

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/catalog"
	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Handler wires HTTP endpoints for income invoices.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the income handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers income routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/income", h.handleCreate)
	r.Get("/income", h.handleList)
	r.Put("/income/{id}", h.handleUpdate)
	r.Delete("/income/{id}", h.handleDelete)
}

type createRequest struct {
	Invoice struct {
		CustomerName  string `json:"customer_name" validate:"required"`
		InvoiceNumber string `json:"invoice_number" validate:"required"`
	} `json:"invoice"`
	Item struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description" validate:"required"`
		Price       string `json:"price" validate:"required"`
		ItemType    string `json:"item_type" validate:"required,oneof=product service"`
		Qty         int    `json:"qty" validate:"required,gt=0"`
	} `json:"item"`
}

type updateRequest struct {
	InvoiceDate   string `json:"invoice_date" validate:"required"`
	InvoiceNumber string `json:"invoice_number" validate:"required"`
	CustomerName  string `json:"customer_name" validate:"required"`
}

type invoiceResponse struct {
	ID            int64           `json:"id"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Item          itemResponse    `json:"item"`
}

type itemResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ItemType    string          `json:"item_type"`
	Qty         int             `json:"qty"`
	IsAvailable bool            `json:"is_available"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	price, err := decimal.NewFromString(req.Item.Price)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "price must be a decimal string")
		return
	}

	input := CreateInput{
		Invoice: InvoiceFields{Number: req.Invoice.InvoiceNumber, CustomerName: req.Invoice.CustomerName},
		Item: ItemFields{
			Title:       req.Item.Title,
			Description: req.Item.Description,
			Price:       price,
			Type:        catalog.ItemType(req.Item.ItemType),
			Qty:         req.Item.Qty,
		},
	}
	if err := h.service.Create(r.Context(), input); err != nil {
		h.logger.Error("create income failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"success": true})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list income failed", slog.Any("error", err))
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
			TotalAmount:   inv.TotalAmount,
			Item: itemResponse{
				ID:          inv.Item.ID,
				Title:       inv.Item.Title,
				Description: inv.Item.Description,
				Price:       inv.Item.Price,
				ItemType:    string(inv.Item.Type),
				Qty:         inv.Item.Qty,
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
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.InvoiceDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invoice_date must be YYYY-MM-DD")
		return
	}

	err = h.service.Update(r.Context(), id, UpdateInput{Date: date, Number: req.InvoiceNumber, CustomerName: req.CustomerName})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.JSON(w, http.StatusNotFound, map[string]any{"success": false})
			return
		}
		h.logger.Error("update income failed", slog.Int64("income_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.JSON(w, http.StatusNotFound, map[string]any{"success": false})
			return
		}
		h.logger.Error("delete income failed", slog.Int64("income_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return 0, false
	}
	return id, true
}
