package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the item ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers item routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Put("/items/{id}", h.handleUpdateItem)
}

type updateItemRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	ItemType    *string `json:"item_type" validate:"omitempty,oneof=product service"`
	Qty         *int    `json:"qty" validate:"omitempty,gt=0"`
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "item id must be an integer")
		return
	}
	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	update := ItemUpdate{
		Title:       req.Title,
		Description: req.Description,
		Qty:         req.Qty,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "price must be a decimal string")
			return
		}
		update.Price = &price
	}
	if req.ItemType != nil {
		itemType := ItemType(*req.ItemType)
		update.Type = &itemType
	}

	if err := h.service.UpdateItem(r.Context(), id, update); err != nil {
		h.logger.Error("update item failed", slog.Int64("item_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}
