package commit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gudangchat/gudangchat/internal/platform/httpx"
)

// AfterCommit runs once per successful commit, outside the transaction.
// Used to refresh the catalog snapshot so new products and suppliers
// become visible to the draft pipeline right away.
type AfterCommit func(ctx context.Context)

// Handler wires HTTP endpoints for transaction commits.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	validator   *validator.Validate
	afterCommit AfterCommit
}

// NewHandler constructs commit handler. afterCommit may be nil.
func NewHandler(logger *slog.Logger, service *Service, afterCommit AfterCommit) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), afterCommit: afterCommit}
}

// MountRoutes registers commit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/transactions/commit", h.handleCommit)
	r.Post("/transactions/sale", h.handleSale)
	r.Post("/stock/add", h.handleStockAdd)
	r.Post("/products/{productID}/recalculate", h.handleRecalculate)
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	h.respondResult(w, r, h.service.Commit(r.Context(), in))
}

func (h *Handler) handleSale(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	h.respondResult(w, r, h.service.CommitSale(r.Context(), in))
}

type stockAddRequest struct {
	ProductName string  `json:"product_name" validate:"required"`
	Variant     string  `json:"variant"`
	Qty         float64 `json:"qty" validate:"required,gt=0"`
	Unit        string  `json:"unit"`
	TotalPrice  float64 `json:"total_price"`
	Notes       string  `json:"notes"`
}

// handleStockAdd records a manual opening-stock entry as a regular
// inbound transaction against a synthetic counterparty.
func (h *Handler) handleStockAdd(w http.ResponseWriter, r *http.Request) {
	var req stockAddRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in := Input{
		CounterpartyName: "Stok Awal",
		Items: []LineInput{{
			ProductName: req.ProductName,
			Variant:     req.Variant,
			Qty:         req.Qty,
			Unit:        req.Unit,
			TotalPrice:  req.TotalPrice,
			Notes:       req.Notes,
		}},
		Total:       req.TotalPrice,
		InputSource: SourceManual,
	}
	h.respondResult(w, r, h.service.Commit(r.Context(), in))
}

func (h *Handler) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "productID must be a UUID")
		return
	}
	res, err := h.service.RecalculateProductCost(r.Context(), productID)
	if errors.Is(err, ErrProductNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
		return
	}
	if err != nil {
		h.logger.Error("recalculate", slog.Any("error", err))
		httpx.JSON(w, http.StatusInternalServerError, res)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "body must be valid JSON")
		return Input{}, false
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return Input{}, false
	}
	return in, true
}

func (h *Handler) respondResult(w http.ResponseWriter, r *http.Request, res Result) {
	if !res.Success {
		httpx.JSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	if h.afterCommit != nil {
		h.afterCommit(r.Context())
	}
	httpx.JSON(w, http.StatusCreated, res)
}
