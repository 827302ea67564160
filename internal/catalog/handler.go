package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gudangchat/gudangchat/internal/platform/httpx"
)

// Handler wires HTTP endpoints for catalog reads.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler constructs catalog handler.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.handleListProducts)
	r.Get("/products/{productID}", h.handleGetProduct)
	r.Get("/products/{productID}/ledger", h.handleProductLedger)
	r.Get("/transactions", h.handleListTransactions)
	r.Get("/transactions/{transactionID}", h.handleGetTransaction)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ProductFilter{
		Search:  q.Get("search"),
		Page:    intQuery(q.Get("page")),
		PerPage: intQuery(q.Get("per_page")),
	}
	products, err := h.repo.ListProducts(r.Context(), filter)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "productID")
	if !ok {
		return
	}
	product, err := h.repo.GetProduct(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err, "product")
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleProductLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "productID")
	if !ok {
		return
	}
	rows, err := h.repo.ProductLedger(r.Context(), id, intQuery(r.URL.Query().Get("limit")))
	if err != nil {
		h.logger.Error("product ledger", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := TransactionFilter{
		Type:    q.Get("type"),
		Page:    intQuery(q.Get("page")),
		PerPage: intQuery(q.Get("per_page")),
	}
	transactions, err := h.repo.ListTransactions(r.Context(), filter)
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, transactions)
}

func (h *Handler) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "transactionID")
	if !ok {
		return
	}
	detail, err := h.repo.GetTransaction(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err, "transaction")
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", param+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", what+" not found")
		return
	}
	h.logger.Error("get "+what, slog.Any("error", err))
	httpx.RespondError(w, err)
}

func intQuery(raw string) int {
	n, _ := strconv.Atoi(raw)
	return n
}
