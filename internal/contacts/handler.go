package contacts

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gudangchat/gudangchat/internal/platform/httpx"
)

// Handler wires HTTP endpoints for contact management.
type Handler struct {
	logger    *slog.Logger
	repo      *Repository
	validator *validator.Validate
}

// NewHandler constructs contacts handler.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo, validator: validator.New()}
}

// MountRoutes registers contact routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/contacts", h.handleList)
	r.Post("/contacts", h.handleCreate)
	r.Get("/contacts/{contactID}", h.handleGet)
	r.Put("/contacts/{contactID}", h.handleUpdate)
	r.Get("/contacts/{contactID}/stats", h.handleStats)
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Type    Type   `json:"type" validate:"required,oneof=SUPPLIER CUSTOMER"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	list, err := h.repo.List(r.Context(), Type(q.Get("type")), limit, offset)
	if err != nil {
		h.logger.Error("list contacts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.repo.Create(r.Context(), Contact{
		Name:    req.Name,
		Type:    req.Type,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		h.logger.Error("create contact", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	contact, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contact)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	updated, err := h.repo.Update(r.Context(), id, Contact{
		Name:    req.Name,
		Type:    req.Type,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	stats, err := h.repo.Stats(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (contactRequest, bool) {
	var req contactRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "body must be valid JSON")
		return contactRequest{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return contactRequest{}, false
	}
	return req, true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "contactID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "contactID must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "contact not found")
		return
	}
	h.logger.Error("contact lookup", slog.Any("error", err))
	httpx.RespondError(w, err)
}
