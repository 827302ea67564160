package draft

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gudangchat/gudangchat/internal/platform/httpx"
)

// maxImageBytes caps uploaded receipt photos.
const maxImageBytes = 10 << 20

// Handler wires HTTP endpoints for the draft pipeline.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs draft handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers draft routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/drafts/parse", h.handleParseText)
	r.Post("/drafts/parse-image", h.handleParseImage)
	r.Post("/drafts/merge", h.handleMergeChoice)
	r.Post("/drafts/supplier", h.handleSupplierChoice)
}

type parseTextRequest struct {
	Text         string `json:"text" validate:"required"`
	CurrentDraft *Draft `json:"current_draft"`
}

func (h *Handler) handleParseText(w http.ResponseWriter, r *http.Request) {
	var req parseTextRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.ParseText(r.Context(), req.Text, req.CurrentDraft))
}

func (h *Handler) handleParseImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "expected multipart form with an image file")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "image file is required")
		return
	}
	defer func() { _ = file.Close() }()
	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "could not read image")
		return
	}

	var current *Draft
	if raw := r.FormValue("current_draft"); raw != "" {
		current = &Draft{}
		if err := decodeDraft(raw, current); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "current_draft must be valid JSON")
			return
		}
	}
	httpx.JSON(w, http.StatusOK, h.service.ParseImage(r.Context(), image, current))
}

type choiceRequest struct {
	Draft  Draft  `json:"draft"`
	Choice string `json:"choice" validate:"required"`
}

func (h *Handler) handleMergeChoice(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeChoice(w, r)
	if !ok {
		return
	}
	var out Draft
	var err error
	switch req.Choice {
	case mergeActionAdd:
		out, err = ApplyMerge(req.Draft)
	case mergeActionNew:
		out, err = ApplyCreateNew(req.Draft)
	default:
		httpx.Problem(w, http.StatusBadRequest, "Invalid Choice", "choice must be one of the suggested actions")
		return
	}
	if err != nil {
		h.respondChoiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleSupplierChoice(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeChoice(w, r)
	if !ok {
		return
	}
	var out Draft
	var err error
	switch req.Choice {
	case supplierActionReuse:
		out, err = ApplySupplierReuse(req.Draft)
	case supplierActionNew:
		out, err = ApplySupplierNew(req.Draft)
	default:
		httpx.Problem(w, http.StatusBadRequest, "Invalid Choice", "choice must be one of the suggested actions")
		return
	}
	if err != nil {
		h.respondChoiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) decodeChoice(w http.ResponseWriter, r *http.Request) (choiceRequest, bool) {
	var req choiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "body must be valid JSON")
		return choiceRequest{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return choiceRequest{}, false
	}
	return req, true
}

func decodeDraft(raw string, into *Draft) error {
	return json.Unmarshal([]byte(raw), into)
}

func (h *Handler) respondChoiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNoPendingMerge) || errors.Is(err, ErrNoPendingSupplier) {
		httpx.Problem(w, http.StatusConflict, "Nothing Pending", err.Error())
		return
	}
	h.logger.Error("apply choice", slog.Any("error", err))
	httpx.RespondError(w, err)
}
