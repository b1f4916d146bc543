package leads

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadpilot/leadpilot/internal/http/respond"
	"github.com/leadpilot/leadpilot/pkg/logging"
)

// Handler handles HTTP requests for leads
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// ListLeadsResponse is the paginated envelope for the list endpoint.
type ListLeadsResponse struct {
	Data       []*Lead `json:"data"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	Total      int     `json:"total"`
	TotalPages int     `json:"totalPages"`
}

// Create handles POST /leads/create
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lead, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.writeRepoError(w, err, "failed to create lead")
		return
	}

	h.logger.Info("lead created", "id", lead.ID, "email", lead.Email)
	respond.JSON(w, http.StatusCreated, lead)
}

// List handles GET /leads. Filter and pagination parameters are parsed
// leniently: malformed values leave their field unconstrained.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := ParseFilter(query)
	page := ResolvePage(query)

	total, err := h.repo.Count(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to count leads", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	found, err := h.repo.Find(r.Context(), filter, page.Skip, page.Limit)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, http.StatusOK, ListLeadsResponse{
		Data:       found,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: TotalPages(total, page.Limit),
	})
}

// Get handles GET /leads/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respond.Error(w, http.StatusBadRequest, "lead id is required")
		return
	}

	lead, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, err, "failed to get lead")
		return
	}
	respond.JSON(w, http.StatusOK, lead)
}

// Update handles PATCH /leads/{id}. Unknown fields are silently
// dropped; a payload with no whitelisted field is rejected.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respond.Error(w, http.StatusBadRequest, "lead id is required")
		return
	}

	var req UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Empty() {
		respond.Error(w, http.StatusBadRequest, ErrNoUpdateFields.Error())
		return
	}

	lead, err := h.repo.UpdateByID(r.Context(), id, &req)
	if err != nil {
		h.writeRepoError(w, err, "failed to update lead")
		return
	}

	h.logger.Info("lead updated", "id", lead.ID)
	respond.JSON(w, http.StatusOK, lead)
}

// Delete handles DELETE /leads/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respond.Error(w, http.StatusBadRequest, "lead id is required")
		return
	}

	if err := h.repo.DeleteByID(r.Context(), id); err != nil {
		h.writeRepoError(w, err, "failed to delete lead")
		return
	}

	h.logger.Info("lead deleted", "id", id)
	respond.JSON(w, http.StatusOK, map[string]string{"message": "lead deleted"})
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, ErrLeadNotFound):
		respond.Error(w, http.StatusNotFound, ErrLeadNotFound.Error())
	case IsValidation(err):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}
