package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/videobooker-api/pkg/logging"
)

// Handler serves the service catalog API.
type Handler struct {
	catalog *Catalog
	logger  *logging.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(catalog *Catalog, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{catalog: catalog, logger: logger}
}

// Routes mounts the catalog endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Put("/", h.Replace)
	r.Patch("/{serviceID}", h.Update)
}

// ReplaceRequest is the body of PUT /services.
type ReplaceRequest struct {
	Services []ServiceInput `json:"services"`
}

// UpdateRequest is the body of PATCH /services/{serviceID}.
type UpdateRequest struct {
	IsActive *bool `json:"isActive"`
}

type listResponse struct {
	Services []Service `json:"services"`
}

// List handles GET /services. ?active=true limits the result to active services.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		services []Service
		err      error
	)
	if r.URL.Query().Get("active") == "true" {
		services, err = h.catalog.ActiveOnly(r.Context())
	} else {
		services, err = h.catalog.List(r.Context())
	}
	if err != nil {
		h.fail(w, "list services", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Services: services})
}

// Replace handles PUT /services.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	var req ReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	services, err := h.catalog.ReplaceAll(r.Context(), req.Services)
	if err != nil {
		h.fail(w, "replace services", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Services: services})
}

// Update handles PATCH /services/{serviceID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "isActive is required")
		return
	}
	svc, err := h.catalog.SetActive(r.Context(), chi.URLParam(r, "serviceID"), *req.IsActive)
	if err != nil {
		h.fail(w, "update service", err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrInvalidService):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("failed to "+action, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
