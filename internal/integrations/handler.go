package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/videobooker-api/pkg/logging"
)

// Handler exposes the registry over HTTP.
type Handler struct {
	registry  *Registry
	publisher EventPublisher
	logger    *logging.Logger
}

// NewHandler creates an integrations HTTP handler. A nil publisher drops events.
func NewHandler(registry *Registry, publisher EventPublisher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Handler{registry: registry, publisher: publisher, logger: logger}
}

// Routes mounts the integration endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{provider}", h.Get)
	r.Post("/{provider}/connect", h.Connect)
	r.Post("/{provider}/disconnect", h.Disconnect)
	r.Patch("/{provider}", h.Update)
}

// ConnectRequest is the body of POST /integrations/{provider}/connect.
type ConnectRequest struct {
	Metadata *Metadata `json:"metadata,omitempty"`
}

// UpdateRequest is the body of PATCH /integrations/{provider}.
type UpdateRequest struct {
	Status      *string   `json:"status,omitempty"`
	SandboxMode *bool     `json:"sandboxMode,omitempty"`
	Pages       *[]string `json:"pages,omitempty"`
	EventTypes  *[]string `json:"eventTypes,omitempty"`
}

type recordResponse struct {
	Integration *Record   `json:"integration"`
	Metadata    *Metadata `json:"metadata,omitempty"`
}

// List handles GET /integrations.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.registry.List(r.Context())
	if err != nil {
		h.fail(w, "list integrations", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Get handles GET /integrations/{provider}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	provider, err := ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		h.fail(w, "get integration", err)
		return
	}
	rec, err := h.registry.Get(r.Context(), provider)
	if err != nil {
		h.fail(w, "get integration", err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{Integration: rec})
}

// Connect handles POST /integrations/{provider}/connect.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	provider, err := ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		h.fail(w, "connect integration", err)
		return
	}
	var req ConnectRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	rec, err := h.registry.Connect(r.Context(), provider, req.Metadata)
	if err != nil {
		h.fail(w, "connect integration", err)
		return
	}
	h.publish(r.Context(), EventConnected, rec)
	writeJSON(w, http.StatusOK, recordResponse{Integration: rec, Metadata: req.Metadata})
}

// Disconnect handles POST /integrations/{provider}/disconnect.
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	provider, err := ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		h.fail(w, "disconnect integration", err)
		return
	}
	rec, err := h.registry.Disconnect(r.Context(), provider)
	if err != nil {
		h.fail(w, "disconnect integration", err)
		return
	}
	h.publish(r.Context(), EventDisconnected, rec)
	writeJSON(w, http.StatusOK, recordResponse{Integration: rec})
}

// Update handles PATCH /integrations/{provider}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	provider, err := ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		h.fail(w, "update integration", err)
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	patch := Patch{SandboxMode: req.SandboxMode, Pages: req.Pages, EventTypes: req.EventTypes}
	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			h.fail(w, "update integration", err)
			return
		}
		patch.Status = &status
	}
	rec, err := h.registry.UpdateStatus(r.Context(), provider, patch)
	if err != nil {
		h.fail(w, "update integration", err)
		return
	}
	h.publish(r.Context(), EventUpdated, rec)
	writeJSON(w, http.StatusOK, recordResponse{Integration: rec})
}

func (h *Handler) publish(ctx context.Context, eventType string, rec *Record) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := h.publisher.Publish(ctx, NewEvent(eventType, rec)); err != nil {
		h.logger.Warn("failed to publish integration event", "type", eventType, "provider", rec.Provider, "error", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrProviderUnsupported), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidPatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("failed to "+action, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeOptional decodes a JSON body, treating an empty body as zero value.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
