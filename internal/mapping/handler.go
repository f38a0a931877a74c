package mapping

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/videobooker-api/internal/integrations"
	"github.com/wolfman30/videobooker-api/internal/session"
	"github.com/wolfman30/videobooker-api/pkg/logging"
)

// RecordLookup returns a provider's record, or a disconnected one when absent.
type RecordLookup interface {
	Lookup(ctx context.Context, provider integrations.Provider) (*integrations.Record, error)
}

// Handler serves event options and session-scoped mappings.
type Handler struct {
	records RecordLookup
	cache   Cache
	logger  *logging.Logger

	sessions [sessionStripes]sync.Mutex
}

// sessionStripes bounds the number of session locks; ids hash onto a stripe.
const sessionStripes = 64

func (h *Handler) sessionLock(sessionID string) *sync.Mutex {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(sessionID))
	return &h.sessions[hash.Sum32()%sessionStripes]
}

// NewHandler creates a mapping handler.
func NewHandler(records RecordLookup, cache Cache, logger *logging.Logger) *Handler {
	if records == nil || cache == nil {
		panic("mapping: records and cache required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{records: records, cache: cache, logger: logger}
}

// Routes mounts the mapping endpoints on r (under /bookings).
func (h *Handler) Routes(r chi.Router) {
	r.Get("/options/{provider}", h.Options)
	r.Get("/mappings", h.List)
	r.Put("/mappings/{provider}/{serviceID}", h.Put)
	r.Delete("/mappings/{provider}", h.Reset)
}

// PutRequest is the body of PUT /bookings/mappings/{provider}/{serviceID}.
// An empty eventName clears the mapping.
type PutRequest struct {
	EventName string `json:"eventName"`
}

type optionsResponse struct {
	Provider integrations.Provider `json:"provider"`
	Options  []EventOption         `json:"options"`
}

type providerMapping struct {
	Mapping *Mapping `json:"mapping"`
	Stale   []Entry  `json:"stale"`
}

// Options handles GET /bookings/options/{provider}.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	provider, err := integrations.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		h.fail(w, "list options", err)
		return
	}
	options, err := h.optionsFor(r.Context(), provider)
	if err != nil {
		h.fail(w, "list options", err)
		return
	}
	writeJSON(w, http.StatusOK, optionsResponse{Provider: provider, Options: options})
}

// List handles GET /bookings/mappings.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sessionID := session.IDOrDefault(r.Context())
	set, err := h.cache.Load(r.Context(), sessionID)
	if err != nil {
		h.fail(w, "load mappings", err)
		return
	}
	out := make(map[integrations.Provider]providerMapping)
	for _, p := range integrations.KnownProviders {
		if !p.IsScheduling() {
			continue
		}
		pm, err := h.describe(r.Context(), set, p)
		if err != nil {
			h.fail(w, "load mappings", err)
			return
		}
		out[p] = pm
	}
	writeJSON(w, http.StatusOK, out)
}

// Put handles PUT /bookings/mappings/{provider}/{serviceID}.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	provider, err := integrations.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		h.fail(w, "set mapping", err)
		return
	}
	var req PutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	serviceID := chi.URLParam(r, "serviceID")
	h.update(w, r, provider, func(set *Set) error {
		return set.SetMapping(provider, serviceID, req.EventName)
	})
}

// Reset handles DELETE /bookings/mappings/{provider}.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	provider, err := integrations.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		h.fail(w, "reset mapping", err)
		return
	}
	h.update(w, r, provider, func(set *Set) error {
		return set.Reset(provider)
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, provider integrations.Provider, apply func(*Set) error) {
	ctx := r.Context()
	sessionID := session.IDOrDefault(ctx)

	lock := h.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	set, err := h.cache.Load(ctx, sessionID)
	if err != nil {
		h.fail(w, "load mappings", err)
		return
	}
	if err := apply(set); err != nil {
		h.fail(w, "update mapping", err)
		return
	}
	if err := h.cache.Save(ctx, sessionID, set); err != nil {
		h.fail(w, "save mappings", err)
		return
	}
	pm, err := h.describe(ctx, set, provider)
	if err != nil {
		h.fail(w, "update mapping", err)
		return
	}
	writeJSON(w, http.StatusOK, pm)
}

func (h *Handler) describe(ctx context.Context, set *Set, provider integrations.Provider) (providerMapping, error) {
	options, err := h.optionsFor(ctx, provider)
	if err != nil {
		return providerMapping{}, err
	}
	m := set.For(provider)
	stale := m.Stale(options)
	if stale == nil {
		stale = []Entry{}
	}
	return providerMapping{Mapping: m, Stale: stale}, nil
}

func (h *Handler) optionsFor(ctx context.Context, provider integrations.Provider) ([]EventOption, error) {
	rec, err := h.records.Lookup(ctx, provider)
	if err != nil {
		return nil, err
	}
	return OptionsFor(provider, rec), nil
}

func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, integrations.ErrProviderUnsupported), errors.Is(err, ErrInvalidMapping):
		writeError(w, http.StatusBadRequest, err.Error())
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
