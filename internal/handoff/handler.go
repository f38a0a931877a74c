package handoff

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/videobooker-api/internal/availability"
	"github.com/wolfman30/videobooker-api/internal/bookinglink"
	"github.com/wolfman30/videobooker-api/internal/integrations"
	"github.com/wolfman30/videobooker-api/internal/session"
	"github.com/wolfman30/videobooker-api/pkg/logging"
)

// Handler serves GET /bookings/handoff.
type Handler struct {
	previews *bookinglink.Service
	composer *Composer
	logger   *logging.Logger
}

// NewHandler creates a hand-off handler.
func NewHandler(previews *bookinglink.Service, composer *Composer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if composer == nil {
		composer = NewComposer(Templates{}, nil)
	}
	return &Handler{previews: previews, composer: composer, logger: logger}
}

// ServeHTTP handles GET /bookings/handoff?provider=&name=&date=.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var provider integrations.Provider
	if raw := strings.TrimSpace(q.Get("provider")); raw != "" {
		p, err := integrations.ParseProvider(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		provider = p
	}
	date, err := availability.ParseDate(q.Get("date"), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	art, err := h.previews.Preview(r.Context(), session.IDOrDefault(r.Context()), provider, date)
	if err != nil {
		if errors.Is(err, integrations.ErrProviderUnsupported) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to build handoff preview", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	msg, err := h.composer.Compose(art, Prospect{Name: q.Get("name")})
	if err != nil {
		h.logger.Error("failed to compose handoff", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
