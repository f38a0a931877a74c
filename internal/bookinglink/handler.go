package bookinglink

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/videobooker-api/internal/availability"
	"github.com/wolfman30/videobooker-api/internal/integrations"
	"github.com/wolfman30/videobooker-api/internal/session"
	"github.com/wolfman30/videobooker-api/pkg/logging"
)

// Handler serves booking-link previews and raw availability.
type Handler struct {
	service *Service
	logger  *logging.Logger
	now     func() time.Time
}

// NewHandler creates a booking-link handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger, now: time.Now}
}

type availabilityResponse struct {
	Provider        integrations.Provider `json:"provider"`
	Date            time.Time             `json:"date"`
	DurationMinutes int                   `json:"durationMinutes"`
	Slots           []availability.Slot   `json:"slots"`
}

// Link handles GET /bookings/link?provider=&date=.
func (h *Handler) Link(w http.ResponseWriter, r *http.Request) {
	provider, date, ok := h.parseQuery(w, r, true)
	if !ok {
		return
	}
	art, err := h.service.Preview(r.Context(), session.IDOrDefault(r.Context()), provider, date)
	if err != nil {
		h.fail(w, "preview booking link", err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

// Availability handles GET /integrations/availability?provider=&date=&duration=.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	provider, date, ok := h.parseQuery(w, r, false)
	if !ok {
		return
	}
	duration := availability.DefaultDurationMinutes
	if raw := r.URL.Query().Get("duration"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "duration must be an integer")
			return
		}
		duration = d
	}
	slots, err := h.service.Availability(r.Context(), provider, date, duration)
	if err != nil {
		h.fail(w, "fetch availability", err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{
		Provider:        provider,
		Date:            date,
		DurationMinutes: duration,
		Slots:           slots,
	})
}

// parseQuery reads provider and date. An empty provider is allowed only when
// optionalProvider is set.
func (h *Handler) parseQuery(w http.ResponseWriter, r *http.Request, optionalProvider bool) (integrations.Provider, time.Time, bool) {
	q := r.URL.Query()
	var provider integrations.Provider
	if raw := strings.TrimSpace(q.Get("provider")); raw != "" || !optionalProvider {
		p, err := integrations.ParseProvider(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return "", time.Time{}, false
		}
		provider = p
	}
	date, err := availability.ParseDate(q.Get("date"), h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", time.Time{}, false
	}
	return provider, date, true
}

func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, integrations.ErrProviderUnsupported), errors.Is(err, availability.ErrInvalidDuration):
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
