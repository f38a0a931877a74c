package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/videobooker-api/internal/bookinglink"
	"github.com/wolfman30/videobooker-api/internal/catalog"
	"github.com/wolfman30/videobooker-api/internal/handoff"
	httpmiddleware "github.com/wolfman30/videobooker-api/internal/http/middleware"
	"github.com/wolfman30/videobooker-api/internal/integrations"
	"github.com/wolfman30/videobooker-api/internal/mapping"
	"github.com/wolfman30/videobooker-api/pkg/logging"
)

// ReadinessCheck reports whether a backing dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Integrations       *integrations.Handler
	Catalog            *catalog.Handler
	Mappings           *mapping.Handler
	BookingLinks       *bookinglink.Handler
	Handoff            *handoff.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimiter throttles mutating requests (optional).
	RateLimiter *httpmiddleware.RateLimiter

	// ReadinessChecks are run by /ready, keyed by dependency name.
	ReadinessChecks map[string]ReadinessCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", health)
		public.Get("/ready", readiness(cfg.ReadinessChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Group(func(api chi.Router) {
		api.Use(limitMutations(cfg.RateLimiter))

		if cfg.Integrations != nil {
			api.Route("/integrations", func(ir chi.Router) {
				if cfg.BookingLinks != nil {
					ir.Get("/availability", cfg.BookingLinks.Availability)
				}
				cfg.Integrations.Routes(ir)
			})
		}
		if cfg.Catalog != nil {
			api.Route("/services", cfg.Catalog.Routes)
		}
		api.Route("/bookings", func(br chi.Router) {
			br.Use(httpmiddleware.Session)
			if cfg.Mappings != nil {
				cfg.Mappings.Routes(br)
			}
			if cfg.BookingLinks != nil {
				br.Get("/link", cfg.BookingLinks.Link)
			}
			if cfg.Handoff != nil {
				br.Method(http.MethodGet, "/handoff", cfg.Handoff)
			}
		})
	})

	return r
}

// limitMutations applies rl to non-GET requests only.
func limitMutations(rl *httpmiddleware.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rl == nil {
			return next
		}
		limited := rl.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				limited.ServeHTTP(w, r)
			}
		})
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readiness(checks map[string]ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		writeJSON(w, status, map[string]any{"status": overall, "checks": results})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
