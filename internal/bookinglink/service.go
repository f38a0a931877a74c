package bookinglink

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/videobooker-api/internal/availability"
	"github.com/wolfman30/videobooker-api/internal/catalog"
	"github.com/wolfman30/videobooker-api/internal/integrations"
	"github.com/wolfman30/videobooker-api/internal/mapping"
	"github.com/wolfman30/videobooker-api/pkg/logging"
)

var previewTracer = otel.Tracer("videobooker.internal.bookinglink")

// RecordSource is the registry surface needed for previews.
type RecordSource interface {
	Lookup(ctx context.Context, provider integrations.Provider) (*integrations.Record, error)
	List(ctx context.Context) ([]integrations.Record, error)
}

// ActiveServices lists bookable services in catalog order.
type ActiveServices interface {
	ActiveOnly(ctx context.Context) ([]catalog.Service, error)
}

// Recorder receives preview metrics.
type Recorder interface {
	ObserveResolution(provider string, connected, fallback bool)
	ObservePreviewLatency(provider string, seconds float64)
}

// Config wires a Service.
type Config struct {
	Records  RecordSource
	Services ActiveServices
	Mappings mapping.Cache
	Slots    availability.SlotSource
	Tenant   string
	Metrics  Recorder
	Logger   *logging.Logger
}

// Service gathers a consistent snapshot of registry, catalog and session
// mappings and resolves it into an Artifact.
type Service struct {
	records  RecordSource
	services ActiveServices
	mappings mapping.Cache
	slots    availability.SlotSource
	resolver Resolver
	metrics  Recorder
	logger   *logging.Logger
}

// NewService validates cfg and builds a Service.
func NewService(cfg Config) *Service {
	if cfg.Records == nil || cfg.Services == nil || cfg.Mappings == nil {
		panic("bookinglink: records, services and mappings are required")
	}
	if cfg.Slots == nil {
		cfg.Slots = availability.EmptySource{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Service{
		records:  cfg.Records,
		services: cfg.Services,
		mappings: cfg.Mappings,
		slots:    cfg.Slots,
		resolver: Resolver{Tenant: cfg.Tenant},
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
}

// Preview resolves the booking link for provider. An empty provider selects
// the first connected scheduling provider.
func (s *Service) Preview(ctx context.Context, sessionID string, provider integrations.Provider, date time.Time) (Artifact, error) {
	ctx, span := previewTracer.Start(ctx, "bookinglink.preview")
	defer span.End()
	started := time.Now()

	if provider == "" {
		records, err := s.records.List(ctx)
		if err != nil {
			return s.failSpan(span, fmt.Errorf("bookinglink: list integrations: %w", err))
		}
		provider = SelectProvider(records)
	}
	span.SetAttributes(
		attribute.String("videobooker.provider", string(provider)),
		attribute.String("videobooker.session_id", sessionID),
	)
	if !provider.IsScheduling() {
		return s.failSpan(span, fmt.Errorf("%w: %q has no booking link", integrations.ErrProviderUnsupported, provider))
	}

	record, err := s.records.Lookup(ctx, provider)
	if err != nil {
		return s.failSpan(span, fmt.Errorf("bookinglink: lookup %s: %w", provider, err))
	}
	active, err := s.services.ActiveOnly(ctx)
	if err != nil {
		return s.failSpan(span, fmt.Errorf("bookinglink: active services: %w", err))
	}
	set, err := s.mappings.Load(ctx, sessionID)
	if err != nil {
		s.logger.Warn("mapping cache unavailable, treating as unmapped", "session_id", sessionID, "error", err)
		set = mapping.NewSet()
	}

	var raw []time.Time
	if record.Connected() {
		raw, err = s.slots.Slots(ctx, provider, date)
		if err != nil {
			s.logger.Warn("availability fetch failed, using placeholders", "provider", provider, "error", err)
			raw = nil
		}
	}

	art, err := s.resolver.Resolve(provider, record, set.For(provider), active, raw)
	if err != nil {
		return s.failSpan(span, err)
	}

	span.SetAttributes(
		attribute.Bool("videobooker.connected", art.Connected),
		attribute.Bool("videobooker.fallback_used", art.FallbackUsed),
	)
	if s.metrics != nil {
		s.metrics.ObserveResolution(string(provider), art.Connected, art.FallbackUsed)
		s.metrics.ObservePreviewLatency(string(provider), time.Since(started).Seconds())
	}
	if len(art.StaleMappings) > 0 {
		s.logger.Info("stale booking mappings ignored", "provider", provider, "session_id", sessionID, "count", len(art.StaleMappings))
	}
	return art, nil
}

// Availability returns normalized slots for provider on date.
func (s *Service) Availability(ctx context.Context, provider integrations.Provider, date time.Time, durationMinutes int) ([]availability.Slot, error) {
	if !provider.IsScheduling() {
		return nil, fmt.Errorf("%w: %q has no availability", integrations.ErrProviderUnsupported, provider)
	}
	raw, err := s.slots.Slots(ctx, provider, date)
	if err != nil {
		return nil, fmt.Errorf("bookinglink: fetch availability: %w", err)
	}
	return availability.Normalize(raw, durationMinutes)
}

func (s *Service) failSpan(span trace.Span, err error) (Artifact, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return Artifact{}, err
}
