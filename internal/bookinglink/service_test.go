package bookinglink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/videobooker-api/internal/availability"
	"github.com/wolfman30/videobooker-api/internal/catalog"
	"github.com/wolfman30/videobooker-api/internal/integrations"
	"github.com/wolfman30/videobooker-api/internal/mapping"
	"github.com/wolfman30/videobooker-api/internal/observability/metrics"
	"github.com/wolfman30/videobooker-api/pkg/logging"
)

type failingSource struct{}

func (failingSource) Slots(context.Context, integrations.Provider, time.Time) ([]time.Time, error) {
	return nil, errors.New("provider timeout")
}

type brokenCache struct{}

func (brokenCache) Load(context.Context, string) (*mapping.Set, error) {
	return nil, errors.New("redis down")
}

func (brokenCache) Save(context.Context, string, *mapping.Set) error { return nil }

type fixture struct {
	registry *integrations.Registry
	catalog  *catalog.Catalog
	cache    *mapping.MemoryCache
	metrics  *metrics.BookingMetrics
	reg      *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		registry: integrations.NewRegistry(integrations.NewMemoryStore(), logging.Discard()),
		catalog:  catalog.New(catalog.NewMemoryStore(), logging.Discard()),
		cache:    mapping.NewMemoryCache(logging.Discard()),
		reg:      prometheus.NewRegistry(),
	}
	f.metrics = metrics.NewBookingMetrics(f.reg)
	require.NoError(t, f.catalog.SeedDemo(ctx))
	return f
}

func (f *fixture) service(source availability.SlotSource) *Service {
	return NewService(Config{
		Records:  f.registry,
		Services: f.catalog,
		Mappings: f.cache,
		Slots:    source,
		Tenant:   "studio",
		Metrics:  f.metrics,
		Logger:   logging.Discard(),
	})
}

func TestPreviewUsesSessionMappingAndSlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.registry.Connect(ctx, integrations.ProviderCalendly, nil)
	require.NoError(t, err)

	services, err := f.catalog.ActiveOnly(ctx)
	require.NoError(t, err)
	set := mapping.NewSet()
	require.NoError(t, set.SetMapping(integrations.ProviderCalendly, services[1].ID, "Personal Training"))
	require.NoError(t, f.cache.Save(ctx, "sess-1", set))

	date := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	art, err := f.service(availability.NewSampleSource()).Preview(ctx, "sess-1", integrations.ProviderCalendly, date)
	require.NoError(t, err)

	assert.Equal(t, "Personal Training", art.EventLabel)
	assert.Equal(t, services[1].ID, art.ServiceID)
	assert.Equal(t, "https://calendly.com/studio/personal-training", art.BookingURL)
	assert.Len(t, art.Availability, 5)
	assert.Len(t, art.Slots, 4)
	assert.False(t, art.FallbackUsed)

	assert.Equal(t, float64(1), f.resolutions(t, "calendly", "true", "false"))
}

func (f *fixture) resolutions(t *testing.T, provider, connected, fallback string) float64 {
	t.Helper()
	families, err := f.reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "videobooker_bookings_link_resolutions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["provider"] == provider && labels["connected"] == connected && labels["fallback"] == fallback {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestPreviewDisconnectedSkipsSlotFetch(t *testing.T) {
	f := newFixture(t)
	art, err := f.service(failingSource{}).Preview(context.Background(), "sess", integrations.ProviderAcuity, time.Now())
	require.NoError(t, err)
	assert.False(t, art.Connected)
	assert.True(t, art.FallbackUsed)
	assert.NotEmpty(t, art.Warning)
	assert.Equal(t, "Aesthetic Consult", art.EventLabel)
}

func TestPreviewDegradesOnCollaboratorFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.registry.Connect(ctx, integrations.ProviderAcuity, nil)
	require.NoError(t, err)

	svc := NewService(Config{
		Records:  f.registry,
		Services: f.catalog,
		Mappings: brokenCache{},
		Slots:    failingSource{},
		Logger:   logging.Discard(),
	})
	art, err := svc.Preview(ctx, "sess", integrations.ProviderAcuity, time.Now())
	require.NoError(t, err)
	assert.True(t, art.Connected)
	assert.True(t, art.FallbackUsed)
	assert.Len(t, art.Slots, 4)
}

func TestPreviewSelectsConnectedProvider(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.registry.Connect(ctx, integrations.ProviderAcuity, nil)
	require.NoError(t, err)

	art, err := f.service(nil).Preview(ctx, "sess", "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, integrations.ProviderAcuity, art.Provider)
}

func TestPreviewRejectsMeta(t *testing.T) {
	f := newFixture(t)
	_, err := f.service(nil).Preview(context.Background(), "sess", integrations.ProviderMeta, time.Now())
	require.ErrorIs(t, err, integrations.ErrProviderUnsupported)
}

func TestAvailability(t *testing.T) {
	f := newFixture(t)
	svc := f.service(availability.NewSampleSource())
	date := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	slots, err := svc.Availability(context.Background(), integrations.ProviderCalendly, date, 30)
	require.NoError(t, err)
	require.Len(t, slots, 5)
	assert.Equal(t, date.Add(30*time.Minute), slots[0].End)

	_, err = svc.Availability(context.Background(), integrations.ProviderCalendly, date, 0)
	require.ErrorIs(t, err, availability.ErrInvalidDuration)
}
