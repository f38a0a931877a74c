package availability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/videobooker-api/internal/integrations"
)

// SlotSource fetches raw start times from a scheduling provider.
type SlotSource interface {
	Slots(ctx context.Context, provider integrations.Provider, date time.Time) ([]time.Time, error)
}

// SampleSource returns hourly start times beginning at the requested date.
// It stands in for live provider calls in demo workspaces.
type SampleSource struct {
	Count int
}

// NewSampleSource returns a source producing five hourly slots.
func NewSampleSource() SampleSource {
	return SampleSource{Count: 5}
}

func (s SampleSource) Slots(_ context.Context, provider integrations.Provider, date time.Time) ([]time.Time, error) {
	if !provider.IsScheduling() {
		return nil, fmt.Errorf("%w: %q has no availability", integrations.ErrProviderUnsupported, provider)
	}
	out := make([]time.Time, s.Count)
	for i := range out {
		out[i] = date.Add(time.Duration(i) * time.Hour)
	}
	return out, nil
}

// EmptySource reports no availability for every provider.
type EmptySource struct{}

func (EmptySource) Slots(context.Context, integrations.Provider, time.Time) ([]time.Time, error) {
	return nil, nil
}

// ParseDate accepts RFC3339 timestamps or YYYY-MM-DD dates (midnight UTC).
// An empty string yields now truncated to the hour.
func ParseDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.UTC().Truncate(time.Hour), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("availability: invalid date %q", raw)
	}
	return t, nil
}
