package bookinglink

import (
	"fmt"
	"time"

	"github.com/wolfman30/videobooker-api/internal/availability"
	"github.com/wolfman30/videobooker-api/internal/catalog"
	"github.com/wolfman30/videobooker-api/internal/integrations"
	"github.com/wolfman30/videobooker-api/internal/mapping"
)

// Artifact is the booking-link preview handed to the dashboard and the DM
// assistant. It is rebuilt on every request.
type Artifact struct {
	Provider        integrations.Provider      `json:"provider"`
	Status          integrations.Status        `json:"status"`
	Connected       bool                       `json:"connected"`
	Warning         string                     `json:"warning,omitempty"`
	ServiceID       string                     `json:"serviceId,omitempty"`
	ServiceName     string                     `json:"serviceName,omitempty"`
	EventLabel      string                     `json:"eventLabel"`
	Mapped          bool                       `json:"mapped"`
	DurationMinutes int                        `json:"durationMinutes"`
	BookingURL      string                     `json:"bookingUrl"`
	Slots           []availability.DisplaySlot `json:"slots"`
	Availability    []availability.Slot        `json:"availability"`
	FallbackUsed    bool                       `json:"fallbackUsed"`
	StaleMappings   []mapping.Entry            `json:"staleMappings,omitempty"`
}

// Resolver derives artifacts. It holds no state besides the provider
// account name embedded in URLs.
type Resolver struct {
	Tenant string
}

// Resolve combines the provider record, the session mapping, the active
// catalog and raw provider start times into an Artifact. A missing or
// unhealthy record degrades the artifact with a warning instead of failing.
func (r Resolver) Resolve(
	provider integrations.Provider,
	record *integrations.Record,
	m *mapping.Mapping,
	active []catalog.Service,
	raw []time.Time,
) (Artifact, error) {
	if !provider.IsScheduling() {
		return Artifact{}, fmt.Errorf("%w: %q has no booking link", integrations.ErrProviderUnsupported, provider)
	}
	if record == nil {
		record = integrations.NewRecord(provider)
	}
	if record.Provider != provider {
		return Artifact{}, fmt.Errorf("bookinglink: %s record passed for %s", record.Provider, provider)
	}

	options := mapping.OptionsFor(provider, record)
	primary := mapping.PrimaryEventFor(m, active, options)

	bookingURL, err := BookingURL(provider, r.Tenant, primary.EventName)
	if err != nil {
		return Artifact{}, err
	}

	duration := durationFor(primary, options)
	slots, err := availability.Normalize(raw, duration)
	if err != nil {
		return Artifact{}, err
	}

	art := Artifact{
		Provider:        provider,
		Status:          record.Status,
		Connected:       record.Connected(),
		Warning:         warningFor(record),
		EventLabel:      primary.EventName,
		Mapped:          primary.Mapped,
		DurationMinutes: duration,
		BookingURL:      bookingURL,
		Slots:           availability.WithFallback(slots, availability.FallbackTimes, availability.DefaultPreviewLimit),
		Availability:    slots,
		FallbackUsed:    len(slots) == 0,
		StaleMappings:   m.Stale(options),
	}
	if primary.Service != nil {
		art.ServiceID = primary.Service.ID
		art.ServiceName = primary.Service.Name
	}
	return art, nil
}

// durationFor prefers the event option's length, then the service's.
func durationFor(primary mapping.Primary, options []mapping.EventOption) int {
	if opt, ok := mapping.FindOption(options, primary.EventName); ok && opt.DurationMinutes > 0 {
		return opt.DurationMinutes
	}
	if primary.Service != nil && primary.Service.DurationMinutes > 0 {
		return primary.Service.DurationMinutes
	}
	return availability.DefaultDurationMinutes
}

func warningFor(record *integrations.Record) string {
	switch record.Status {
	case integrations.StatusConnected:
		return ""
	case integrations.StatusNeedsAttention:
		return fmt.Sprintf("%s needs attention. Reconnect it so new bookings keep syncing.", record.Provider.Title())
	}
	return fmt.Sprintf("%s is not connected. Connect it to publish live booking links.", record.Provider.Title())
}

// SelectProvider picks the scheduling provider to preview: the first
// connected one in display order, else Calendly.
func SelectProvider(records []integrations.Record) integrations.Provider {
	for _, rec := range records {
		if rec.Provider.IsScheduling() && rec.Connected() {
			return rec.Provider
		}
	}
	return integrations.ProviderCalendly
}
