// Package mapping pairs catalog services with provider event types and picks
// the event a booking link should point at.
package mapping

import (
	"strings"

	"github.com/wolfman30/videobooker-api/internal/integrations"
)

// EventOption is a bookable event type offered by a provider.
type EventOption struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
}

// fallbackOptions is appended after provider-declared event types so every
// scheduling provider always offers something.
var fallbackOptions = map[integrations.Provider][]EventOption{
	integrations.ProviderCalendly: {
		{Name: "Intro Class", DurationMinutes: 30},
		{Name: "Consultation", DurationMinutes: 45},
		{Name: "Personal Training", DurationMinutes: 60},
	},
	integrations.ProviderAcuity: {
		{Name: "Aesthetic Consult", DurationMinutes: 30},
		{Name: "Follow-up Session", DurationMinutes: 30},
		{Name: "Treatment Block", DurationMinutes: 60},
	},
}

// FallbackOptions returns a copy of the fixed catalog for provider.
func FallbackOptions(provider integrations.Provider) []EventOption {
	src := fallbackOptions[provider]
	out := make([]EventOption, len(src))
	copy(out, src)
	return out
}

// InferDuration guesses an event's length from keywords in its name.
func InferDuration(name string) int {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "intro"), strings.Contains(lower, "consult"):
		return 30
	case strings.Contains(lower, "follow"):
		return 30
	case strings.Contains(lower, "personal"), strings.Contains(lower, "training"), strings.Contains(lower, "treatment"):
		return 60
	}
	return 45
}

// OptionsFor merges the record's event types with the provider fallbacks.
// Record entries come first; names are de-duplicated case-sensitively with
// the first occurrence winning.
func OptionsFor(provider integrations.Provider, record *integrations.Record) []EventOption {
	fallbacks := fallbackOptions[provider]
	eventTypes := record.EventTypes()

	out := make([]EventOption, 0, len(eventTypes)+len(fallbacks))
	seen := make(map[string]struct{}, cap(out))
	add := func(opt EventOption) {
		if _, dup := seen[opt.Name]; dup {
			return
		}
		seen[opt.Name] = struct{}{}
		out = append(out, opt)
	}

	for _, name := range eventTypes {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		add(EventOption{Name: name, DurationMinutes: InferDuration(name)})
	}
	for _, opt := range fallbacks {
		add(opt)
	}
	return out
}

// FindOption looks up an option by exact name.
func FindOption(options []EventOption, name string) (EventOption, bool) {
	for _, opt := range options {
		if opt.Name == name {
			return opt, true
		}
	}
	return EventOption{}, false
}
