// Package integrations tracks third-party provider connections (Meta for
// social publishing, Calendly and Acuity for scheduling) and owns the
// lifecycle of their records.
package integrations

import (
	"fmt"
	"strings"
)

// Provider identifies a third-party integration.
type Provider string

const (
	ProviderMeta     Provider = "meta"
	ProviderCalendly Provider = "calendly"
	ProviderAcuity   Provider = "acuity"
)

// KnownProviders lists every supported provider in display order.
var KnownProviders = []Provider{ProviderMeta, ProviderCalendly, ProviderAcuity}

// ParseProvider normalizes and validates a provider key.
func ParseProvider(raw string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrProviderUnsupported, raw)
	}
	return p, nil
}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	switch p {
	case ProviderMeta, ProviderCalendly, ProviderAcuity:
		return true
	}
	return false
}

// IsScheduling reports whether p exposes bookable event types.
func (p Provider) IsScheduling() bool {
	return p == ProviderCalendly || p == ProviderAcuity
}

// Title is the human-readable provider name.
func (p Provider) Title() string {
	switch p {
	case ProviderMeta:
		return "Meta"
	case ProviderCalendly:
		return "Calendly"
	case ProviderAcuity:
		return "Acuity Scheduling"
	}
	return string(p)
}

// Status is the connection state of an integration.
type Status string

const (
	StatusConnected      Status = "connected"
	StatusNeedsAttention Status = "needs_attention"
	StatusDisconnected   Status = "disconnected"
)

// ParseStatus validates a status value.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Valid reports whether s is a defined status.
func (s Status) Valid() bool {
	switch s {
	case StatusConnected, StatusNeedsAttention, StatusDisconnected:
		return true
	}
	return false
}

// allowedTransitions is the integration state machine. Staying in the same
// state is always permitted.
var allowedTransitions = map[Status][]Status{
	StatusDisconnected:   {StatusConnected},
	StatusConnected:      {StatusDisconnected, StatusNeedsAttention},
	StatusNeedsAttention: {StatusConnected, StatusDisconnected},
}

// CanTransition reports whether from -> to is a defined transition.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
