package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/videobooker-api/internal/integrations"
)

// ErrInvalidMapping is returned for mapping writes missing a service ID.
var ErrInvalidMapping = errors.New("mapping: invalid mapping")

// Entry pairs a service with the event type it books.
type Entry struct {
	ServiceID string `json:"serviceId"`
	EventName string `json:"eventName"`
}

// Mapping is an insertion-ordered serviceID -> event name map for one
// provider. Earlier entries win when picking the primary event.
type Mapping struct {
	entries []Entry
}

// Set maps serviceID to eventName. A blank event name clears the entry.
// Updating an existing entry keeps its position.
func (m *Mapping) Set(serviceID, eventName string) {
	eventName = strings.TrimSpace(eventName)
	for i, e := range m.entries {
		if e.ServiceID != serviceID {
			continue
		}
		if eventName == "" {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
		} else {
			m.entries[i].EventName = eventName
		}
		return
	}
	if eventName != "" {
		m.entries = append(m.entries, Entry{ServiceID: serviceID, EventName: eventName})
	}
}

// Get returns the event name mapped to serviceID.
func (m *Mapping) Get(serviceID string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, e := range m.entries {
		if e.ServiceID == serviceID {
			return e.EventName, true
		}
	}
	return "", false
}

// Entries returns a copy of the entries in insertion order.
func (m *Mapping) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len reports the number of mapped services.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Reset removes every entry.
func (m *Mapping) Reset() {
	m.entries = nil
}

// Stale returns entries whose event name is not among options. They are kept
// for display but never used to build a booking link.
func (m *Mapping) Stale(options []EventOption) []Entry {
	var out []Entry
	for _, e := range m.Entries() {
		if _, ok := FindOption(options, e.EventName); !ok {
			out = append(out, e)
		}
	}
	return out
}

// MarshalJSON encodes the mapping as a JSON object in insertion order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.ServiceID)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.EventName)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of strings, preserving key order.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		m.entries = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("mapping: expected JSON object")
	}

	var out Mapping
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.New("mapping: expected string key")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("mapping: value for %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// Set holds one Mapping per scheduling provider.
type Set struct {
	byProvider map[integrations.Provider]*Mapping
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{byProvider: make(map[integrations.Provider]*Mapping)}
}

func checkSchedulingProvider(provider integrations.Provider) error {
	if !provider.IsScheduling() {
		return fmt.Errorf("%w: %q has no bookable events", integrations.ErrProviderUnsupported, provider)
	}
	return nil
}

// For returns the provider's mapping, never nil.
func (s *Set) For(provider integrations.Provider) *Mapping {
	if m, ok := s.byProvider[provider]; ok {
		return m
	}
	return &Mapping{}
}

// SetMapping maps serviceID to eventName for provider; a blank event name
// clears it. Names are not validated against the provider's options.
func (s *Set) SetMapping(provider integrations.Provider, serviceID, eventName string) error {
	if err := checkSchedulingProvider(provider); err != nil {
		return err
	}
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return fmt.Errorf("%w: service id is required", ErrInvalidMapping)
	}
	if s.byProvider == nil {
		s.byProvider = make(map[integrations.Provider]*Mapping)
	}
	m, ok := s.byProvider[provider]
	if !ok {
		m = &Mapping{}
		s.byProvider[provider] = m
	}
	m.Set(serviceID, eventName)
	return nil
}

// Reset clears the provider's mapping.
func (s *Set) Reset(provider integrations.Provider) error {
	if err := checkSchedulingProvider(provider); err != nil {
		return err
	}
	delete(s.byProvider, provider)
	return nil
}

// MarshalJSON encodes the set as {"calendly":{...},"acuity":{...}}.
func (s Set) MarshalJSON() ([]byte, error) {
	out := make(map[integrations.Provider]Mapping, len(s.byProvider))
	for p, m := range s.byProvider {
		if m.Len() > 0 {
			out[p] = *m
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the set. Unknown or non-scheduling provider keys are
// dropped.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := NewSet()
	for key, body := range raw {
		provider, err := integrations.ParseProvider(key)
		if err != nil || !provider.IsScheduling() {
			continue
		}
		var m Mapping
		if err := json.Unmarshal(body, &m); err != nil {
			return fmt.Errorf("mapping: %s: %w", provider, err)
		}
		out.byProvider[provider] = &m
	}
	*s = *out
	return nil
}
