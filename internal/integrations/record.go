package integrations

import (
	"encoding/json"
	"fmt"
	"time"
)

// MetaExtras is the Meta-specific part of a record.
type MetaExtras struct {
	Pages       []string
	SandboxMode bool
}

// SchedulingExtras is the Calendly/Acuity-specific part of a record.
type SchedulingExtras struct {
	EventTypes []string
}

// Record is the connection state of one provider. Exactly one of Meta or
// Scheduling is set, matching Provider.
type Record struct {
	Provider    Provider
	Status      Status
	ConnectedAt *time.Time
	Meta        *MetaExtras
	Scheduling  *SchedulingExtras
}

// NewRecord returns a disconnected record with an empty extras variant.
func NewRecord(p Provider) *Record {
	rec := &Record{Provider: p, Status: StatusDisconnected}
	if p == ProviderMeta {
		rec.Meta = &MetaExtras{}
	} else {
		rec.Scheduling = &SchedulingExtras{}
	}
	return rec
}

// Connected reports whether the record is currently usable.
func (r *Record) Connected() bool {
	return r != nil && r.Status == StatusConnected
}

// EventTypes returns the provider-declared event types, nil for Meta.
func (r *Record) EventTypes() []string {
	if r == nil || r.Scheduling == nil {
		return nil
	}
	return r.Scheduling.EventTypes
}

// Clone returns a deep copy so callers never share slices with the store.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{Provider: r.Provider, Status: r.Status}
	if r.ConnectedAt != nil {
		t := *r.ConnectedAt
		out.ConnectedAt = &t
	}
	if r.Meta != nil {
		out.Meta = &MetaExtras{Pages: cloneStrings(r.Meta.Pages), SandboxMode: r.Meta.SandboxMode}
	}
	if r.Scheduling != nil {
		out.Scheduling = &SchedulingExtras{EventTypes: cloneStrings(r.Scheduling.EventTypes)}
	}
	return out
}

// validate checks the variant matches the provider.
func (r *Record) validate() error {
	if !r.Provider.Valid() {
		return fmt.Errorf("%w: %q", ErrProviderUnsupported, r.Provider)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}
	if r.Provider == ProviderMeta && (r.Meta == nil || r.Scheduling != nil) {
		return fmt.Errorf("integrations: meta record must carry meta extras only")
	}
	if r.Provider.IsScheduling() && (r.Scheduling == nil || r.Meta != nil) {
		return fmt.Errorf("integrations: %s record must carry scheduling extras only", r.Provider)
	}
	return nil
}

// recordView is the flat wire shape consumed by the dashboard.
type recordView struct {
	Provider    Provider   `json:"provider"`
	Status      Status     `json:"status"`
	ConnectedAt *time.Time `json:"connectedAt,omitempty"`
	Pages       []string   `json:"pages,omitempty"`
	SandboxMode *bool      `json:"sandboxMode,omitempty"`
	EventTypes  []string   `json:"eventTypes,omitempty"`
}

func (r *Record) view() recordView {
	v := recordView{Provider: r.Provider, Status: r.Status, ConnectedAt: r.ConnectedAt}
	if r.Meta != nil {
		sandbox := r.Meta.SandboxMode
		v.Pages = r.Meta.Pages
		v.SandboxMode = &sandbox
	}
	if r.Scheduling != nil {
		v.EventTypes = r.Scheduling.EventTypes
	}
	return v
}

func (v recordView) record() (*Record, error) {
	rec := NewRecord(v.Provider)
	rec.Status = v.Status
	rec.ConnectedAt = v.ConnectedAt
	if rec.Meta != nil {
		rec.Meta.Pages = v.Pages
		if v.SandboxMode != nil {
			rec.Meta.SandboxMode = *v.SandboxMode
		}
	} else {
		rec.Scheduling.EventTypes = v.EventTypes
	}
	if err := rec.validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// MarshalJSON flattens the provider variant.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.view())
}

// UnmarshalJSON rebuilds the variant from the flat shape.
func (r *Record) UnmarshalJSON(data []byte) error {
	var v recordView
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	rec, err := v.record()
	if err != nil {
		return err
	}
	*r = *rec
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
