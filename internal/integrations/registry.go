package integrations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/videobooker-api/pkg/logging"
)

// Sample extras applied on first connect when the provider returned nothing.
var (
	DefaultMetaPages = []string{"Demo Fitness IG", "Demo Fitness FB"}

	DefaultEventTypes = map[Provider][]string{
		ProviderCalendly: {"Intro Class", "Personal Training"},
		ProviderAcuity:   {"Aesthetic Consult", "Treatment Block"},
	}
)

// Metadata is the opaque payload returned by a provider's connect flow.
type Metadata struct {
	Pages       []string `json:"pages,omitempty"`
	SandboxMode *bool    `json:"sandboxMode,omitempty"`
	EventTypes  []string `json:"eventTypes,omitempty"`
}

// Patch is a partial update. Nil fields are left untouched; a non-nil empty
// slice clears the list.
type Patch struct {
	Status      *Status
	SandboxMode *bool
	Pages       *[]string
	EventTypes  *[]string
}

// TransitionObserver receives every applied status change.
type TransitionObserver interface {
	ObserveTransition(provider, from, to string)
}

// Option customizes a Registry.
type Option func(*Registry)

// WithClock overrides the time source used for ConnectedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithObserver registers a transition observer (metrics).
func WithObserver(o TransitionObserver) Option {
	return func(r *Registry) { r.observer = o }
}

// Registry owns the lifecycle of integration records. Writes to the same
// provider are serialized; different providers never block each other.
type Registry struct {
	store    Store
	logger   *logging.Logger
	now      func() time.Time
	observer TransitionObserver
	locks    map[Provider]*sync.Mutex
}

// NewRegistry builds a registry over the given store.
func NewRegistry(store Store, logger *logging.Logger, opts ...Option) *Registry {
	if store == nil {
		panic("integrations: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	r := &Registry{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		locks:  make(map[Provider]*sync.Mutex, len(KnownProviders)),
	}
	for _, p := range KnownProviders {
		r.locks[p] = &sync.Mutex{}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Connect marks the provider connected, stamping ConnectedAt on the first
// connection only. Provider metadata refreshes the extras; when neither the
// metadata nor the stored record carry any, sample defaults are merged in.
func (r *Registry) Connect(ctx context.Context, provider Provider, md *Metadata) (*Record, error) {
	return r.mutate(ctx, provider, func(rec *Record) error {
		applyMetadata(rec, md)
		mergeDefaults(rec, md)
		return r.transition(rec, StatusConnected)
	})
}

// Disconnect marks the provider disconnected. Connection history is kept.
func (r *Registry) Disconnect(ctx context.Context, provider Provider) (*Record, error) {
	return r.mutate(ctx, provider, func(rec *Record) error {
		return r.transition(rec, StatusDisconnected)
	})
}

// UpdateStatus applies a partial update, creating a disconnected record first
// when the provider has none.
func (r *Registry) UpdateStatus(ctx context.Context, provider Provider, patch Patch) (*Record, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *patch.Status)
	}
	if err := checkPatchFields(provider, patch); err != nil {
		return nil, err
	}
	return r.mutate(ctx, provider, func(rec *Record) error {
		if patch.Status != nil {
			if err := r.transition(rec, *patch.Status); err != nil {
				return err
			}
		}
		if rec.Meta != nil {
			if patch.SandboxMode != nil {
				rec.Meta.SandboxMode = *patch.SandboxMode
			}
			if patch.Pages != nil {
				rec.Meta.Pages = cleanNames(*patch.Pages)
			}
		}
		if rec.Scheduling != nil && patch.EventTypes != nil {
			rec.Scheduling.EventTypes = cleanNames(*patch.EventTypes)
		}
		return nil
	})
}

// Get returns the stored record or ErrNotFound.
func (r *Registry) Get(ctx context.Context, provider Provider) (*Record, error) {
	if !provider.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrProviderUnsupported, provider)
	}
	rec, err := r.store.Get(ctx, provider)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("integrations: get %s: %w", provider, err)
	}
	return rec, nil
}

// Lookup is Get with absence mapped to a fresh disconnected record.
func (r *Registry) Lookup(ctx context.Context, provider Provider) (*Record, error) {
	rec, err := r.Get(ctx, provider)
	if errors.Is(err, ErrNotFound) {
		return NewRecord(provider), nil
	}
	return rec, err
}

// List returns one record per known provider in KnownProviders order.
func (r *Registry) List(ctx context.Context) ([]Record, error) {
	out := make([]Record, 0, len(KnownProviders))
	for _, p := range KnownProviders {
		rec, err := r.Lookup(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (r *Registry) mutate(ctx context.Context, provider Provider, apply func(*Record) error) (*Record, error) {
	lock, ok := r.locks[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderUnsupported, provider)
	}
	lock.Lock()
	defer lock.Unlock()

	rec, err := r.store.Get(ctx, provider)
	if errors.Is(err, ErrNotFound) {
		rec = NewRecord(provider)
	} else if err != nil {
		return nil, fmt.Errorf("integrations: load %s: %w", provider, err)
	}

	from := rec.Status
	if err := apply(rec); err != nil {
		return nil, err
	}
	if err := r.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("integrations: save %s: %w", provider, err)
	}
	if from != rec.Status {
		r.logger.Info("integration status changed", "provider", rec.Provider, "from", from, "to", rec.Status)
		if r.observer != nil {
			r.observer.ObserveTransition(string(rec.Provider), string(from), string(rec.Status))
		}
	}
	return rec.Clone(), nil
}

// transition validates and applies a status change in place. Logging and the
// observer run in mutate once the record is saved.
func (r *Registry) transition(rec *Record, to Status) error {
	from := rec.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	rec.Status = to
	if to == StatusConnected && rec.ConnectedAt == nil {
		t := r.now()
		rec.ConnectedAt = &t
	}
	return nil
}

func checkPatchFields(provider Provider, patch Patch) error {
	if !provider.Valid() {
		return fmt.Errorf("%w: %q", ErrProviderUnsupported, provider)
	}
	if provider == ProviderMeta && patch.EventTypes != nil {
		return fmt.Errorf("%w: eventTypes on %s", ErrInvalidPatch, provider)
	}
	if provider.IsScheduling() && (patch.Pages != nil || patch.SandboxMode != nil) {
		return fmt.Errorf("%w: pages/sandboxMode on %s", ErrInvalidPatch, provider)
	}
	return nil
}

func applyMetadata(rec *Record, md *Metadata) {
	if md == nil {
		return
	}
	if rec.Meta != nil {
		if len(md.Pages) > 0 {
			rec.Meta.Pages = cleanNames(md.Pages)
		}
		if md.SandboxMode != nil {
			rec.Meta.SandboxMode = *md.SandboxMode
		}
	}
	if rec.Scheduling != nil && len(md.EventTypes) > 0 {
		rec.Scheduling.EventTypes = cleanNames(md.EventTypes)
	}
}

func mergeDefaults(rec *Record, md *Metadata) {
	if rec.Meta != nil && len(rec.Meta.Pages) == 0 {
		rec.Meta.Pages = cloneStrings(DefaultMetaPages)
		if md == nil || md.SandboxMode == nil {
			rec.Meta.SandboxMode = true
		}
	}
	if rec.Scheduling != nil && len(rec.Scheduling.EventTypes) == 0 {
		rec.Scheduling.EventTypes = cloneStrings(DefaultEventTypes[rec.Provider])
	}
}

// cleanNames trims entries and drops blanks, keeping order.
func cleanNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, name := range in {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
