package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/videobooker-api/pkg/logging"
)

var catalogTracer = otel.Tracer("videobooker.internal.catalog")

// Catalog coordinates reads and writes to the service store. ReplaceAll holds
// the catalog write lock; SetActive holds the read lock plus a per-service
// lock so toggles on different services proceed in parallel.
type Catalog struct {
	store  Store
	logger *logging.Logger
	newID  func() string

	mu       sync.RWMutex
	svcLocks sync.Map // service ID -> *sync.Mutex
}

// New builds a catalog over store.
func New(store Store, logger *logging.Logger) *Catalog {
	if store == nil {
		panic("catalog: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Catalog{
		store:  store,
		logger: logger,
		newID:  func() string { return uuid.NewString() },
	}
}

// List returns every service in catalog order.
func (c *Catalog) List(ctx context.Context) ([]Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	services, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	if services == nil {
		services = []Service{}
	}
	return services, nil
}

// ActiveOnly returns active services in catalog order.
func (c *Catalog) ActiveOnly(ctx context.Context) ([]Service, error) {
	services, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterActive(services), nil
}

// Get returns one service or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, id string) (*Service, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Get(ctx, id)
}

// checkID rejects ids that can never name a stored service.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

// ReplaceAll validates every input, assigns fresh IDs and swaps the catalog.
// Nothing is written when any input is invalid.
func (c *Catalog) ReplaceAll(ctx context.Context, inputs []ServiceInput) ([]Service, error) {
	ctx, span := catalogTracer.Start(ctx, "catalog.replace_all")
	defer span.End()
	span.SetAttributes(attribute.Int("videobooker.service_count", len(inputs)))

	services := make([]Service, 0, len(inputs))
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			span.SetStatus(codes.Error, "invalid service")
			return nil, fmt.Errorf("service %d: %w", i+1, err)
		}
		services = append(services, in.toService(c.newID()))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.ReplaceAll(ctx, services); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("catalog: replace: %w", err)
	}
	c.svcLocks.Clear()
	c.logger.Info("service catalog replaced", "services", len(services), "active", len(filterActive(services)))
	return services, nil
}

// SetActive toggles a single service.
func (c *Catalog) SetActive(ctx context.Context, id string, active bool) (*Service, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Locks are only created for services that exist; ReplaceAll clears them.
	if _, err := c.store.Get(ctx, id); err != nil {
		return nil, err
	}
	lock, _ := c.svcLocks.LoadOrStore(id, &sync.Mutex{})
	lock.(*sync.Mutex).Lock()
	defer lock.(*sync.Mutex).Unlock()

	svc, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc.IsActive == active {
		return svc, nil
	}
	svc.IsActive = active
	if err := c.store.Save(ctx, *svc); err != nil {
		return nil, fmt.Errorf("catalog: save %s: %w", id, err)
	}
	c.logger.Info("service activation changed", "service_id", id, "active", active)
	return svc, nil
}

// SeedDemo installs DemoServices when the catalog is empty.
func (c *Catalog) SeedDemo(ctx context.Context) error {
	existing, err := c.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	_, err = c.ReplaceAll(ctx, DemoServices())
	return err
}
