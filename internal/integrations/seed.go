package integrations

import (
	"context"
	"errors"
)

// SeedDemo connects Meta and Calendly with sample extras unless records
// already exist, mirroring the demo workspace new accounts start with.
func SeedDemo(ctx context.Context, r *Registry) error {
	for _, p := range []Provider{ProviderMeta, ProviderCalendly} {
		_, err := r.Get(ctx, p)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if _, err := r.Connect(ctx, p, nil); err != nil {
			return err
		}
	}
	return nil
}
