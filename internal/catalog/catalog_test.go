package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/videobooker-api/pkg/logging"
)

func boolPtr(b bool) *bool { return &b }

func newTestCatalog() *Catalog {
	return New(NewMemoryStore(), logging.Discard())
}

func TestReplaceAllAssignsFreshIDs(t *testing.T) {
	c := newTestCatalog()
	ctx := context.Background()

	first, err := c.ReplaceAll(ctx, DemoServices())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.NotEmpty(t, first[0].ID)
	assert.NotEqual(t, first[0].ID, first[1].ID)
	assert.True(t, first[0].IsActive)

	second, err := c.ReplaceAll(ctx, DemoServices())
	require.NoError(t, err)
	assert.NotEqual(t, first[0].ID, second[0].ID)

	listed, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, listed)
}

func TestReplaceAllValidation(t *testing.T) {
	tests := []struct {
		name  string
		input ServiceInput
	}{
		{"blank name", ServiceInput{Name: "  ", DurationMinutes: 30}},
		{"zero duration", ServiceInput{Name: "Intro", DurationMinutes: 0}},
		{"negative duration", ServiceInput{Name: "Intro", DurationMinutes: -15}},
		{"negative price", ServiceInput{Name: "Intro", DurationMinutes: 30, Price: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCatalog()
			ctx := context.Background()
			_, err := c.ReplaceAll(ctx, DemoServices())
			require.NoError(t, err)

			_, err = c.ReplaceAll(ctx, []ServiceInput{DemoServices()[0], tt.input})
			require.ErrorIs(t, err, ErrInvalidService)

			listed, err := c.List(ctx)
			require.NoError(t, err)
			assert.Len(t, listed, 2, "catalog must be untouched on validation failure")
		})
	}
}

func TestReplaceAllAllowsFreeServices(t *testing.T) {
	c := newTestCatalog()
	out, err := c.ReplaceAll(context.Background(), []ServiceInput{{Name: " Trial ", DurationMinutes: 20}})
	require.NoError(t, err)
	assert.Equal(t, "Trial", out[0].Name)
	assert.Zero(t, out[0].Price)
}

func TestActiveOnlyPreservesOrder(t *testing.T) {
	c := newTestCatalog()
	ctx := context.Background()
	_, err := c.ReplaceAll(ctx, []ServiceInput{
		{Name: "A", DurationMinutes: 30},
		{Name: "B", DurationMinutes: 30, IsActive: boolPtr(false)},
		{Name: "C", DurationMinutes: 45},
	})
	require.NoError(t, err)

	active, err := c.ActiveOnly(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "A", active[0].Name)
	assert.Equal(t, "C", active[1].Name)
}

func TestSetActive(t *testing.T) {
	c := newTestCatalog()
	ctx := context.Background()
	services, err := c.ReplaceAll(ctx, DemoServices())
	require.NoError(t, err)

	updated, err := c.SetActive(ctx, services[0].ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	active, err := c.ActiveOnly(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Personal Training", active[0].Name)

	all, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "deactivation never deletes")

	_, err = c.SetActive(ctx, uuid.NewString(), true)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetActiveUnknownIDLeavesNoLock(t *testing.T) {
	c := newTestCatalog()
	ctx := context.Background()
	_, err := c.ReplaceAll(ctx, DemoServices())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := c.SetActive(ctx, uuid.NewString(), true)
		require.ErrorIs(t, err, ErrNotFound)
	}
	_, err = c.SetActive(ctx, "not-a-uuid", true)
	require.ErrorIs(t, err, ErrNotFound)

	locks := 0
	c.svcLocks.Range(func(_, _ any) bool {
		locks++
		return true
	})
	assert.Zero(t, locks)
}

func TestSetActiveConcurrentWithReplace(t *testing.T) {
	c := newTestCatalog()
	ctx := context.Background()
	services, err := c.ReplaceAll(ctx, DemoServices())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = c.SetActive(ctx, services[i%2].ID, i%3 == 0)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = c.ReplaceAll(ctx, []ServiceInput{{Name: fmt.Sprintf("svc-%d", i), DurationMinutes: 30}})
		}(i)
	}
	wg.Wait()

	listed, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestSeedDemoOnlyWhenEmpty(t *testing.T) {
	c := newTestCatalog()
	ctx := context.Background()
	require.NoError(t, c.SeedDemo(ctx))
	first, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)

	require.NoError(t, c.SeedDemo(ctx))
	second, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
