package query

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/event-finder/internal/domain"
	"github.com/couchcryptid/event-finder/internal/location"
	"github.com/couchcryptid/event-finder/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// delayedPlatform resolves every request with pos after delay on clk.
type delayedPlatform struct {
	clk   clockwork.Clock
	delay time.Duration
	pos   domain.Position
	opts  chan domain.AcquisitionOptions
}

func (p *delayedPlatform) Name() string { return "delayed" }

func (p *delayedPlatform) GetCurrentPosition(ctx context.Context, onSuccess location.SuccessFunc, _ location.ErrorFunc, opts domain.AcquisitionOptions) {
	p.opts <- opts
	go func() {
		select {
		case <-p.clk.After(p.delay):
			onSuccess(p.pos)
		case <-ctx.Done():
		}
	}()
}

func TestProviderDrivesController(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clk := clockwork.NewFakeClock()
	platform := &delayedPlatform{
		clk:   clk,
		delay: 100 * time.Millisecond,
		pos:   domain.Position{Latitude: 10, Longitude: 20},
		opts:  make(chan domain.AcquisitionOptions, 1),
	}
	metrics := observability.NewMetricsForTesting()
	provider := location.NewProvider(platform, nil, nil, observability.DiscardLogger(), metrics)
	defer provider.Close()

	f := &fakeFetcher{}
	c := NewController(f, "abc", observability.DiscardLogger(), metrics)

	readings, unsubscribe := provider.Subscribe()
	defer unsubscribe()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- c.Run(runCtx, provider.Reading(), readings) }()

	provider.Start()
	assert.Equal(t, domain.DefaultOptions(), <-platform.opts)

	// Before the fix arrives the query goes out with null coordinates.
	require.Eventually(t, func() bool {
		return c.Snapshot().State == StateReady
	}, time.Second, 5*time.Millisecond)
	first := f.all()
	require.Len(t, first, 1)
	assert.True(t, first[0].Reading.Absent())

	require.NoError(t, clk.BlockUntilContext(ctx, 1))
	clk.Advance(100 * time.Millisecond)

	require.Eventually(t, func() bool {
		snap := c.Snapshot()
		return snap.State == StateReady && snap.Query.Reading == domain.NewReading(10, 20)
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, domain.NewReading(10, 20), provider.Reading())

	stop()
	require.NoError(t, <-done)

	queries := f.all()
	require.Len(t, queries, 2)
	assert.Equal(t, "abc", queries[1].ID)
	assert.Equal(t, domain.NewReading(10, 20), queries[1].Reading)
}
