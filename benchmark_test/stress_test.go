package benchmark_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/primesieve"
	"github.com/hupe1980/primesieve/resource"
)

// TestStress_ConcurrentRuns runs many sieves at once against one shared
// resource controller and checks every result and the final accounting.
func TestStress_ConcurrentRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	rc := resource.NewController(resource.Config{MaxWorkers: 4})

	g, ctx := errgroup.WithContext(t.Context())
	for i := range 16 {
		g.Go(func() error {
			res, err := primesieve.Run(ctx, boundSmall,
				primesieve.WithWorkers(1+i%7),
				primesieve.WithResourceController(rc),
			)
			if err != nil {
				return err
			}
			defer res.Close()
			assert.Equal(t, 78498, res.Count(), "run %d", i)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Zero(t, rc.MemoryUsage())
	assert.Zero(t, rc.RunningWorkers())
}

func TestStress_CancelMidRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	ctx, cancel := context.WithCancel(t.Context())
	metrics := &primesieve.BasicMetricsCollector{}

	done := make(chan error, 1)
	go func() {
		res, err := primesieve.Run(ctx, boundLarge,
			primesieve.WithWorkers(2),
			primesieve.WithMetricsCollector(metrics),
		)
		if err == nil {
			_ = res.Close()
		}
		done <- err
	}()
	cancel()

	if err := <-done; err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, int64(1), metrics.GetStats().RunCount)
}
