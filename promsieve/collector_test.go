package promsieve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/primesieve"
)

func family(t *testing.T, mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %s not gathered", name)
	return nil
}

func TestCollector_Run(t *testing.T) {
	c := New("")

	res, err := primesieve.Run(t.Context(), 100_000,
		primesieve.WithWorkers(4),
		primesieve.WithMetricsCollector(c),
	)
	require.NoError(t, err)
	defer res.Close()

	assert.InDelta(t, 1, promtestutil.ToFloat64(c.runs.WithLabelValues("success")), 0)
	assert.InDelta(t, 100_000, promtestutil.ToFloat64(c.bound), 0)
	assert.InDelta(t, 4, promtestutil.ToFloat64(c.workers), 0)
	assert.InDelta(t, 3125, promtestutil.ToFloat64(c.mapWords), 0)

	var marked uint64
	for _, ws := range res.Workers() {
		marked += ws.Marked
	}
	assert.InDelta(t, float64(marked), promtestutil.ToFloat64(c.marked), 0)

	mfs, err := c.Registry().Gather()
	require.NoError(t, err)
	h := family(t, mfs, "primesieve_worker_duration_seconds").GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(4), h.GetSampleCount())
}

func TestCollector_Error(t *testing.T) {
	c := New("sieve")
	c.RecordRun(1, 1, time.Millisecond, errors.New("invalid"))

	assert.InDelta(t, 1, promtestutil.ToFloat64(c.runs.WithLabelValues("error")), 0)
	assert.Equal(t, 1, promtestutil.CollectAndCount(c.runs, "sieve_runs_total"))
}

func TestCollector_WriteToTextfile(t *testing.T) {
	c := New("")
	c.RecordBaseSieve(10, time.Millisecond)
	c.RecordRun(320, 2, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "primes.prom")
	require.NoError(t, c.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `primesieve_runs_total{status="success"} 1`)
	assert.Contains(t, string(data), "primesieve_map_words 10")
}
