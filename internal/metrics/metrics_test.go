package metrics

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterAndGauge(t *testing.T) {
	r := NewRegistry("test")
	c := r.RegisterCounter("ticks_total", "ticks")
	c.Inc()
	c.Add(4)
	assert.Equal(t, uint64(5), c.Value())
	assert.Equal(t, "test_ticks_total", c.Name())

	// Re-registering returns the same counter.
	assert.Same(t, c, r.RegisterCounter("ticks_total", "ticks"))
	assert.Same(t, c, r.Counter("ticks_total"))

	g := r.RegisterGauge("length", "len")
	g.Set(35)
	g.Add(-5)
	assert.Equal(t, int64(30), g.Value())
}

func TestHistogram(t *testing.T) {
	h := NewHistogram("h", "", []float64{1, 2, 4})
	for _, v := range []float64{0.5, 1, 1.5, 3, 10} {
		h.Observe(v)
	}

	assert.Equal(t, uint64(5), h.Count())
	assert.InDelta(t, 3.2, h.Mean(), 1e-9)
	assert.Equal(t, 10.0, h.Max())
	// Bucket bounds are inclusive.
	assert.Equal(t, []uint64{2, 3, 4, 5}, h.Cumulative())
	assert.Equal(t, 1.0, h.Quantile(0.2))
	assert.Equal(t, 4.0, h.Quantile(0.8))
	assert.Equal(t, 10.0, h.Quantile(0.99))
}

func TestHistogram_Empty(t *testing.T) {
	h := NewHistogram("h", "", nil)
	assert.Zero(t, h.Mean())
	assert.Zero(t, h.Quantile(0.5))
}

func TestHistogram_Concurrent(t *testing.T) {
	h := NewHistogram("h", "", nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.ObserveDuration(time.Millisecond)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(800), h.Count())
}

func TestRegistry_WriteJSON(t *testing.T) {
	r := NewRegistry("cursortrail")
	r.RegisterCounter("frames_total", "frames").Add(3)
	r.RegisterHistogram("tick_seconds", "ticks", []float64{0.001}).Observe(0.0005)

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))

	var out map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "counter", out["cursortrail_frames_total"]["type"])
	assert.Equal(t, float64(3), out["cursortrail_frames_total"]["value"])
	assert.Equal(t, float64(1), out["cursortrail_tick_seconds"]["count"])
}

func TestRegistry_ResetAndLogArgs(t *testing.T) {
	r := NewRegistry("ns")
	r.RegisterCounter("b", "").Inc()
	r.RegisterGauge("a", "").Set(2)

	args := r.LogArgs()
	assert.Equal(t, []any{"a", int64(2), "b", uint64(1)}, args)

	r.Reset()
	assert.Zero(t, r.Counter("b").Value())
}

func TestOverlayMetrics(t *testing.T) {
	m := NewOverlayMetrics(nil)

	m.RecordAnimation(time.Millisecond)
	m.RecordMaintenance(time.Millisecond, false)
	m.RecordMaintenance(time.Millisecond, true)
	m.RecordPaint(2)
	m.RecordPaint(0)

	assert.Equal(t, uint64(1), m.AnimationTicks.Value())
	assert.Equal(t, uint64(2), m.MaintenanceTicks.Value())
	assert.Equal(t, uint64(1), m.EnforceFailures.Value())
	assert.Equal(t, uint64(2), m.FramesPainted.Value())
	assert.Equal(t, uint64(2), m.DrawsSkipped.Value())

	snap := m.Registry().Snapshot()
	assert.Contains(t, snap, "cursortrail_animation_tick_seconds_p99")
	assert.NotEmpty(t, m.LogArgs())
}
