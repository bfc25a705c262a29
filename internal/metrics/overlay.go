package metrics

import (
	"time"
)

// OverlayMetrics holds the metrics the overlay session records.
type OverlayMetrics struct {
	registry *Registry
	start    time.Time

	// Counters
	AnimationTicks   *Counter
	MaintenanceTicks *Counter
	FramesPainted    *Counter
	DrawsSkipped     *Counter
	CursorErrors     *Counter
	EnforceFailures  *Counter
	ConfigReloads    *Counter

	// Gauges
	ChainLength   *Gauge
	UptimeSeconds *Gauge

	// Histograms
	AnimationDuration   *Histogram
	MaintenanceDuration *Histogram
}

// NewOverlayMetrics creates and registers the overlay metrics. A nil
// registry gets a fresh "cursortrail" registry.
func NewOverlayMetrics(registry *Registry) *OverlayMetrics {
	if registry == nil {
		registry = NewRegistry("cursortrail")
	}

	return &OverlayMetrics{
		registry: registry,
		start:    time.Now(),

		AnimationTicks: registry.RegisterCounter(
			"animation_ticks_total",
			"Number of physics ticks run",
		),
		MaintenanceTicks: registry.RegisterCounter(
			"maintenance_ticks_total",
			"Number of window maintenance ticks run",
		),
		FramesPainted: registry.RegisterCounter(
			"frames_painted_total",
			"Number of frames painted onto the overlay",
		),
		DrawsSkipped: registry.RegisterCounter(
			"draws_skipped_total",
			"Number of draw calls skipped after a failure",
		),
		CursorErrors: registry.RegisterCounter(
			"cursor_errors_total",
			"Number of failed cursor position reads",
		),
		EnforceFailures: registry.RegisterCounter(
			"enforce_failures_total",
			"Number of failed window attribute re-assertions",
		),
		ConfigReloads: registry.RegisterCounter(
			"config_reloads_total",
			"Number of configuration reloads applied",
		),

		ChainLength: registry.RegisterGauge(
			"chain_length",
			"Number of nodes in the trail chain",
		),
		UptimeSeconds: registry.RegisterGauge(
			"uptime_seconds",
			"Seconds since the overlay started",
		),

		AnimationDuration: registry.RegisterHistogram(
			"animation_tick_seconds",
			"Duration of physics ticks in seconds",
			TickBuckets,
		),
		MaintenanceDuration: registry.RegisterHistogram(
			"maintenance_tick_seconds",
			"Duration of maintenance ticks in seconds",
			TickBuckets,
		),
	}
}

// Registry returns the underlying registry.
func (m *OverlayMetrics) Registry() *Registry {
	return m.registry
}

// RecordAnimation records one physics tick.
func (m *OverlayMetrics) RecordAnimation(d time.Duration) {
	m.AnimationTicks.Inc()
	m.AnimationDuration.ObserveDuration(d)
}

// RecordMaintenance records one maintenance tick and whether the window
// attributes were re-asserted.
func (m *OverlayMetrics) RecordMaintenance(d time.Duration, ok bool) {
	m.MaintenanceTicks.Inc()
	m.MaintenanceDuration.ObserveDuration(d)
	if !ok {
		m.EnforceFailures.Inc()
	}
}

// RecordPaint records a painted frame and the draw calls it skipped.
func (m *OverlayMetrics) RecordPaint(skipped int) {
	m.FramesPainted.Inc()
	if skipped > 0 {
		m.DrawsSkipped.Add(uint64(skipped))
	}
}

// UpdateUptime updates the uptime gauge.
func (m *OverlayMetrics) UpdateUptime() {
	m.UptimeSeconds.Set(int64(time.Since(m.start).Seconds()))
}

// LogArgs refreshes uptime and returns the registry snapshot as slog args.
func (m *OverlayMetrics) LogArgs() []any {
	m.UpdateUptime()
	return m.registry.LogArgs()
}
