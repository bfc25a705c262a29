// Package session wires the overlay together and owns its lifecycle.
//
// Start brings the pieces up in a fixed order: size the surface, assert the
// click-through attributes, hide the system cursor once the window is
// configured, then register the animation and maintenance tasks. Shutdown undoes the OS-global side
// effects exactly once, cursor first, and is safe to call from any
// goroutine and any exit path.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"cursortrail/internal/config"
	"cursortrail/internal/cursorgate"
	"cursortrail/internal/health"
	"cursortrail/internal/metrics"
	"cursortrail/internal/overlay"
	"cursortrail/internal/platform"
	"cursortrail/internal/schedule"
	"cursortrail/internal/trail"
)

// Task names registered on the scheduler.
const (
	TaskAnimate  = "animate"
	TaskMaintain = "maintain"
)

// OffScreen is where every node starts before the first cursor sample.
var OffScreen = trail.Point{X: -100, Y: -100}

var (
	ErrAlreadyStarted = errors.New("session: already started")
	ErrShutdown       = errors.New("session: shut down")
)

// Options configures a Session. Adapter and Config are required.
type Options struct {
	Adapter platform.Adapter
	Config  *config.Config
	Logger  *slog.Logger
	Clock   schedule.Clock
	Metrics *metrics.OverlayMetrics
	Health  *health.Checker

	// FallbackSize reports the primary monitor size when the adapter cannot
	// report the virtual screen.
	FallbackSize func() (width, height int)

	// FixedStep leaves the animation task off the scheduler. The caller's
	// frame loop advances it with Step once per tick instead.
	FixedStep bool
}

// Session is one running overlay.
type Session struct {
	adapter  platform.Adapter
	logger   *slog.Logger
	sched    *schedule.Scheduler
	metrics  *metrics.OverlayMetrics
	health   *health.Checker
	gate     *cursorgate.Gate
	painter  *overlay.Painter
	fallback func() (int, int)
	fixed    bool

	// Owned by the goroutine that polls the scheduler.
	surface  *overlay.Surface
	chain    *trail.Chain
	style    trail.Style
	frame    trail.Frame
	enforced bool
	ticked   bool
	wantHide bool

	cfg     atomic.Pointer[config.Config]
	pending atomic.Pointer[config.Config]
	started atomic.Bool
	stopped atomic.Bool

	shutdownOnce sync.Once
	shutdownErr  error
}

// New validates opts and returns an idle session. Nothing touches the OS
// until Start.
func New(opts Options) (*Session, error) {
	if opts.Adapter == nil {
		return nil, errors.New("session: nil adapter")
	}
	if opts.Config == nil {
		return nil, errors.New("session: nil config")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewOverlayMetrics(nil)
	}
	hc := opts.Health
	if hc == nil {
		hc = health.NewChecker(logger)
	}
	hc.Register(health.ComponentWindow, false)
	hc.Register(health.ComponentCursor, false)

	cfg := opts.Config.Clone()
	s := &Session{
		adapter:  opts.Adapter,
		logger:   logger,
		sched:    schedule.New(opts.Clock),
		metrics:  m,
		health:   hc,
		gate:     cursorgate.New(opts.Adapter, logger.With("component", "cursorgate")),
		painter:  overlay.NewPainter(logger.With("component", "painter")),
		fallback: opts.FallbackSize,
		fixed:    opts.FixedStep,
		style:    styleFor(cfg),
	}
	s.cfg.Store(cfg)
	return s, nil
}

func styleFor(cfg *config.Config) trail.Style {
	return trail.Style{
		StartWidth: cfg.Trail.StartWidth,
		MinWidth:   cfg.Trail.MinWidth,
		Color:      cfg.TrailColor(),
	}
}

// Start brings the overlay up. The native window does not have to exist
// yet: attribute enforcement that fails here is retried on the first
// animation tick and then on every maintenance tick. The system cursor is
// hidden only after an enforcement succeeds.
func (s *Session) Start() error {
	if s.stopped.Load() {
		return ErrShutdown
	}
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	cfg := s.cfg.Load()

	s.surface = overlay.New(s.adapter, overlay.Config{
		Title:          cfg.Overlay.Title,
		TransparentKey: cfg.TransparentKey(),
		FallbackSize:   s.fallback,
	}, s.logger.With("component", "overlay"))
	if s.surface.Degraded() {
		s.health.Set(health.ComponentWindow, health.StatusDegraded, "sized to primary monitor", nil)
	}

	chain, err := trail.NewChain(cfg.Trail.Length, cfg.Trail.Friction, OffScreen)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	s.chain = chain
	s.metrics.ChainLength.Set(int64(chain.Len()))
	trail.BuildFrame(s.chain, s.style, &s.frame)

	s.wantHide = cfg.Overlay.HideCursor
	s.enforce()

	if !s.fixed {
		if err := s.sched.Add(schedule.Task{
			Name:      TaskAnimate,
			Period:    cfg.AnimationTick(),
			Immediate: true,
			Run:       s.animate,
		}); err != nil {
			return err
		}
	}
	if err := s.sched.Add(schedule.Task{
		Name:   TaskMaintain,
		Period: cfg.MaintenanceTick(),
		Run:    s.maintain,
	}); err != nil {
		return err
	}

	s.health.SetReady(true)
	s.logger.Info("overlay started",
		"bounds", s.surface.Bounds().String(),
		"nodes", chain.Len(),
		"tick", cfg.AnimationTick(),
		"maintenance", cfg.MaintenanceTick(),
		"cursor_hidden", s.gate.Hidden(),
		"fixed_step", s.fixed,
	)
	return nil
}

// enforce asserts the window attributes and records the outcome.
func (s *Session) enforce() {
	s.enforcedAs(s.surface.EnforceAttributes())
}

func (s *Session) enforcedAs(err error) {
	s.enforced = err == nil
	if err != nil {
		s.logger.Debug("enforce window attributes", "error", err)
	}
	s.health.Report(health.ComponentWindow, err)
	s.hideWhenConfigured()
}

// hideWhenConfigured hides the system cursor the first time the overlay
// window is in place.
func (s *Session) hideWhenConfigured() {
	if !s.wantHide || !s.enforced || s.stopped.Load() {
		return
	}
	s.wantHide = false
	s.gate.Hide()
}

// Step advances the animation by one tick. It is meant for sessions built
// with FixedStep and must be called from the goroutine that polls the
// scheduler.
func (s *Session) Step() {
	if !s.started.Load() || s.chain == nil {
		return
	}
	s.animate(s.sched.Clock().Now())
}

// animate samples the cursor, advances the chain and rebuilds the frame.
// A failed cursor read leaves the previous frame in place.
func (s *Session) animate(time.Time) {
	if s.stopped.Load() {
		return
	}
	start := time.Now()
	defer func() { s.metrics.RecordAnimation(time.Since(start)) }()

	if !s.ticked {
		s.ticked = true
		if !s.enforced {
			s.enforce()
		}
	}

	x, y, err := s.adapter.CursorPosition()
	changed := s.health.Report(health.ComponentCursor, err)
	if err != nil {
		s.metrics.CursorErrors.Inc()
		if changed {
			s.logger.Debug("cursor position", "error", err)
		}
		return
	}

	ox, oy := s.surface.Offset()
	s.chain.Update(trail.Point{X: float64(x - ox), Y: float64(y - oy)})
	trail.BuildFrame(s.chain, s.style, &s.frame)
}

// maintain re-shows and re-asserts the window, then applies any reloaded
// cosmetic settings.
func (s *Session) maintain(time.Time) {
	if s.stopped.Load() {
		return
	}
	start := time.Now()

	err := s.surface.Maintain()
	s.enforcedAs(err)

	if cfg := s.pending.Swap(nil); cfg != nil {
		s.applyCosmetic(cfg)
	}

	s.metrics.RecordMaintenance(time.Since(start), err == nil)
	s.metrics.UpdateUptime()
}

// ApplyConfig queues cfg for the next maintenance tick. Only the trail's
// widths and color take effect on a running overlay; it reports whether
// anything was queued. Safe to call from any goroutine.
func (s *Session) ApplyConfig(cfg *config.Config) bool {
	if cfg == nil || s.stopped.Load() {
		return false
	}
	if err := cfg.Validate(); err != nil {
		s.logger.Warn("ignoring invalid configuration", "error", err)
		return false
	}
	cur := s.cfg.Load()
	if cfg.Trail.Length != cur.Trail.Length ||
		cfg.Trail.Friction != cur.Trail.Friction ||
		cfg.Scheduler != cur.Scheduler ||
		cfg.Overlay != cur.Overlay {
		s.logger.Info("configuration change needs a restart to take full effect")
	}
	if !cur.CosmeticChanged(cfg) {
		return false
	}
	s.pending.Store(cfg.Clone())
	return true
}

func (s *Session) applyCosmetic(cfg *config.Config) {
	next := s.cfg.Load().Clone()
	next.Trail.StartWidth = cfg.Trail.StartWidth
	next.Trail.MinWidth = cfg.Trail.MinWidth
	next.Trail.Color = cfg.Trail.Color
	s.cfg.Store(next)

	s.style = styleFor(next)
	trail.BuildFrame(s.chain, s.style, &s.frame)

	s.metrics.ConfigReloads.Inc()
	s.logger.Info("configuration reloaded",
		"start_width", s.style.StartWidth,
		"min_width", s.style.MinWidth,
		"color", next.Trail.Color,
	)
}

// Scheduler returns the scheduler carrying the session's tasks. Callers
// poll it from a single goroutine.
func (s *Session) Scheduler() *schedule.Scheduler {
	return s.sched
}

// Frame returns the latest geometry. It is rebuilt in place by the
// animation task, so read it on the polling goroutine.
func (s *Session) Frame() *trail.Frame {
	if s.chain == nil {
		return nil
	}
	return &s.frame
}

// Painter returns the painter whose counts feed the session metrics.
func (s *Session) Painter() *overlay.Painter {
	return s.painter
}

// RecordPaint accounts for one painted frame.
func (s *Session) RecordPaint(skipped int) {
	s.metrics.RecordPaint(skipped)
}

// Surface returns the overlay surface, nil before Start.
func (s *Session) Surface() *overlay.Surface {
	return s.surface
}

// Gate returns the system cursor gate.
func (s *Session) Gate() *cursorgate.Gate {
	return s.gate
}

// Health returns the component health checker.
func (s *Session) Health() *health.Checker {
	return s.health
}

// Metrics returns the session metrics.
func (s *Session) Metrics() *metrics.OverlayMetrics {
	return s.metrics
}

// Config returns a copy of the configuration in effect.
func (s *Session) Config() *config.Config {
	return s.cfg.Load().Clone()
}

// Shutdown restores the system cursor, closes the surface and releases the
// adapter, in that order. Only the first call does any work; later calls
// return the same result.
func (s *Session) Shutdown() error {
	s.shutdownOnce.Do(func() {
		s.stopped.Store(true)
		s.health.SetReady(false)

		s.gate.Restore()

		var errs error
		if s.surface != nil {
			if err := s.surface.Close(); err != nil && !errors.Is(err, overlay.ErrClosed) {
				errs = multierr.Append(errs, fmt.Errorf("close surface: %w", err))
			}
		}
		if err := s.adapter.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close adapter: %w", err))
		}
		s.shutdownErr = errs

		if errs != nil {
			s.logger.Warn("shutdown incomplete", "error", errs)
		}
		s.logger.Info("overlay stopped", s.metrics.LogArgs()...)
		s.logger.Info("component health", s.health.Summary().LogArgs()...)
		for _, st := range s.sched.Stats() {
			s.logger.Debug("task stats",
				"task", st.Name,
				"runs", st.Runs,
				"last_duration", st.LastDuration,
			)
		}
	})
	return s.shutdownErr
}
