// cursortrail draws a damped trail behind the mouse pointer on a
// transparent, click-through overlay that covers every monitor.
//
//	cursortrail                      Run the overlay until Ctrl+C
//	cursortrail -config trail.toml   Use a specific config file
//	cursortrail -headless            Run physics and maintenance without a window
//	cursortrail -write-config PATH   Write the effective config and exit
//	cursortrail -version             Print the version and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cursortrail/internal/config"
	"cursortrail/internal/logging"
	"cursortrail/internal/overlay/ebitenwin"
	"cursortrail/internal/platform"
	"cursortrail/internal/session"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// crashRetention is how long old crash reports are kept.
const crashRetention = 30 * 24 * time.Hour

// exit ends the process from the watchdog.
var exit = os.Exit

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if opts.showVersion {
		fmt.Printf("cursortrail %s\n", Version)
		return 0
	}

	loader := config.NewLoader(opts.configFile())
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", loader.Path(), err)
		return 1
	}

	if opts.writeConfig != "" {
		if err := config.SaveConfig(cfg, opts.writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			return 1
		}
		fmt.Printf("Config written to %s\n", opts.writeConfig)
		return 0
	}

	logCfg, err := loggingConfig(cfg.Logging, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not initialize logging: %v\n", err)
		logger = logging.Default()
	}
	logging.SetDefault(logger)
	defer logger.Close()

	adapter, err := platform.New()
	if err != nil {
		logger.Warn("platform integration unavailable, running without it", "error", err)
		adapter = platform.Unsupported()
	}
	if cfg.Overlay.DPIAware {
		if err := adapter.EnableDPIAwareness(); err != nil {
			logger.Debug("enable DPI awareness", "error", err)
		}
	}

	var fallback func() (int, int)
	if !opts.headless {
		fallback = ebitenwin.FallbackSize
	}
	sess, err := session.New(session.Options{
		Adapter:      adapter,
		Config:       cfg,
		Logger:       logger.Logger,
		FallbackSize: fallback,
		FixedStep:    !opts.headless && ebitenwin.Available,
	})
	if err != nil {
		logger.Error("create session", "error", err)
		_ = adapter.Close()
		return 1
	}
	defer func() {
		if err := sess.Shutdown(); err != nil {
			logger.Debug("shutdown", "error", err)
		}
		if opts.metricsFile != "" {
			if err := writeMetrics(sess, opts.metricsFile); err != nil {
				logger.Warn("write metrics", "error", err)
			}
		}
	}()

	crash := logging.NewCrashHandler(&logging.CrashHandlerConfig{
		Version:   Version,
		Component: "overlay",
		OnCrash: func(logging.CrashReport) {
			_ = sess.Shutdown()
		},
	})
	if err := crash.CleanupOldCrashReports(crashRetention); err != nil {
		logger.Debug("clean up crash reports", "error", err)
	}
	if reports, err := crash.CrashReports(); err == nil && len(reports) > 0 {
		last := reports[len(reports)-1]
		logger.Info("previous crash reports found",
			"count", len(reports),
			"last", last.Timestamp,
			"panic", last.PanicValue,
		)
	}

	loader.OnChange(func(c *config.Config) {
		if sess.ApplyConfig(c) {
			logger.Debug("configuration change queued", "path", loader.Path())
		}
	})
	if err := loader.Watch(); err != nil {
		logger.Debug("config hot reload disabled", "error", err)
	} else {
		go logWatchErrors(loader)
	}
	defer loader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	defer close(done)
	go watchdog(ctx, done, sess, cfg.ShutdownGrace())

	fmt.Println("Full Screen Overlay Active.")
	fmt.Println("Press Ctrl+C in this terminal window to quit.")

	// Ebiten runs Update and Draw on its own goroutine, so the window
	// recovers panics there and hands them to the same handler.
	onPanic := func(v any) {
		crash.HandlePanic(v, map[string]any{"loop": "window"})
	}

	var loopErr error
	if crash.Recover(func() { loopErr = runLoop(ctx, sess, cfg, opts.headless, onPanic) }) {
		return 1
	}
	if errors.Is(loopErr, ebitenwin.ErrPanicked) {
		return 1
	}
	if loopErr != nil {
		logger.Error("overlay loop failed", "error", loopErr)
		return 1
	}
	return 0
}

// runLoop starts the session and drives it until ctx is done, then shuts it
// down. In a window the cursor is restored before the window is destroyed.
// Without a window backend the tasks run on a plain timer loop.
func runLoop(ctx context.Context, sess *session.Session, cfg *config.Config, headless bool, onPanic func(any)) error {
	// The caller reads the shutdown result from its own Shutdown call.
	defer func() { _ = sess.Shutdown() }()

	if err := sess.Start(); err != nil {
		return err
	}
	if headless {
		return sess.Scheduler().Run(ctx)
	}

	err := ebitenwin.Run(ctx, ebitenwin.Options{
		Title:     cfg.Overlay.Title,
		Bounds:    sess.Surface().Bounds(),
		Tick:      cfg.AnimationTick(),
		Step:      sess.Step,
		Scheduler: sess.Scheduler(),
		Frame:     sess.Frame,
		Painter:   sess.Painter(),
		OnPaint:   sess.RecordPaint,
		OnStop:    func() { _ = sess.Shutdown() },
		OnPanic:   onPanic,
	})
	if errors.Is(err, ebitenwin.ErrNoWindow) {
		logging.Warn("no window backend in this build, running headless")
		return sess.Scheduler().Run(ctx)
	}
	return err
}

// watchdog announces an interrupt and gives the loop grace to unwind. A
// loop that does not stop in time is abandoned: the cursor is restored
// from here and the process exits.
func watchdog(ctx context.Context, done <-chan struct{}, sess *session.Session, grace time.Duration) {
	select {
	case <-done:
		return
	case <-ctx.Done():
	}
	fmt.Println("Exiting safely via Ctrl+C...")

	select {
	case <-done:
	case <-time.After(grace):
		logging.Warn("overlay loop did not stop in time, forcing shutdown", "grace", grace)
		_ = sess.Shutdown()
		exit(0)
	}
}

func logWatchErrors(loader *config.Loader) {
	for err := range loader.Errors() {
		logging.Warn("config reload failed", "path", loader.Path(), "error", err)
	}
}

func writeMetrics(sess *session.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := sess.Metrics().Registry().WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
