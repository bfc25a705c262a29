package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cursortrail/internal/config"
	"cursortrail/internal/logging"
	"cursortrail/internal/platform"
	"cursortrail/internal/session"
)

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-config", "trail.toml", "-log-level", "debug", "-headless"})
	require.NoError(t, err)
	assert.Equal(t, "trail.toml", o.configPath)
	assert.Equal(t, "debug", o.logLevel)
	assert.True(t, o.headless)
	assert.False(t, o.showVersion)

	_, err = parseFlags([]string{"extra"})
	assert.Error(t, err)

	_, err = parseFlags([]string{"-h"})
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestConfigFile(t *testing.T) {
	t.Setenv("CURSORTRAIL_CONFIG_DIR", t.TempDir())
	chdir(t, t.TempDir())

	o := &options{configPath: "explicit.yaml"}
	assert.Equal(t, "explicit.yaml", o.configFile())

	o = &options{}
	assert.Equal(t, config.ConfigPath(), o.configFile())

	require.NoError(t, os.WriteFile("config.json", []byte("{}"), 0600))
	assert.Equal(t, "config.json", filepath.Base(o.configFile()))
}

func TestLoggingConfig(t *testing.T) {
	lc := config.DefaultConfig().Logging
	lc.Format = "json"

	c, err := loggingConfig(lc, &options{})
	require.NoError(t, err)
	assert.Equal(t, logging.LevelInfo, c.Level)
	assert.Equal(t, logging.FormatJSON, c.Format)
	assert.Equal(t, int64(lc.MaxSizeMB), c.MaxSize)

	c, err = loggingConfig(lc, &options{logLevel: "warn", logFormat: "text"})
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, c.Level)
	assert.Equal(t, logging.FormatText, c.Format)

	_, err = loggingConfig(lc, &options{logLevel: "loud"})
	assert.Error(t, err)
	_, err = loggingConfig(lc, &options{logFormat: "xml"})
	assert.Error(t, err)
}

func TestRun_VersionAndWriteConfig(t *testing.T) {
	t.Setenv("CURSORTRAIL_CONFIG_DIR", t.TempDir())
	chdir(t, t.TempDir())

	assert.Equal(t, 0, run([]string{"-version"}))
	assert.Equal(t, 2, run([]string{"-bogus"}))

	out := filepath.Join(t.TempDir(), "written.toml")
	require.Equal(t, 0, run([]string{"-write-config", out}))

	cfg, err := config.Load(out)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Trail, cfg.Trail)
}

func newTestSession(t *testing.T) (*session.Session, *platform.Fake, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	fake := platform.NewFake(platform.Rect{Width: 1920, Height: 1080})
	fake.CreateWindow(cfg.Overlay.Title)

	sess, err := session.New(session.Options{Adapter: fake, Config: cfg})
	require.NoError(t, err)
	return sess, fake, cfg
}

func TestRunLoop_InterruptRestoresCursor(t *testing.T) {
	sess, fake, cfg := newTestSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, runLoop(ctx, sess, cfg, true, nil))
	assert.Equal(t, 1, fake.InstallCalls, "cursor was hidden while running")
	assert.False(t, fake.CursorsHidden())
	assert.Equal(t, 1, fake.RestoreCalls)
	assert.True(t, fake.Closed)

	// The deferred Shutdown in run is a no-op now.
	require.NoError(t, sess.Shutdown())
	assert.Equal(t, 1, fake.RestoreCalls)
}

func TestRunLoop_StartFailureStillShutsDown(t *testing.T) {
	sess, fake, cfg := newTestSession(t)
	require.NoError(t, sess.Start())

	err := runLoop(context.Background(), sess, cfg, true, nil)
	assert.ErrorIs(t, err, session.ErrAlreadyStarted)
	assert.False(t, fake.CursorsHidden())
	assert.True(t, fake.Closed)
}

func stubExit(t *testing.T) <-chan int {
	t.Helper()
	codes := make(chan int, 1)
	exit = func(code int) { codes <- code }
	t.Cleanup(func() { exit = os.Exit })
	return codes
}

func TestWatchdog_ForcesShutdownAfterGrace(t *testing.T) {
	codes := stubExit(t)
	sess, fake, _ := newTestSession(t)
	require.NoError(t, sess.Start())
	require.True(t, fake.CursorsHidden())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The loop never reports done.
	watchdog(ctx, make(chan struct{}), sess, 10*time.Millisecond)

	select {
	case code := <-codes:
		assert.Equal(t, 0, code)
	default:
		t.Fatal("watchdog did not exit")
	}
	assert.False(t, fake.CursorsHidden())
	assert.True(t, fake.Closed)
}

func TestWatchdog_LoopStopsInTime(t *testing.T) {
	codes := stubExit(t)
	sess, fake, _ := newTestSession(t)
	require.NoError(t, sess.Start())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	close(done)

	watchdog(ctx, done, sess, time.Hour)
	assert.Empty(t, codes)
	assert.True(t, fake.CursorsHidden(), "the loop owns shutdown")

	require.NoError(t, sess.Shutdown())
}

func TestWatchdog_NoInterrupt(t *testing.T) {
	codes := stubExit(t)
	sess, _, _ := newTestSession(t)

	done := make(chan struct{})
	close(done)
	watchdog(context.Background(), done, sess, time.Millisecond)
	assert.Empty(t, codes)
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
