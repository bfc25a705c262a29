package health

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker() (*Checker, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return NewChecker(logger), &buf
}

func TestChecker_ReportTransitions(t *testing.T) {
	c, buf := newTestChecker()
	c.Register(ComponentWindow, false)

	r, ok := c.Result(ComponentWindow)
	require.True(t, ok)
	assert.Equal(t, StatusUnknown, r.Status)

	assert.True(t, c.Report(ComponentWindow, nil))
	assert.False(t, c.Report(ComponentWindow, nil))

	assert.True(t, c.Report(ComponentWindow, errors.New("not click-through")))
	assert.False(t, c.Report(ComponentWindow, errors.New("still not")))

	r, _ = c.Result(ComponentWindow)
	assert.Equal(t, StatusDegraded, r.Status)
	assert.Equal(t, uint64(2), r.Failures)
	assert.Equal(t, "still not", r.Error)

	assert.True(t, c.Report(ComponentWindow, nil))
	r, _ = c.Result(ComponentWindow)
	assert.Empty(t, r.Error)

	// One log line per transition: unknown→healthy, healthy→degraded, degraded→healthy.
	assert.Equal(t, 3, strings.Count(buf.String(), "component status changed"))
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestChecker_OverallStatus(t *testing.T) {
	c, _ := newTestChecker()
	assert.Equal(t, StatusHealthy, c.OverallStatus())

	c.Register(ComponentWindow, true)
	c.Register(ComponentCursor, false)
	assert.Equal(t, StatusUnknown, c.OverallStatus())

	c.Report(ComponentWindow, nil)
	assert.Equal(t, StatusHealthy, c.OverallStatus())

	c.Report(ComponentCursor, errors.New("no pointer"))
	assert.Equal(t, StatusDegraded, c.OverallStatus())

	c.Set(ComponentWindow, StatusUnhealthy, "destroyed", nil)
	assert.Equal(t, StatusUnhealthy, c.OverallStatus())
}

func TestChecker_SetRegistersUnknownComponent(t *testing.T) {
	c, _ := newTestChecker()
	c.Set("config", StatusDegraded, "reload rejected", nil)

	r, ok := c.Result("config")
	require.True(t, ok)
	assert.Equal(t, StatusDegraded, r.Status)
	assert.Equal(t, "reload rejected", r.Message)
	assert.Equal(t, StatusDegraded, c.OverallStatus())
}

func TestChecker_Summary(t *testing.T) {
	c, _ := newTestChecker()
	c.SetReady(true)
	c.Report(ComponentCursor, nil)
	c.Report(ComponentWindow, errors.New("x"))

	s := c.Summary()
	assert.True(t, s.Ready)
	assert.Equal(t, StatusDegraded, s.Status)
	assert.Len(t, s.Components, 2)

	args := s.LogArgs()
	assert.Equal(t, []any{
		"status", "degraded", "uptime", s.Uptime,
		"cursor", "healthy",
		"window", "degraded", "window_failures", uint64(1),
	}, args)
}
