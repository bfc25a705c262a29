// Package health tracks the status of the overlay's OS integrations.
//
// Components are reported on rather than polled: the tick that exercises a
// component reports the outcome, and the checker logs every status change.
package health

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	// StatusHealthy indicates the component is healthy.
	StatusHealthy Status = "healthy"
	// StatusDegraded indicates the component is degraded but functional.
	StatusDegraded Status = "degraded"
	// StatusUnhealthy indicates the component is unhealthy.
	StatusUnhealthy Status = "unhealthy"
	// StatusUnknown indicates the component has not been reported yet.
	StatusUnknown Status = "unknown"
)

// Well-known component names.
const (
	ComponentWindow = "window"
	ComponentCursor = "cursor"
)

// CheckResult is the last report for a component.
type CheckResult struct {
	Status      Status    `json:"status"`
	Message     string    `json:"message,omitempty"`
	LastChecked time.Time `json:"last_checked"`
	Since       time.Time `json:"since"`
	Failures    uint64    `json:"failures"`
	Error       string    `json:"error,omitempty"`
}

type component struct {
	critical bool
	result   CheckResult
}

// Checker holds component statuses.
type Checker struct {
	mu         sync.RWMutex
	components map[string]*component
	startTime  time.Time
	ready      bool
	logger     *slog.Logger
	now        func() time.Time
}

// NewChecker creates a new Checker. A nil logger uses slog.Default.
func NewChecker(logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		components: make(map[string]*component),
		startTime:  time.Now(),
		logger:     logger,
		now:        time.Now,
	}
}

// Register adds a component in StatusUnknown. Critical components make the
// overall status unhealthy when they are.
func (c *Checker) Register(name string, critical bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.components[name]; ok {
		return
	}
	c.components[name] = &component{
		critical: critical,
		result:   CheckResult{Status: StatusUnknown},
	}
}

// Report records the outcome of exercising a component: nil means healthy,
// an error means degraded. It returns true when the status changed.
func (c *Checker) Report(name string, err error) bool {
	if err == nil {
		return c.Set(name, StatusHealthy, "", nil)
	}
	return c.Set(name, StatusDegraded, "", err)
}

// Set records an explicit status for a component, registering it as
// non-critical if needed. It returns true when the status changed.
func (c *Checker) Set(name string, status Status, message string, err error) bool {
	now := c.now()

	c.mu.Lock()
	comp, ok := c.components[name]
	if !ok {
		comp = &component{result: CheckResult{Status: StatusUnknown}}
		c.components[name] = comp
	}

	prev := comp.result.Status
	comp.result.Status = status
	comp.result.Message = message
	comp.result.LastChecked = now
	comp.result.Error = ""
	if err != nil {
		comp.result.Error = err.Error()
		comp.result.Failures++
	}
	changed := prev != status
	if changed {
		comp.result.Since = now
	}
	c.mu.Unlock()

	if changed {
		args := []any{"component", name, "from", string(prev), "to", string(status)}
		if err != nil {
			args = append(args, "error", err)
		}
		if message != "" {
			args = append(args, "message", message)
		}
		if status == StatusHealthy {
			c.logger.Info("component status changed", args...)
		} else {
			c.logger.Warn("component status changed", args...)
		}
	}
	return changed
}

// Result returns the last result for a component.
func (c *Checker) Result(name string) (CheckResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	comp, ok := c.components[name]
	if !ok {
		return CheckResult{}, false
	}
	return comp.result, true
}

// Results returns all last results.
func (c *Checker) Results() map[string]CheckResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results := make(map[string]CheckResult, len(c.components))
	for k, v := range c.components {
		results[k] = v.result
	}
	return results
}

// SetReady sets the readiness state.
func (c *Checker) SetReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = ready
}

// IsReady returns the readiness state.
func (c *Checker) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// OverallStatus returns the aggregated health status.
func (c *Checker) OverallStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hasUnknown := false
	hasDegraded := false

	for _, comp := range c.components {
		switch comp.result.Status {
		case StatusUnhealthy:
			if comp.critical {
				return StatusUnhealthy
			}
			hasDegraded = true
		case StatusDegraded:
			hasDegraded = true
		case StatusUnknown:
			if comp.critical {
				hasUnknown = true
			}
		}
	}

	if hasUnknown {
		return StatusUnknown
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// Summary is a point-in-time view of all components.
type Summary struct {
	Status     Status                 `json:"status"`
	Ready      bool                   `json:"ready"`
	Uptime     string                 `json:"uptime"`
	Components map[string]CheckResult `json:"components,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Summary returns the aggregated status with every component result.
func (c *Checker) Summary() Summary {
	c.mu.RLock()
	ready := c.ready
	uptime := time.Since(c.startTime).Round(time.Second)
	c.mu.RUnlock()

	return Summary{
		Status:     c.OverallStatus(),
		Ready:      ready,
		Uptime:     uptime.String(),
		Components: c.Results(),
		Timestamp:  c.now(),
	}
}

// LogArgs renders the summary as slog key/value pairs, components sorted.
func (s Summary) LogArgs() []any {
	names := make([]string, 0, len(s.Components))
	for name := range s.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	args := []any{"status", string(s.Status), "uptime", s.Uptime}
	for _, name := range names {
		r := s.Components[name]
		args = append(args, name, string(r.Status))
		if r.Failures > 0 {
			args = append(args, name+"_failures", r.Failures)
		}
	}
	return args
}
