package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Is lets errors.Is(err, ErrInvalidConfig) match any ValidationErrors.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Fields returns the field names that failed validation.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, err := range e {
		fields = append(fields, err.Field)
	}
	return fields
}

// ValidateConfig performs validation of the whole configuration.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateTrail(&c.Trail)...)
	errs = append(errs, validateScheduler(&c.Scheduler)...)
	errs = append(errs, validateOverlay(&c.Overlay)...)
	errs = append(errs, validateLogging(&c.Logging)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateTrail(t *TrailConfig) ValidationErrors {
	var errs ValidationErrors

	if t.Length < 2 || t.Length > 1000 {
		errs = append(errs, *RangeError("trail.length", 2, 1000))
	}

	if !finite(t.StartWidth) || t.StartWidth <= 0 {
		errs = append(errs, ValidationError{
			Field:   "trail.start_width",
			Message: "start width must be a positive finite number",
		})
	}

	if !finite(t.MinWidth) || t.MinWidth <= 0 {
		errs = append(errs, ValidationError{
			Field:   "trail.min_width",
			Message: "min width must be a positive finite number",
		})
	} else if finite(t.StartWidth) && t.StartWidth > 0 && t.MinWidth > t.StartWidth {
		errs = append(errs, ValidationError{
			Field:   "trail.min_width",
			Message: fmt.Sprintf("min width %g exceeds start width %g", t.MinWidth, t.StartWidth),
		})
	}

	if !(t.Friction > 0 && t.Friction < 1) {
		errs = append(errs, ValidationError{
			Field:   "trail.friction",
			Message: fmt.Sprintf("friction %g must be strictly between 0 and 1", t.Friction),
		})
	}

	if _, err := ParseColor(t.Color); err != nil {
		errs = append(errs, ValidationError{
			Field:   "trail.color",
			Message: err.Error(),
		})
	}

	return errs
}

func validateScheduler(s *SchedulerConfig) ValidationErrors {
	var errs ValidationErrors

	if s.AnimationTickMs < 1 || s.AnimationTickMs > 1000 {
		errs = append(errs, *RangeError("scheduler.animation_tick_ms", 1, 1000))
	}

	if s.MaintenanceTickMs < 1 || s.MaintenanceTickMs > 60000 {
		errs = append(errs, *RangeError("scheduler.maintenance_tick_ms", 1, 60000))
	}

	if s.ShutdownGraceMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "scheduler.shutdown_grace_ms",
			Message: "shutdown grace cannot be negative",
		})
	}

	return errs
}

func validateOverlay(o *OverlayConfig) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(o.Title) == "" {
		errs = append(errs, *RequiredFieldError("overlay.title"))
	}

	if _, err := ParseColor(o.TransparentKey); err != nil {
		errs = append(errs, ValidationError{
			Field:   "overlay.transparent_key",
			Message: err.Error(),
		})
	}

	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", l.Level),
		})
	}

	switch l.Format {
	case "auto", "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: auto, text, json)", l.Format),
		})
	}

	switch l.Output {
	case "stdout", "stderr":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: "file path is required when output is 'file' or 'both'",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("invalid log output: %q (valid: stdout, stderr, file, both)", l.Output),
		})
	}

	if l.MaxSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Message: "max size must be at least 1 MB",
		})
	}

	if l.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Message: "max backups cannot be negative",
		})
	}

	return errs
}

// RequiredFieldError creates a validation error for a required field.
func RequiredFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: "required field is missing",
	}
}

// RangeError creates a validation error for an out-of-range value.
func RangeError(field string, min, max any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("value must be between %v and %v", min, max),
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
