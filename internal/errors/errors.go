// Package errors defines the launcher error taxonomy. Every failure class is
// recovered locally by its owning subsystem; nothing here aborts the process on
// its own. Process exit is an explicit coordinator policy.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Severity represents how serious a lifecycle error is.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// DetectionFailure reports a framework detection problem. The detection engine
// always recovers from it by falling back to the default framework.
type DetectionFailure struct {
	ProjectRoot string
	Stage       string // "manifest", "scan", "cache"
	Err         error
}

func (e *DetectionFailure) Error() string {
	return fmt.Sprintf("detection failed at %s for %s: %v", e.Stage, e.ProjectRoot, e.Err)
}

func (e *DetectionFailure) Unwrap() error { return e.Err }

// PluginResolutionFailure reports that an adapter plugin could not be resolved
// or instantiated. Required plugins surface as warnings; optional ones stay silent.
type PluginResolutionFailure struct {
	PluginKey string
	Package   string
	Required  bool
	Err       error
}

func (e *PluginResolutionFailure) Error() string {
	return fmt.Sprintf("plugin %s (%s) unresolved: %v", e.PluginKey, e.Package, e.Err)
}

func (e *PluginResolutionFailure) Unwrap() error { return e.Err }

// LifecycleTransitionError reports a failed start/stop/build/preview/restart
// operation. It carries the operation name and severity so the coordinator can
// apply its exit-on-error policy.
type LifecycleTransitionError struct {
	Operation string
	FromState string
	Severity  Severity
	Err       error
}

func (e *LifecycleTransitionError) Error() string {
	return fmt.Sprintf("%s failed (state %s): %v", e.Operation, e.FromState, e.Err)
}

func (e *LifecycleTransitionError) Unwrap() error { return e.Err }

// ErrRestartRaceRejected marks a config-change signal dropped because a restart
// was already in flight. Logged at debug level only, never surfaced.
var ErrRestartRaceRejected = errors.New("config change dropped: restart in flight")

// NewTransitionError wraps err as a LifecycleTransitionError at error severity.
func NewTransitionError(operation, fromState string, err error) *LifecycleTransitionError {
	return &LifecycleTransitionError{
		Operation: operation,
		FromState: fromState,
		Severity:  SeverityError,
		Err:       err,
	}
}

// TimestampedError pairs an error with when it was recorded.
type TimestampedError struct {
	Err  error
	Time time.Time
}
