package errors

import (
	"sync"
	"time"
)

// ErrorCollector accumulates operation errors for status reporting. Owned by
// the lifecycle coordinator; safe for concurrent use.
type ErrorCollector struct {
	errors []TimestampedError
	mutex  sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]TimestampedError, 0),
	}
}

// Add records an error with the current timestamp.
func (ec *ErrorCollector) Add(err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, TimestampedError{Err: err, Time: time.Now()})
}

// Count returns the number of recorded errors.
func (ec *ErrorCollector) Count() int {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.errors)
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	return ec.Count() > 0
}

// Errors returns a copy of all recorded errors.
func (ec *ErrorCollector) Errors() []TimestampedError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]TimestampedError, len(ec.errors))
	copy(result, ec.errors)
	return result
}

// Last returns the most recently recorded error, or nil.
func (ec *ErrorCollector) Last() error {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	if len(ec.errors) == 0 {
		return nil
	}
	return ec.errors[len(ec.errors)-1].Err
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = ec.errors[:0]
}
