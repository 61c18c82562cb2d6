package engine

import (
	"errors"
	"fmt"
)

// SystemError reports a system that failed during a tick.
//
// SystemError includes structured fields for diagnostics.
type SystemError struct {
	// Code identifies the failure category.
	Code SystemErrorCode

	// System is the name of the failing system.
	System string

	// Tick is the tick the failure happened in. Zero for init failures.
	Tick uint64

	// Message is a human-readable description.
	Message string

	// Err is the error the system returned, if any.
	Err error
}

// SystemErrorCode categorizes system failures.
type SystemErrorCode string

const (
	// ErrCodeSystemFailed indicates Run returned an error.
	ErrCodeSystemFailed SystemErrorCode = "SYSTEM_FAILED"

	// ErrCodeSystemPanic indicates Run panicked.
	ErrCodeSystemPanic SystemErrorCode = "SYSTEM_PANIC"

	// ErrCodeInitFailed indicates Init returned an error.
	ErrCodeInitFailed SystemErrorCode = "INIT_FAILED"
)

// Error implements the error interface.
func (e *SystemError) Error() string {
	if e.Tick > 0 {
		return fmt.Sprintf("%s: %s (system=%s, tick=%d)", e.Code, e.Message, e.System, e.Tick)
	}
	return fmt.Sprintf("%s: %s (system=%s)", e.Code, e.Message, e.System)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}

// IsPanicError returns true if err is a recovered system panic.
// Uses errors.As to handle wrapped errors.
func IsPanicError(err error) bool {
	var se *SystemError
	if errors.As(err, &se) {
		return se.Code == ErrCodeSystemPanic
	}
	return false
}

// FailedSystem returns the name of the system behind err, if err is a
// SystemError.
func FailedSystem(err error) (string, bool) {
	var se *SystemError
	if errors.As(err, &se) {
		return se.System, true
	}
	return "", false
}

func newSystemError(system string, tick uint64, err error) *SystemError {
	return &SystemError{
		Code:    ErrCodeSystemFailed,
		System:  system,
		Tick:    tick,
		Message: err.Error(),
		Err:     err,
	}
}

func newPanicError(system string, tick uint64, recovered any) *SystemError {
	return &SystemError{
		Code:    ErrCodeSystemPanic,
		System:  system,
		Tick:    tick,
		Message: fmt.Sprintf("panic: %v", recovered),
	}
}
