// Package errors provides standardized error handling patterns for bipstream components.
// It includes error classification, standard error variables, and helper functions
// for consistent error wrapping across buffers, the workload driver and the CLI.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents interruptions: cancellation, deadlines, limiter waits
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Lifecycle errors
	ErrAlreadyStarted = errors.New("component already started")

	// Stream errors
	ErrStreamConsumed = errors.New("stream consumed")
	ErrShortTransfer  = errors.New("short transfer")

	// Data errors
	ErrDataCorrupted = errors.New("data corrupted")
	ErrDataMismatch  = errors.New("data mismatch")

	// Configuration errors
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrConfigNotFound = errors.New("configuration not found")

	// Resource errors
	ErrRateLimited = errors.New("rate limited")
)

// sentinelClasses classifies errors that reach Classify without a ClassifiedError
// around them. The first match wins.
var sentinelClasses = []struct {
	err   error
	class ErrorClass
}{
	{context.Canceled, ErrorTransient},
	{context.DeadlineExceeded, ErrorTransient},
	{ErrRateLimited, ErrorTransient},
	{ErrStreamConsumed, ErrorInvalid},
	{ErrInvalidConfig, ErrorInvalid},
	{ErrAlreadyStarted, ErrorInvalid},
	{ErrConfigNotFound, ErrorFatal},
	{ErrDataCorrupted, ErrorFatal},
	{ErrDataMismatch, ErrorFatal},
	{ErrShortTransfer, ErrorFatal},
}

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Classify returns the error class for a non-nil error. The outermost
// ClassifiedError decides; otherwise the known sentinels do. Anything else is
// fatal. A nil error classifies as transient.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}

	for _, s := range sentinelClasses {
		if errors.Is(err, s.err) {
			return s.class
		}
	}
	return ErrorFatal
}

// IsTransient reports whether err is an interruption rather than a failure
func IsTransient(err error) bool {
	return err != nil && Classify(err) == ErrorTransient
}

// IsFatal reports whether err should stop processing
func IsFatal(err error) bool {
	return err != nil && Classify(err) == ErrorFatal
}

// IsInvalid reports whether err is caused by bad input or misuse
func IsInvalid(err error) bool {
	return err != nil && Classify(err) == ErrorInvalid
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w". The class of err is preserved.
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	return wrapClassified(ErrorTransient, err, component, method, action)
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	return wrapClassified(ErrorFatal, err, component, method, action)
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	return wrapClassified(ErrorInvalid, err, component, method, action)
}

func wrapClassified(class ErrorClass, err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return &ClassifiedError{
		Class:     class,
		Err:       wrapped,
		Message:   wrapped.Error(),
		Component: component,
		Operation: method,
	}
}
