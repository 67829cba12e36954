// Package errors provides standardized error handling patterns for bipstream components.
//
// # Overview
//
// The package implements a three-class error classification system: Transient
// (the work was interrupted), Invalid (bad input or misuse) and Fatal (the result
// cannot be trusted, stop processing).
//
// Buffer operations themselves never fail: they report short counts instead. Errors
// appear at the edges of the system, where a count cannot express what went wrong:
//
//   - Metrics registration while constructing a buffer (invalid)
//   - Writing to a byte stream after it was marked consumed (invalid)
//   - Configuration validation (invalid) and loading a missing file (fatal)
//   - Round trip verification and layout checks in the driver (fatal)
//   - Cancellation of a running round trip (transient)
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")  // For interruptions
//	errors.WrapInvalid(err, "Component", "Method", "action")    // For validation errors
//	errors.WrapFatal(err, "Component", "Method", "action")      // For unrecoverable errors
//
// The generic Wrap() function preserves the original error's classification:
//
//	errors.Wrap(err, "Component", "Method", "action")
//
// # Standard Error Variables
//
//   - Lifecycle: ErrAlreadyStarted
//   - Streams: ErrStreamConsumed, ErrShortTransfer
//   - Data: ErrDataCorrupted, ErrDataMismatch
//   - Configuration: ErrInvalidConfig, ErrConfigNotFound
//   - Resources: ErrRateLimited
//
// Example:
//
//	n, err := stream.Write(payload)
//	if errors.Is(err, errors.ErrStreamConsumed) {
//	    // producer already closed the stream
//	}
//
// # Integration with errors.As/Is
//
//	var ce *errors.ClassifiedError
//	if errors.As(err, &ce) {
//	    slog.Warn("operation failed", "component", ce.Component, "class", ce.Class)
//	}
//
// # Classification
//
// Classify returns the class of the outermost ClassifiedError in the chain. Bare
// sentinels are classified by a fixed table, context errors count as Transient and
// anything unrecognized is Fatal. The driver labels failed runs and picks its exit
// code from the class.
package errors
