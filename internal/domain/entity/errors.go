package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for the summarization pipeline. Every stage returns one
// of these (wrapped) instead of relying on panic-driven control flow, so
// callers can classify failures with errors.Is.
var (
	// ErrCapabilityUnavailable indicates the tokenizer or generation model
	// is not reachable. Fatal for the whole summarization call.
	ErrCapabilityUnavailable = errors.New("model capability unavailable")

	// ErrInvalidConfiguration indicates non-positive or inconsistent budgets.
	// Rejected before any model call is made.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrChunkSummarizationFailed indicates one chunk's generation call
	// failed or returned degenerate output beyond the local retry budget.
	ErrChunkSummarizationFailed = errors.New("chunk summarization failed")

	// ErrReductionDepthExceeded indicates the consolidation loop hit its
	// configured depth bound without converging to a single call.
	ErrReductionDepthExceeded = errors.New("reduction depth exceeded")

	// ErrReductionStalled indicates a reduction round failed to strictly
	// shrink total token volume, violating the convergence invariant.
	ErrReductionStalled = errors.New("reduction did not shrink token volume")
)

// ChunkFailedError reports which chunk failed summarization.
// It matches ErrChunkSummarizationFailed via errors.Is.
type ChunkFailedError struct {
	Index int
	Cause error
}

// Error returns a formatted message including the failing chunk index.
func (e *ChunkFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("summarization of chunk %d failed: %v", e.Index, e.Cause)
	}
	return fmt.Sprintf("summarization of chunk %d failed", e.Index)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *ChunkFailedError) Unwrap() error {
	return e.Cause
}

// Is makes the error match the ErrChunkSummarizationFailed sentinel.
func (e *ChunkFailedError) Is(target error) bool {
	return target == ErrChunkSummarizationFailed
}

// ValidationError represents a configuration validation error with detailed
// field information.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is makes every validation error match the ErrInvalidConfiguration sentinel.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}
