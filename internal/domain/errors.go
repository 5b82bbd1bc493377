package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotASequence signals that the submitted embedding is not an ordered sequence.
	ErrNotASequence = errors.New("query embedding must be a sequence of numbers")
	// ErrDimensionMismatch signals an embedding of the wrong length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrNonNumericElement signals a non-numeric embedding element.
	ErrNonNumericElement = errors.New("embedding contains a non-numeric element")
	// ErrInvalidTopK signals a non-positive or out-of-range top_k.
	ErrInvalidTopK = errors.New("top_k must be a positive integer")
	// ErrUpstreamQuery signals a failed vector index query.
	ErrUpstreamQuery = errors.New("vector index query failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingNotConfigured signals that no embedding provider is available
	// for text queries.
	ErrEmbeddingNotConfigured = errors.New("embedding provider not configured")
)

// DimensionMismatchError wraps ErrDimensionMismatch with expected and actual lengths.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d dimensions, got %d",
		ErrDimensionMismatch.Error(), e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NonNumericElementError wraps ErrNonNumericElement with the first offending index.
type NonNumericElementError struct {
	Index int
}

func (e *NonNumericElementError) Error() string {
	return fmt.Sprintf("%s: element at index %d", ErrNonNumericElement.Error(), e.Index)
}

func (e *NonNumericElementError) Unwrap() error { return ErrNonNumericElement }
