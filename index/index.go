// Package index provides shared types for vector search indexes.
package index

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when the requested result count is not positive.
	ErrInvalidK = errors.New("k must be positive")
)

// ErrDimensionMismatch is a named error type for dimension mismatch.
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch.
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// SearchResult represents a search result.
type SearchResult struct {
	// ID is the identifier of the search result.
	ID uint32

	// Distance is the distance between the query vector and the result vector.
	Distance float32
}

// SearchOptions controls the execution of a search.
type SearchOptions struct {
	// Filter restricts the search to candidates for which it returns true.
	// A nil Filter admits every candidate.
	Filter func(id uint32) bool
}
