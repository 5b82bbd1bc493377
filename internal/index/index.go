// Package index defines the driver-agnostic contract for the external vector
// index service. Drivers live in subpackages; consumers depend only on the
// interfaces here.
package index

import (
	"context"
	"time"
)

// Querier is the similarity-search facade implemented by every driver.
// A Querier is safe for concurrent use: the only operation performed on it
// per request is a single read-only query.
type Querier interface {
	// Query returns the TopK nearest neighbors to the query vector.
	// Drivers must fail explicitly on connection or auth failure rather
	// than returning an empty result.
	Query(ctx context.Context, q *Query) (*Result, error)
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

// Query is the input for a vector similarity search.
type Query struct {
	Vector          []float32
	TopK            int
	IncludeMetadata bool
}

// Result is the output of a similarity search. Matches keep the order
// delivered by the index, typically descending similarity.
type Result struct {
	Matches []Match
}

// Match is a single hit with its similarity score and raw metadata.
type Match struct {
	Key      string
	Score    float64
	Metadata map[string]any
}
