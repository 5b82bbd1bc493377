package domain

import (
	"bytes"
	"context"
	"encoding/json"
)

// Vector is a query embedding. Immutable once parsed; lives for one request.
type Vector []float32

// ParseVector validates an untyped JSON value as a query embedding and
// converts it. Rules are checked in order with short-circuit: the value must
// be a JSON array, its length must equal expectedDim, and every element must
// be a number. Integers are accepted alongside floats.
func ParseVector(raw []byte, expectedDim int) (Vector, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, ErrNotASequence
	}

	items, ok := value.([]any)
	if !ok {
		return nil, ErrNotASequence
	}

	if len(items) != expectedDim {
		return nil, &DimensionMismatchError{Expected: expectedDim, Actual: len(items)}
	}

	vec := make(Vector, len(items))
	for i, item := range items {
		num, ok := item.(json.Number)
		if !ok {
			return nil, &NonNumericElementError{Index: i}
		}
		f, err := num.Float64()
		if err != nil {
			return nil, &NonNumericElementError{Index: i}
		}
		vec[i] = float32(f)
	}

	return vec, nil
}

// Validate re-checks the dimension of an already-typed vector.
func (v Vector) Validate(expectedDim int) error {
	if len(v) != expectedDim {
		return &DimensionMismatchError{Expected: expectedDim, Actual: len(v)}
	}
	return nil
}

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
