package retrieval

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ragctx/ragctx/internal/domain"
)

// --- Mocks ---

type mockMatches struct {
	matches  []domain.Match
	err      error
	called   int
	lastTopK int
}

func (m *mockMatches) Nearest(_ context.Context, _ domain.Vector, topK int) ([]domain.Match, error) {
	m.called++
	m.lastTopK = topK
	return m.matches, m.err
}

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 7}, nil
}

// --- Helpers ---

const testDim = 8

func testConfig() Config {
	return Config{
		EmbeddingDimension: testDim,
		ScoreThreshold:     0.81,
		DefaultTopK:        2,
		MaxTopK:            100,
	}
}

func testVector() domain.Vector {
	vec := make(domain.Vector, testDim)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}

// nodeContentMatch builds a match whose metadata carries the nested
// node-content payload plus a provenance id.
func nodeContentMatch(t *testing.T, score float64, text, provenance string) domain.Match {
	t.Helper()

	node := map[string]any{
		"metadata": map[string]any{"text": text},
	}
	raw, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("marshal node content: %v", err)
	}

	return domain.Match{
		Score: score,
		Metadata: map[string]any{
			"_node_content": string(raw),
			"c_document_id": provenance,
		},
	}
}

// flatMatch builds a match with only the flat text field.
func flatMatch(score float64, text, provenance string) domain.Match {
	return domain.Match{
		Score: score,
		Metadata: map[string]any{
			"text":          text,
			"c_document_id": provenance,
		},
	}
}
