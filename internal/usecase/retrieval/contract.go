package retrieval

import (
	"context"

	"github.com/ragctx/ragctx/internal/domain"
)

// MatchReader issues similarity queries against the vector index.
type MatchReader interface {
	Nearest(ctx context.Context, vector domain.Vector, topK int) ([]domain.Match, error)
}

// Embedder vectorizes text into embeddings (optional text-query path).
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
