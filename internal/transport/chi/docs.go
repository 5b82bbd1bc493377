package chi

import (
	"net/http"

	"github.com/ragctx/ragctx/internal/version"
)

// apiDoc handles GET /. It returns a machine-readable description of the API
// so the service is self-documenting for LLM tool integrations.
func (s *Server) apiDoc(w http.ResponseWriter, r *http.Request) {
	dim := s.retrieval.EmbeddingDimension()

	writeJSON(w, http.StatusOK, map[string]any{
		"name": "ragctx context retrieval API",
		"description": "Semantic search over a vector index of curated passages. " +
			"Callers supply a precomputed query embedding; the API returns relevant " +
			"passages concatenated into one context string, each followed by a " +
			"citation of its source document.",
		"version": version.Version,
		"model_compatibility": map[string]any{
			"embedding_dimension": dim,
		},
		"endpoints": []map[string]any{
			{
				"path":        "/",
				"method":      http.MethodGet,
				"description": "Returns API documentation and available endpoints",
			},
			{
				"path":        "/search",
				"method":      http.MethodPost,
				"description": "Retrieves context passages for the provided embedding",
				"request_body": map[string]any{
					"query_embedding": map[string]any{
						"type":        "array",
						"description": "query embedding vector",
						"required":    true,
					},
					"top_k": map[string]any{
						"type":        "integer",
						"description": "number of nearest neighbors to retrieve",
						"required":    false,
						"default":     s.retrieval.DefaultTopK(),
					},
				},
				"responses": map[string]any{
					"200": "context string with source citations",
					"400": "invalid embedding format, dimension, or top_k",
					"502": "vector index unavailable",
				},
			},
			{
				"path":        "/health",
				"method":      http.MethodGet,
				"description": "Component health report",
			},
			{
				"path":        "/metrics",
				"method":      http.MethodGet,
				"description": "Prometheus metrics",
			},
		},
	})
}
