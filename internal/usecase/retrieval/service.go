package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ragctx/ragctx/internal/domain"
	"github.com/ragctx/ragctx/internal/logger"
	"github.com/ragctx/ragctx/internal/metrics"
)

// Config holds the read-only retrieval constants, fixed for the process lifetime.
type Config struct {
	EmbeddingDimension int
	ScoreThreshold     float64
	DefaultTopK        int
	MaxTopK            int
}

// Request is one retrieval request. The vector is immutable and request-scoped.
type Request struct {
	Vector domain.Vector
	TopK   int
}

// Service assembles a citation-annotated context string from vector index matches.
type Service struct {
	matches MatchReader
	embed   Embedder
	cfg     Config
	ext     extractor
}

// New creates a retrieval service with the original metadata field names.
func New(matches MatchReader, cfg Config) *Service {
	return &Service{
		matches: matches,
		cfg:     cfg,
		ext:     defaultExtractor(),
	}
}

// WithEmbedder enables the text-query path.
func (s *Service) WithEmbedder(e Embedder) *Service {
	s.embed = e
	return s
}

// WithFields overrides the metadata field names read during extraction.
// Empty values keep the defaults.
func (s *Service) WithFields(nodeContent, text, provenance string) *Service {
	if nodeContent != "" {
		s.ext.nodeContentField = nodeContent
	}
	if text != "" {
		s.ext.textField = text
	}
	if provenance != "" {
		s.ext.provenanceField = provenance
	}
	return s
}

// DefaultTopK returns the top_k applied when the caller leaves it unset.
func (s *Service) DefaultTopK() int {
	return s.cfg.DefaultTopK
}

// EmbeddingDimension returns the expected query vector length.
func (s *Service) EmbeddingDimension() int {
	return s.cfg.EmbeddingDimension
}

// GetContext validates the request, runs one similarity query, and assembles
// the context string. Validation failures are detected before the upstream
// call; upstream failures propagate wrapped in domain.ErrUpstreamQuery and
// are never converted into an empty context.
func (s *Service) GetContext(ctx context.Context, req Request) (string, error) {
	if req.TopK < 1 || req.TopK > s.cfg.MaxTopK {
		return "", fmt.Errorf("%w: got %d (allowed 1..%d)",
			domain.ErrInvalidTopK, req.TopK, s.cfg.MaxTopK)
	}
	if err := req.Vector.Validate(s.cfg.EmbeddingDimension); err != nil {
		return "", err
	}

	matches, err := s.matches.Nearest(ctx, req.Vector, req.TopK)
	if err != nil {
		metrics.RetrievalQueriesTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.RetrievalQueriesTotal.WithLabelValues("success").Inc()

	return s.assemble(ctx, matches), nil
}

// GetContextForQuery embeds a text query and delegates to GetContext.
func (s *Service) GetContextForQuery(ctx context.Context, query string, topK int) (string, error) {
	if s.embed == nil {
		return "", domain.ErrEmbeddingNotConfigured
	}

	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("vectorize query: %w", err)
	}

	return s.GetContext(ctx, Request{Vector: res.Embedding, TopK: topK})
}

// assemble filters matches by score threshold and concatenates passage blocks.
// The threshold is exclusive: only strictly greater scores qualify. Passage
// order follows the order delivered by the index. The block format
// "{text}(Ref: {provenance}.)\n" is the wire contract consumers parse
// citations from.
func (s *Service) assemble(ctx context.Context, matches []domain.Match) string {
	log := logger.FromContext(ctx)

	var b strings.Builder
	for i, m := range matches {
		if m.Score <= s.cfg.ScoreThreshold {
			metrics.RetrievalMatchesTotal.WithLabelValues("below_threshold").Inc()
			continue
		}
		metrics.RetrievalMatchesTotal.WithLabelValues("kept").Inc()

		text, provenance, fellBack := s.ext.extract(m.Metadata)
		if fellBack {
			metrics.RetrievalExtractionsTotal.WithLabelValues("flat_text").Inc()
			log.Debug("node content extraction fell back to flat text field",
				zap.Int("match", i),
				zap.Float64("score", m.Score),
			)
		} else {
			metrics.RetrievalExtractionsTotal.WithLabelValues("node_content").Inc()
		}

		fmt.Fprintf(&b, "%s(Ref: %s.)\n", text, provenance)
	}

	if b.Len() == 0 {
		return domain.NoRelevantContext
	}
	return b.String()
}
