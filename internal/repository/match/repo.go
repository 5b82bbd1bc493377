package match

import (
	"context"
	"fmt"
	"time"

	"github.com/ragctx/ragctx/internal/domain"
	"github.com/ragctx/ragctx/internal/index"
)

// querier is the consumer interface for similarity queries (ISP).
type querier interface {
	Query(ctx context.Context, q *index.Query) (*index.Result, error)
}

// Repo implements usecase/retrieval.MatchReader over an index driver.
type Repo struct {
	idx     querier
	timeout time.Duration
}

// New creates a match repository.
func New(idx querier) *Repo {
	return &Repo{idx: idx}
}

// WithTimeout bounds each similarity query. Zero disables the bound (the
// driver's own timeout still applies).
func (r *Repo) WithTimeout(d time.Duration) *Repo {
	r.timeout = d
	return r
}

// Nearest returns the topK nearest matches with metadata attached.
// Driver failures are wrapped in domain.ErrUpstreamQuery so callers can
// distinguish them from the legitimate zero-match case.
func (r *Repo) Nearest(ctx context.Context, vector domain.Vector, topK int) ([]domain.Match, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	res, err := r.idx.Query(ctx, &index.Query{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamQuery, err)
	}

	matches := make([]domain.Match, len(res.Matches))
	for i, m := range res.Matches {
		matches[i] = domain.Match{
			Score:    m.Score,
			Metadata: m.Metadata,
		}
	}

	return matches, nil
}
