package match

import (
	"context"
	"errors"
	"testing"

	"github.com/ragctx/ragctx/internal/domain"
	"github.com/ragctx/ragctx/internal/index"
)

type mockQuerier struct {
	result  *index.Result
	err     error
	lastQ   *index.Query
	sawDone bool
}

func (m *mockQuerier) Query(ctx context.Context, q *index.Query) (*index.Result, error) {
	m.lastQ = q
	if _, ok := ctx.Deadline(); ok {
		m.sawDone = true
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestNearest_ConvertsMatches(t *testing.T) {
	mq := &mockQuerier{result: &index.Result{Matches: []index.Match{
		{Key: "doc:1", Score: 0.93, Metadata: map[string]any{"text": "a"}},
		{Key: "doc:2", Score: 0.55, Metadata: map[string]any{"text": "b"}},
	}}}
	repo := New(mq)

	got, err := repo.Nearest(context.Background(), domain.Vector{0.1, 0.2}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Score != 0.93 {
		t.Errorf("expected score 0.93, got %v", got[0].Score)
	}
	if got[1].Metadata["text"] != "b" {
		t.Errorf("metadata not carried through: %v", got[1].Metadata)
	}
}

func TestNearest_RequestsMetadata(t *testing.T) {
	mq := &mockQuerier{result: &index.Result{}}
	repo := New(mq)

	if _, err := repo.Nearest(context.Background(), domain.Vector{0.1}, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mq.lastQ.IncludeMetadata {
		t.Error("metadata must always be requested")
	}
	if mq.lastQ.TopK != 5 {
		t.Errorf("expected topK=5, got %d", mq.lastQ.TopK)
	}
}

func TestNearest_WrapsDriverFailure(t *testing.T) {
	driverErr := &index.Error{Op: index.OpQuery, Err: errors.New("NOAUTH")}
	mq := &mockQuerier{err: driverErr}
	repo := New(mq)

	_, err := repo.Nearest(context.Background(), domain.Vector{0.1}, 1)
	if !errors.Is(err, domain.ErrUpstreamQuery) {
		t.Fatalf("expected ErrUpstreamQuery, got %v", err)
	}

	var ie *index.Error
	if !errors.As(err, &ie) {
		t.Error("driver error detail must be preserved for diagnosis")
	}
}

func TestNearest_AppliesTimeout(t *testing.T) {
	mq := &mockQuerier{result: &index.Result{}}
	repo := New(mq).WithTimeout(1)

	if _, err := repo.Nearest(context.Background(), domain.Vector{0.1}, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mq.sawDone {
		t.Error("expected a deadline on the query context")
	}
}

func TestNearest_EmptyResult(t *testing.T) {
	mq := &mockQuerier{result: &index.Result{}}
	repo := New(mq)

	got, err := repo.Nearest(context.Background(), domain.Vector{0.1}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
}
