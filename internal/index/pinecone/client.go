// Package pinecone implements index.Querier against a Pinecone-style HTTP
// vector index API.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ragctx/ragctx/internal/index"
)

// Compile-time check: Client implements index.Querier.
var _ index.Querier = (*Client)(nil)

// Config holds connection parameters for a Pinecone index.
type Config struct {
	// Host is the index endpoint, e.g. "https://my-index-abc123.svc.us-east-1.pinecone.io".
	Host    string
	APIKey  string
	Timeout time.Duration
}

// Client implements index.Querier over the Pinecone HTTP API.
type Client struct {
	host   string
	apiKey string
	http   *http.Client
}

// NewClient creates a Pinecone index client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	host := strings.TrimSuffix(cfg.Host, "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		host:   host,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: timeout},
	}, nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// Query runs a similarity search via POST /query.
func (c *Client) Query(ctx context.Context, q *index.Query) (*index.Result, error) {
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	body, err := json.Marshal(queryRequest{
		Vector:          q.Vector,
		TopK:            q.TopK,
		IncludeMetadata: q.IncludeMetadata,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	resp, err := c.post(ctx, "/query", body)
	if err != nil {
		return nil, &index.Error{Op: index.OpQuery, Err: err}
	}

	var parsed queryResponse
	if err := json.Unmarshal(resp, &parsed); err != nil {
		return nil, &index.Error{Op: index.OpQuery, Err: fmt.Errorf("decode response: %w", err)}
	}

	matches := make([]index.Match, len(parsed.Matches))
	for i, m := range parsed.Matches {
		matches[i] = index.Match{
			Key:      m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		}
	}

	return &index.Result{Matches: matches}, nil
}

// Ping checks index availability via POST /describe_index_stats.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.post(ctx, "/describe_index_stats", []byte("{}")); err != nil {
		return &index.Error{Op: index.OpPing, Err: err}
	}
	return nil
}

// Close is a no-op; the client holds no persistent connections beyond the
// http.Transport pool.
func (c *Client) Close() {}

// WaitForReady polls Ping until the index responds or timeout expires.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for index: %w", ctx.Err())
		case <-ticker.C:
			if err := c.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, truncate(data, 256))
	}

	return data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
