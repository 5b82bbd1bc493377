package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/ragctx/ragctx/internal/index"
)

// vectorScoreField is the alias under which FT.SEARCH reports the KNN
// distance among the returned hash fields.
const vectorScoreField = "__vector_score"

// Query runs a KNN vector similarity search via FT.SEARCH.
func (s *Store) Query(ctx context.Context, q *index.Query) (*index.Result, error) {
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	queryStr := fmt.Sprintf("*=>[KNN %d @vector $BLOB AS %s]", q.TopK, vectorScoreField)

	args := []string{
		s.indexName, queryStr,
		"SORTBY", vectorScoreField,
		"LIMIT", "0", strconv.Itoa(q.TopK),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &index.Error{Op: index.OpQuery, Err: err}
	}

	return parseKNNResult(raw, q.IncludeMetadata)
}

// parseKNNResult converts the RESP2 FT.SEARCH reply into an index.Result.
func parseKNNResult(raw []rueidis.RedisMessage, includeMetadata bool) (*index.Result, error) {
	if len(raw) == 0 {
		return &index.Result{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &index.Result{}, nil
	}

	matches := make([]index.Match, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		m := index.Match{Key: key}
		pairs := parseFieldPairs(fields)

		if scoreStr, ok := pairs[vectorScoreField]; ok {
			if s, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				m.Score = max(0, 1.0-s) // cosine distance -> similarity, clamped to [0,1]
			}
			delete(pairs, vectorScoreField)
		}

		if includeMetadata {
			meta := make(map[string]any, len(pairs))
			for k, v := range pairs {
				meta[k] = v
			}
			m.Metadata = meta
		}

		matches = append(matches, m)
	}

	return &index.Result{Matches: matches}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
