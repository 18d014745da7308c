package llm

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// CachedEncoder memoises vectors per text. Only misses reach the inner
// encoder, as one batch.
type CachedEncoder struct {
	inner Encoder
	cache *ristretto.Cache[string, []float32]
}

func NewCachedEncoder(inner Encoder, maxEntries int64) (*CachedEncoder, error) {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder cache: %w", err)
	}
	return &CachedEncoder{inner: inner, cache: cache}, nil
}

func (c *CachedEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, t := range texts {
		if v, ok := c.cache.Get(t); ok {
			out[i] = v
			continue
		}
		missing = append(missing, t)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Encode(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(missing), len(vecs))
	}
	for j, idx := range missingIdx {
		out[idx] = vecs[j]
		c.cache.Set(missing[j], vecs[j], 1)
	}
	c.cache.Wait()
	return out, nil
}

func (c *CachedEncoder) Close() {
	c.cache.Close()
}
