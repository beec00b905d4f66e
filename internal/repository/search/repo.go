// Package search adapts FT.SEARCH results into provenance-tagged hits and
// owns the semantic scoring contract: cosine similarity shifted by +1.0.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/qadex/internal/db"
	"github.com/kailas-cloud/qadex/internal/domain"
	"github.com/kailas-cloud/qadex/internal/domain/search/hit"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Retriever.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
}

// New creates a search repository over the question index.
func New(s store, indexName, keyPrefix string) *Repo {
	return &Repo{store: s, indexName: indexName, keyPrefix: keyPrefix}
}

// Lexical runs a term-matching query against the title field. Hits keep the
// index's own relevance order and scores; this layer never re-ranks them.
func (r *Repo) Lexical(ctx context.Context, query string, topK int) ([]hit.Hit, error) {
	q := &db.TextQuery{
		IndexName:    r.indexName,
		Field:        "title",
		Query:        query,
		TopK:         topK,
		ReturnFields: []string{"title"},
	}

	sr, err := r.store.SearchText(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: search title: %w", domain.ErrUpstreamUnavailable, err)
	}

	return r.toHits(sr, hit.Lexical, identityScore), nil
}

// Semantic re-scores stored title vectors against the query embedding.
// The backend reports cosine distance; the exposed score is cosine
// similarity + 1.0, so 2.0 - distance. Range [0, 2], descending.
func (r *Repo) Semantic(ctx context.Context, vector []float32, topK int) ([]hit.Hit, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName,
		Field:        "title_vector",
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"title", "__title_vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: search title_vector: %w", domain.ErrUpstreamUnavailable, err)
	}

	return r.toHits(sr, hit.Semantic, shiftedCosine), nil
}

func (r *Repo) toHits(sr *db.SearchResult, source hit.Source, score func(float64) float64) []hit.Hit {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	hits := make([]hit.Hit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, r.keyPrefix)
		hits = append(hits, hit.New(id, source, score(entry.Score), entry.Fields["title"]))
	}
	return hits
}

func identityScore(s float64) float64 { return s }

// shiftedCosine maps cosine distance onto the cosine+1.0 scale.
func shiftedCosine(distance float64) float64 {
	return 2.0 - distance
}
