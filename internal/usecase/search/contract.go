package search

import (
	"context"

	"github.com/kailas-cloud/qadex/internal/domain"
	"github.com/kailas-cloud/qadex/internal/domain/search/hit"
)

// Retriever defines the index contract for both retrieval modalities.
type Retriever interface {
	// Lexical returns term-matching hits in the index's relevance order.
	Lexical(ctx context.Context, query string, topK int) ([]hit.Hit, error)
	// Semantic returns similarity hits ranked by cosine+1.0 score, descending.
	Semantic(ctx context.Context, vector []float32, topK int) ([]hit.Hit, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
