// Package search is the hybrid merge engine: one lexical and one semantic
// query per search, run concurrently and merged into a single deduplicated
// hit list.
package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/qadex/internal/domain/search/hit"
)

const defaultDepth = 10

// Service executes hybrid searches.
type Service struct {
	repo  Retriever
	embed Embedder
	depth int
}

// New creates a search service.
func New(repo Retriever, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed, depth: defaultDepth}
}

// WithDepth sets how many hits each modality retrieves before merging.
func (s *Service) WithDepth(depth int) *Service {
	if depth > 0 {
		s.depth = depth
	}
	return s
}

// Search runs the lexical and semantic queries concurrently, waits for
// both, and merges their hit lists. Either failure fails the whole search;
// partial results are never merged.
func (s *Service) Search(ctx context.Context, query string) ([]hit.Hit, error) {
	type retrieval struct {
		hits []hit.Hit
		err  error
	}

	lexCh := make(chan retrieval, 1)
	go func() {
		hits, err := s.repo.Lexical(ctx, query, s.depth)
		lexCh <- retrieval{hits: hits, err: err}
	}()

	semHits, semErr := s.semantic(ctx, query)
	lex := <-lexCh

	if lex.err != nil {
		return nil, fmt.Errorf("lexical query: %w", lex.err)
	}
	if semErr != nil {
		return nil, semErr
	}

	return mergeHits(lex.hits, semHits), nil
}

// semantic embeds the query once and re-scores stored vectors against it.
func (s *Service) semantic(ctx context.Context, query string) ([]hit.Hit, error) {
	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	hits, err := s.repo.Semantic(ctx, embResult.Embedding, s.depth)
	if err != nil {
		return nil, fmt.Errorf("semantic query: %w", err)
	}
	return hits, nil
}
