package search

import "github.com/kailas-cloud/qadex/internal/domain/search/hit"

// mergeHits concatenates the two hit lists with first-occurrence-wins
// deduplication: every lexical hit in lexical rank order, then every
// semantic hit not already seen, in semantic rank order. A document found
// by both modalities surfaces with its lexical score. The output is never
// re-sorted across the two blocks: the score scales are not comparable.
func mergeHits(lexical, semantic []hit.Hit) []hit.Hit {
	merged := make([]hit.Hit, 0, len(lexical)+len(semantic))
	seen := make(map[string]struct{}, len(lexical)+len(semantic))

	for _, h := range lexical {
		if _, ok := seen[h.ID()]; ok {
			continue
		}
		seen[h.ID()] = struct{}{}
		merged = append(merged, h)
	}

	for _, h := range semantic {
		if _, ok := seen[h.ID()]; ok {
			continue
		}
		seen[h.ID()] = struct{}{}
		merged = append(merged, h)
	}

	return merged
}
