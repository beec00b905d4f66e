// Package hit holds the provenance-tagged search hit produced by the
// hybrid merge engine.
package hit

// Source marks which retrieval modality produced a hit. Scores from
// different sources are on different scales and must not be compared.
type Source string

const (
	// Lexical marks a term-matching hit scored by the index's relevance function.
	Lexical Source = "Keyword"
	// Semantic marks a vector similarity hit scored as cosine similarity + 1.0.
	Semantic Source = "Semantic"
)

// Hit is a single search hit. Produced transiently per query, never persisted.
type Hit struct {
	id     string
	source Source
	score  float64
	title  string
}

// New creates a search hit.
func New(id string, source Source, score float64, title string) Hit {
	return Hit{id: id, source: source, score: score, title: title}
}

// ID returns the document identifier.
func (h *Hit) ID() string { return h.id }

// Source returns the retrieval modality that produced the hit.
func (h *Hit) Source() Source { return h.source }

// Score returns the relevance score on the source's own scale.
func (h *Hit) Score() float64 { return h.score }

// Title returns the display title.
func (h *Hit) Title() string { return h.title }
