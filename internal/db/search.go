package db

// TextQuery is a term-matching query against a TEXT field.
type TextQuery struct {
	IndexName    string
	Field        string
	Query        string
	TopK         int
	ReturnFields []string
}

// KNNQuery is a vector similarity query against a VECTOR field.
// The driver returns the backend's raw cosine distance in SearchEntry.Score;
// translating distance into the exposed score scale is the caller's job.
type KNNQuery struct {
	IndexName    string
	Field        string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchEntry is one document returned by FT.SEARCH.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is a parsed FT.SEARCH response.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}
