package db

// StorageType selects the underlying key type an FT index is built over.
type StorageType string

// StorageHash indexes flat Redis hashes.
const StorageHash StorageType = "HASH"

// IndexFieldType enumerates supported FT schema field types.
type IndexFieldType string

const (
	// IndexFieldText is a full-text searchable field.
	IndexFieldText IndexFieldType = "TEXT"
	// IndexFieldVector is a dense vector field.
	IndexFieldVector IndexFieldType = "VECTOR"
)

// VectorAlgo enumerates vector index algorithms.
type VectorAlgo string

const (
	// VectorFlat is a brute-force index: every stored vector is scored.
	VectorFlat VectorAlgo = "FLAT"
	// VectorHNSW is an approximate graph index.
	VectorHNSW VectorAlgo = "HNSW"
)

// DistanceCosine is the only distance metric qadex uses; the similarity
// contract (cosine + 1.0) depends on it.
const DistanceCosine = "COSINE"

// IndexDefinition describes an FT index to create.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Fields      []IndexField
}

// IndexField describes one schema field of an FT index.
type IndexField struct {
	Name string
	Type IndexFieldType

	VectorAlgo        VectorAlgo
	VectorDim         int
	VectorM           int
	VectorEFConstruct int
}
