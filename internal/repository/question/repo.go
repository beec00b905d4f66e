// Package question maintains the searchable question index: one Redis hash
// per question plus an FT index over title and title_vector.
package question

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/kailas-cloud/qadex/internal/db"
	"github.com/kailas-cloud/qadex/internal/domain/qa"
)

// store is the consumer interface for question indexing (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Indexed pairs a question with its title embedding, ready for storage.
type Indexed struct {
	Question qa.Question
	Vector   []float32
}

// Repo implements usecase/ingest.Indexer.
type Repo struct {
	store     store
	keyPrefix string
	dim       int
}

// New creates a question index repository. dim is the embedding dimension
// the FT vector field is declared with.
func New(s store, keyPrefix string, dim int) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, dim: dim}
}

// IndexName returns the FT index name queries run against.
func (r *Repo) IndexName() string {
	return r.keyPrefix + "questions:idx"
}

// KeyPrefix returns the hash key prefix for question documents.
func (r *Repo) KeyPrefix() string {
	return r.keyPrefix + "questions:"
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.IndexName())
	if err != nil {
		return fmt.Errorf("probe index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:        r.IndexName(),
		StorageType: db.StorageHash,
		Prefixes:    []string{r.KeyPrefix()},
		Fields: []db.IndexField{
			{Name: "title", Type: db.IndexFieldText},
			{
				Name:       "title_vector",
				Type:       db.IndexFieldVector,
				VectorAlgo: db.VectorFlat,
				VectorDim:  r.dim,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		// concurrent creation is fine
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Index stores a batch of embedded questions in one pipelined round-trip.
func (r *Repo) Index(ctx context.Context, batch []Indexed) error {
	if len(batch) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(batch))
	for i := range batch {
		q := &batch[i].Question
		if len(batch[i].Vector) != r.dim {
			return fmt.Errorf("question %s: vector dimension %d, index expects %d",
				q.ID(), len(batch[i].Vector), r.dim)
		}
		items = append(items, db.HashSetItem{
			Key: r.KeyPrefix() + q.ID(),
			Fields: map[string]string{
				"title":        q.Title(),
				"body":         q.Body(),
				"title_vector": vectorToBytes(batch[i].Vector),
			},
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("index questions: %w", err)
	}
	return nil
}

// vectorToBytes serializes a float32 vector into the little-endian binary
// form the VECTOR field expects.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
