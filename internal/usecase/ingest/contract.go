package ingest

import (
	"context"

	"github.com/kailas-cloud/qadex/internal/repository/question"
)

// Indexer is the storage contract for bulk question indexing.
type Indexer interface {
	EnsureIndex(ctx context.Context) error
	Index(ctx context.Context, batch []question.Indexed) error
}
