// Package ingest pushes the join store's questions into the search index:
// a producer batches questions, a worker pool embeds titles and writes the
// documents.
package ingest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qadex/internal/domain"
	"github.com/kailas-cloud/qadex/internal/domain/qa"
	"github.com/kailas-cloud/qadex/internal/metrics"
	"github.com/kailas-cloud/qadex/internal/repository/question"
)

const (
	defaultBatchSize = 50
	defaultWorkers   = 4
)

// Service runs the bulk indexing pipeline.
type Service struct {
	repo      Indexer
	embed     domain.Embedder
	batchSize int
	workers   int
	logger    *zap.Logger
}

// Result summarizes one ingest run.
type Result struct {
	Indexed  int64
	Failed   int64
	Duration time.Duration
}

// New creates an ingest service.
func New(repo Indexer, embed domain.Embedder, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		embed:     embed,
		batchSize: defaultBatchSize,
		workers:   defaultWorkers,
		logger:    logger,
	}
}

// WithPipeline overrides batch size and worker count.
func (s *Service) WithPipeline(batchSize, workers int) *Service {
	if batchSize > 0 {
		s.batchSize = batchSize
	}
	if workers > 0 {
		s.workers = workers
	}
	return s
}

// Run embeds and indexes all questions. A failed batch is counted and
// skipped; the run itself only fails when the index cannot be created.
func (s *Service) Run(ctx context.Context, questions []qa.Question) (Result, error) {
	start := time.Now()

	if err := s.repo.EnsureIndex(ctx); err != nil {
		return Result{}, err
	}

	batches := make(chan []qa.Question, s.workers*2)
	var wg sync.WaitGroup
	var indexed, failed atomic.Int64

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				s.processBatch(ctx, batch, &indexed, &failed)
			}
		}()
	}

	for i := 0; i < len(questions); i += s.batchSize {
		end := min(i+s.batchSize, len(questions))
		batches <- questions[i:end]
	}
	close(batches)

	wg.Wait()

	return Result{
		Indexed:  indexed.Load(),
		Failed:   failed.Load(),
		Duration: time.Since(start),
	}, nil
}

func (s *Service) processBatch(
	ctx context.Context, batch []qa.Question, indexed, failed *atomic.Int64,
) {
	start := time.Now()

	titles := make([]string, len(batch))
	for i := range batch {
		titles[i] = batch[i].Title()
	}

	embedded, err := s.batchEmbed(ctx, titles)
	if err != nil {
		s.logger.Warn("batch embed failed",
			zap.Int("rows", len(batch)), zap.Error(err))
		failed.Add(int64(len(batch)))
		metrics.IngestRowsFailed.WithLabelValues("embed_error").Add(float64(len(batch)))
		return
	}

	docs := make([]question.Indexed, len(batch))
	for i := range batch {
		docs[i] = question.Indexed{Question: batch[i], Vector: embedded.Embeddings[i]}
	}

	if err := s.repo.Index(ctx, docs); err != nil {
		s.logger.Warn("batch index failed",
			zap.Int("rows", len(batch)), zap.Error(err))
		failed.Add(int64(len(batch)))
		metrics.IngestRowsFailed.WithLabelValues("index_error").Add(float64(len(batch)))
		return
	}

	indexed.Add(int64(len(batch)))
	metrics.IngestRowsIndexed.Add(float64(len(batch)))
	metrics.IngestBatchDuration.Observe(time.Since(start).Seconds())
}

func (s *Service) batchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := s.embed.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, s.embed, texts)
}
