package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qadex/internal/domain"
	"github.com/kailas-cloud/qadex/internal/domain/qa"
	"github.com/kailas-cloud/qadex/internal/repository/question"
)

// --- Mocks ---

type mockIndexer struct {
	mu        sync.Mutex
	ensureErr error
	indexErr  error
	batches   [][]question.Indexed
}

func (m *mockIndexer) EnsureIndex(_ context.Context) error { return m.ensureErr }

func (m *mockIndexer) Index(_ context.Context, batch []question.Indexed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexErr != nil {
		return m.indexErr
	}
	m.batches = append(m.batches, batch)
	return nil
}

func (m *mockIndexer) indexedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

type mockBatchEmbedder struct {
	err error
}

func (m *mockBatchEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1}}, nil
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{0.1}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings}, nil
}

// singleEmbedder has no BatchEmbed method, forcing the per-text fallback.
type singleEmbedder struct{}

func (singleEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{0.5}}, nil
}

func makeQuestions(t *testing.T, n int) []qa.Question {
	t.Helper()
	out := make([]qa.Question, n)
	for i := range out {
		q, err := qa.NewQuestion(string(rune('a'+i)), "title", "body", nil)
		if err != nil {
			t.Fatalf("NewQuestion: %v", err)
		}
		out[i] = q
	}
	return out
}

// --- Tests ---

func TestRun_IndexesAllQuestions(t *testing.T) {
	repo := &mockIndexer{}
	svc := New(repo, &mockBatchEmbedder{}, zap.NewNop()).WithPipeline(2, 2)

	res, err := svc.Run(context.Background(), makeQuestions(t, 5))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Indexed != 5 {
		t.Errorf("expected 5 indexed, got %d", res.Indexed)
	}
	if res.Failed != 0 {
		t.Errorf("expected 0 failed, got %d", res.Failed)
	}
	if repo.indexedCount() != 5 {
		t.Errorf("repo saw %d questions, expected 5", repo.indexedCount())
	}
}

func TestRun_EnsureIndexErrorIsFatal(t *testing.T) {
	repo := &mockIndexer{ensureErr: errors.New("ft.create refused")}
	svc := New(repo, &mockBatchEmbedder{}, zap.NewNop())

	_, err := svc.Run(context.Background(), makeQuestions(t, 3))
	if err == nil {
		t.Fatal("expected error from EnsureIndex")
	}
	if repo.indexedCount() != 0 {
		t.Error("nothing should be indexed when the index cannot be created")
	}
}

func TestRun_EmbedFailureCountsBatch(t *testing.T) {
	repo := &mockIndexer{}
	svc := New(repo, &mockBatchEmbedder{err: errors.New("provider down")}, zap.NewNop()).
		WithPipeline(2, 1)

	res, err := svc.Run(context.Background(), makeQuestions(t, 4))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failed != 4 {
		t.Errorf("expected 4 failed, got %d", res.Failed)
	}
	if res.Indexed != 0 {
		t.Errorf("expected 0 indexed, got %d", res.Indexed)
	}
}

func TestRun_IndexFailureCountsBatch(t *testing.T) {
	repo := &mockIndexer{indexErr: errors.New("hset failed")}
	svc := New(repo, &mockBatchEmbedder{}, zap.NewNop()).WithPipeline(3, 1)

	res, err := svc.Run(context.Background(), makeQuestions(t, 3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failed != 3 {
		t.Errorf("expected 3 failed, got %d", res.Failed)
	}
}

func TestRun_FallbackWithoutBatchEmbedder(t *testing.T) {
	repo := &mockIndexer{}
	svc := New(repo, singleEmbedder{}, zap.NewNop()).WithPipeline(2, 1)

	res, err := svc.Run(context.Background(), makeQuestions(t, 3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Indexed != 3 {
		t.Errorf("expected 3 indexed via fallback, got %d", res.Indexed)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	repo := &mockIndexer{}
	svc := New(repo, &mockBatchEmbedder{}, zap.NewNop())

	res, err := svc.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Indexed != 0 || res.Failed != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}
