// Package joinstore keeps the question/answer datasets in memory and
// serves the question -> answers join on the hot read path.
package joinstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qadex/internal/domain"
	"github.com/kailas-cloud/qadex/internal/domain/qa"
)

// snapshot is one immutable load of both datasets. Readers always see a
// question mapping and an answers mapping from the same load.
type snapshot struct {
	questions map[string]qa.Question
	answers   map[string][]qa.Answer
	order     []string // question ids in source order, for bulk indexing
}

// Store holds the current snapshot behind an atomic pointer. Load builds a
// full replacement snapshot and publishes it as a unit; reads never lock.
type Store struct {
	snap   atomic.Pointer[snapshot]
	logger *zap.Logger
}

// New creates an empty store. Details fails until the first Load.
func New(logger *zap.Logger) *Store {
	s := &Store{logger: logger}
	s.snap.Store(&snapshot{
		questions: map[string]qa.Question{},
		answers:   map[string][]qa.Answer{},
	})
	return s
}

// Load parses both CSV sources into a fresh snapshot and swaps it in.
// Rows missing required fields are skipped; an unreadable source fails the
// whole load and leaves the previous snapshot published.
// Returns the question count and the answer group count.
func (s *Store) Load(questionsPath, answersPath string) (int, int, error) {
	next := &snapshot{
		questions: make(map[string]qa.Question),
		answers:   make(map[string][]qa.Answer),
	}

	if err := s.loadQuestions(questionsPath, next); err != nil {
		return 0, 0, err
	}
	if err := s.loadAnswers(answersPath, next); err != nil {
		return 0, 0, err
	}

	s.snap.Store(next)
	return len(next.questions), len(next.answers), nil
}

// Details returns the question and its answers in load order.
// The answer list is empty when the question has none; orphaned answers
// never surface here.
func (s *Store) Details(id string) (qa.Question, []qa.Answer, error) {
	snap := s.snap.Load()
	q, ok := snap.questions[id]
	if !ok {
		return qa.Question{}, nil, fmt.Errorf("question %q: %w", id, domain.ErrQuestionNotFound)
	}
	return q, snap.answers[id], nil
}

// Questions returns all loaded questions in source order.
func (s *Store) Questions() []qa.Question {
	snap := s.snap.Load()
	out := make([]qa.Question, 0, len(snap.order))
	for _, id := range snap.order {
		out = append(out, snap.questions[id])
	}
	return out
}

// Counts returns the question count and the answer group count of the
// current snapshot.
func (s *Store) Counts() (int, int) {
	snap := s.snap.Load()
	return len(snap.questions), len(snap.answers)
}

func (s *Store) loadQuestions(path string, next *snapshot) error {
	return s.readRows(path, []string{"Id"}, func(row map[string]string) bool {
		q, err := qa.NewQuestion(
			row["Id"], row["Title"], row["Body"],
			extraFields(row, "Id", "Title", "Body"),
		)
		if err != nil {
			return false
		}
		if _, dup := next.questions[q.ID()]; !dup {
			next.order = append(next.order, q.ID())
		}
		// last-loaded wins on duplicate ids
		next.questions[q.ID()] = q
		return true
	})
}

func (s *Store) loadAnswers(path string, next *snapshot) error {
	return s.readRows(path, []string{"Id", "ParentId"}, func(row map[string]string) bool {
		score, _ := strconv.ParseFloat(row["Score"], 64)
		a, err := qa.NewAnswer(
			row["Id"], row["ParentId"], row["Body"], score,
			extraFields(row, "Id", "ParentId", "Body"),
		)
		if err != nil {
			return false
		}
		// grouped eagerly, preserving source order within each group
		next.answers[a.ParentID()] = append(next.answers[a.ParentID()], a)
		return true
	})
}

// readRows streams a header-described CSV, calling apply per row.
// Rows that fail CSV parsing or that apply rejects are skipped; anything
// else is fatal.
func (s *Store) readRows(path string, required []string, apply func(map[string]string) bool) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", domain.ErrSourceUnreadable, path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("%w: read header %s: %w", domain.ErrSourceUnreadable, path, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("%w: %s: missing column %q", domain.ErrSourceUnreadable, path, name)
		}
	}

	skipped := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return fmt.Errorf("%w: read %s: %w", domain.ErrSourceUnreadable, path, err)
		}

		row := make(map[string]string, len(cols))
		for name, i := range cols {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		if !apply(row) {
			skipped++
		}
	}

	if skipped > 0 && s.logger != nil {
		s.logger.Warn("skipped malformed rows",
			zap.String("source", filepath.Base(path)),
			zap.Int("rows", skipped),
		)
	}
	return nil
}

func extraFields(row map[string]string, known ...string) map[string]string {
	extra := make(map[string]string, len(row))
	for k, v := range row {
		extra[k] = v
	}
	for _, k := range known {
		delete(extra, k)
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}
