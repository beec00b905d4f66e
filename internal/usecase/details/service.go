// Package details resolves a search hit into its full question/answer record.
package details

import (
	"github.com/kailas-cloud/qadex/internal/domain/qa"
)

// Service serves question detail lookups from the join store.
type Service struct {
	join JoinReader
}

// New creates a details service.
func New(join JoinReader) *Service {
	return &Service{join: join}
}

// Get returns the question and its answers in load order. The answer list
// is empty when the question has none; an unknown id returns
// domain.ErrQuestionNotFound.
func (s *Service) Get(id string) (qa.Question, []qa.Answer, error) {
	return s.join.Details(id)
}
