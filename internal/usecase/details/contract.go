package details

import "github.com/kailas-cloud/qadex/internal/domain/qa"

// JoinReader resolves a question id into the question and its answers.
type JoinReader interface {
	Details(id string) (qa.Question, []qa.Answer, error)
}
