// Package qa holds the question and answer records served by the join store.
package qa

import "errors"

// ErrMissingID signals a record row without its required identifier field.
var ErrMissingID = errors.New("missing record id")

// Question is a single question record. Immutable after load.
type Question struct {
	id    string
	title string
	body  string
	extra map[string]string
}

// NewQuestion creates a question record. extra carries passthrough
// columns from the source dataset verbatim.
func NewQuestion(id, title, body string, extra map[string]string) (Question, error) {
	if id == "" {
		return Question{}, ErrMissingID
	}
	return Question{id: id, title: title, body: body, extra: extra}, nil
}

// ID returns the question identifier.
func (q *Question) ID() string { return q.id }

// Title returns the question title.
func (q *Question) Title() string { return q.title }

// Body returns the question body.
func (q *Question) Body() string { return q.body }

// Fields returns all record fields, required and passthrough, keyed by
// their source column names.
func (q *Question) Fields() map[string]string {
	m := make(map[string]string, len(q.extra)+3)
	for k, v := range q.extra {
		m[k] = v
	}
	m["Id"] = q.id
	m["Title"] = q.title
	m["Body"] = q.body
	return m
}

// Answer is a single answer record referencing its parent question.
// Immutable after load.
type Answer struct {
	id       string
	parentID string
	body     string
	score    float64
	extra    map[string]string
}

// NewAnswer creates an answer record. parentID is the foreign key into the
// question mapping; it may reference a question absent from the current load.
func NewAnswer(id, parentID, body string, score float64, extra map[string]string) (Answer, error) {
	if id == "" || parentID == "" {
		return Answer{}, ErrMissingID
	}
	return Answer{id: id, parentID: parentID, body: body, score: score, extra: extra}, nil
}

// ID returns the answer identifier.
func (a *Answer) ID() string { return a.id }

// ParentID returns the referenced question identifier.
func (a *Answer) ParentID() string { return a.parentID }

// Body returns the answer body.
func (a *Answer) Body() string { return a.body }

// Score returns the answer score.
func (a *Answer) Score() float64 { return a.score }

// Fields returns all record fields keyed by their source column names.
func (a *Answer) Fields() map[string]string {
	m := make(map[string]string, len(a.extra)+3)
	for k, v := range a.extra {
		m[k] = v
	}
	m["Id"] = a.id
	m["ParentId"] = a.parentID
	m["Body"] = a.body
	return m
}
