package domain

import "errors"

var (
	// ErrQuestionNotFound signals a question id absent from the join store.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUpstreamUnavailable signals that the search backend cannot be reached
	// or returned a protocol-level failure.
	ErrUpstreamUnavailable = errors.New("search backend unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrSourceUnreadable signals a tabular data source that cannot be opened or read.
	ErrSourceUnreadable = errors.New("data source unreadable")
)
