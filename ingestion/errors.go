package ingestion

import "errors"

var (
	// ErrChapterRepositoryRequired is returned when a chapter repository is not provided.
	ErrChapterRepositoryRequired = errors.New("chapter repository required")

	// ErrIndexRepositoryRequired is returned when an index repository is not provided.
	ErrIndexRepositoryRequired = errors.New("index repository required")
)
