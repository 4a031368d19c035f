package pipeline

import "errors"

var (
	// ErrSearchClientRequired is returned when a search client is not provided.
	ErrSearchClientRequired = errors.New("search client required")

	// ErrExtractorRequired is returned when a company extractor is not provided.
	ErrExtractorRequired = errors.New("company extractor required")

	// ErrInvalidMaxResults is returned when the result bound is not positive.
	ErrInvalidMaxResults = errors.New("max results must be positive")
)
