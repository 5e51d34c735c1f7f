package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtraction indicates a document could not be converted to text.
	// Batch ingestion skips the document and continues.
	ErrExtraction = errors.New("text extraction failed")

	// ErrUnsupportedFormat indicates no extractor handles the file type.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmbeddingUnavailable indicates the embedding service failed or is not configured.
	// Vector scoring is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the generation service failed or is not configured.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrTimeout indicates an external call exceeded its deadline.
	// It is always wrapped together with the service-specific error.
	ErrTimeout = errors.New("deadline exceeded")

	// ErrNoGroundingFound indicates retrieval returned nothing to answer from.
	ErrNoGroundingFound = errors.New("no grounding found")

	// ErrUnsupportedSchema indicates an unknown structured extraction schema.
	ErrUnsupportedSchema = errors.New("unsupported schema")
)
