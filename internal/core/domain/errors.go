package domain

import "errors"

// Domain errors represent pipeline failures. Per-document errors during
// ingestion are aggregated into the IngestReport; query-time errors are
// surfaced directly to the caller.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates no extractor handles the file type.
	// Fatal per document; the batch continues.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtraction indicates the underlying reader or OCR pass could
	// not parse the file. Fatal per document; the batch continues.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmbedding indicates the external embedding call failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndex indicates a storage-layer failure. Aborts the current
	// document's ingestion but not the batch.
	ErrIndex = errors.New("index failure")

	// ErrGeneration indicates the answer-generation call failed after
	// exhausting retries.
	ErrGeneration = errors.New("generation failed")
)

// ErrorKind classifies an error into the ingestion failure taxonomy.
// Unrecognised errors are reported as "error".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrEmbedding):
		return "embedding"
	case errors.Is(err, ErrIndex):
		return "index"
	case errors.Is(err, ErrGeneration):
		return "generation"
	default:
		return "error"
	}
}
