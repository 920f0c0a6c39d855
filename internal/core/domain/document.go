package domain

import (
	"fmt"
	"time"
)

// Document is the canonical representation of an ingested file after
// extraction. It is immutable once stored; re-ingesting the same path
// replaces the stored document rather than mutating it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Path is the source file location.
	Path string

	// Format tags the source file kind.
	Format Format

	// Title is the human-readable title.
	Title string

	// Content is the full extracted text.
	Content string

	// Fields holds structured values recovered during extraction,
	// e.g. "total_amount" -> "142.50" for utility bills.
	Fields map[string]string

	// Confidence estimates extraction quality (0-1). Direct text
	// extraction scores higher than OCR recovery.
	Confidence float64

	// ContentHash is the sha256 of the raw source bytes, used for
	// idempotent re-ingestion detection.
	ContentHash string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last replaced.
	UpdatedAt time.Time
}

// Chunk is the unit of embedding and retrieval: a contiguous span of a
// document's content.
type Chunk struct {
	// ID is deterministic for a fixed document and position.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text span.
	Content string

	// Position is the ordinal index within the document.
	Position int

	// StartOffset and EndOffset are rune offsets into the parent
	// content. Offsets are monotonic across positions.
	StartOffset int
	EndOffset   int

	// Embedding is the vector representation, populated at ingestion.
	Embedding []float32

	// Metadata carries chunk-specific key-value pairs (format tag,
	// source path) for retrieval-time filtering and provenance.
	Metadata map[string]any
}

// ChunkID builds the deterministic chunk identifier for a document
// position. Same document and position always yield the same ID.
func ChunkID(documentID string, position int) string {
	return fmt.Sprintf("%s:%04d", documentID, position)
}
