package driven

import (
	"context"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
)

// DocumentStore persists documents and their chunk texts. The ingestion
// orchestrator is the only writer; retrieval reads only.
type DocumentStore interface {
	// ReplaceDocument atomically removes any stored document with the
	// same path and stores the document with its chunks. This is the
	// delete-then-insert step of re-ingestion.
	ReplaceDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByPath retrieves a document by source path.
	GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error)

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves a document's chunks ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all stored documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)
}
