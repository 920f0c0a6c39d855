package driven

import (
	"context"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
)

// VectorIndex stores (vector, chunk, provenance) tuples and answers
// nearest-neighbour queries by cosine similarity. The similarity metric
// is fixed; changing it requires a full re-index. The index records the
// embedding model with every tuple: re-embedding under a new model adds
// records rather than overwriting, so historical results survive model
// migration.
type VectorIndex interface {
	// Upsert stores the chunks' vectors and provenance in a single
	// atomic batch. Chunks must carry their Embedding.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// Query returns the k most similar chunks for the active model,
	// strictly descending by score with ties broken by ingestion
	// order. An empty index yields an empty result, not an error.
	Query(ctx context.Context, vector []float32, k int, filter QueryFilter) ([]VectorHit, error)

	// DeleteDocument removes all tuples belonging to a document,
	// enabling delete-then-insert re-ingestion.
	DeleteDocument(ctx context.Context, documentID string) error

	// Count returns the number of indexed tuples for the active model.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// QueryFilter restricts a vector query by document metadata.
type QueryFilter struct {
	// Format restricts hits to documents of one format.
	// Empty means no restriction.
	Format domain.Format
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's parent document.
	DocumentID string

	// Score is the cosine similarity (-1 to 1).
	Score float64
}
