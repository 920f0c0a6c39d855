package driving

import (
	"context"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
)

// QueryService answers natural-language questions over the index.
type QueryService interface {
	// Query retrieves the most relevant chunks for the question and
	// generates a grounded answer with citations. When retrieval finds
	// nothing, the generator is still invoked with an explicit
	// no-context marker and the returned QueryContext has NoContext
	// set; the call does not fail.
	Query(ctx context.Context, question string, opts domain.QueryOptions) (*domain.QueryContext, error)

	// Stats reports index size for status displays.
	Stats(ctx context.Context) (*Stats, error)
}

// Stats summarises the current index state.
type Stats struct {
	// Documents is the number of stored documents.
	Documents int

	// Vectors is the number of indexed embeddings for the active model.
	Vectors int

	// EmbeddingModel is the active embedding model name.
	EmbeddingModel string

	// GenerationModel is the configured generation model name.
	GenerationModel string
}
