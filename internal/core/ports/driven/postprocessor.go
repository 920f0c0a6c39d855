package driven

import (
	"context"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
)

// PostProcessor transforms a document's content into chunks or rewrites
// chunks produced by an earlier processor in the pipeline.
type PostProcessor interface {
	// Name returns the processor name used in configuration.
	Name() string

	// Process receives the document and the chunks so far. The first
	// processor in a pipeline receives nil chunks and creates them.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline runs a document through an ordered chain of
// post-processors, producing its final chunk set.
type PostProcessorPipeline interface {
	// Process produces the chunks for a document.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
