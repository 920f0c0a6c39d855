package driving

import (
	"context"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
)

// IngestService drives documents through the ingestion pipeline:
// extract, chunk, embed, index.
type IngestService interface {
	// Ingest processes the given files. Per-document failures are
	// aggregated into the report and never abort the batch. On
	// cancellation the report accumulated so far is returned together
	// with the context error.
	Ingest(ctx context.Context, paths []string) (*domain.IngestReport, error)

	// IngestDir walks a directory tree and ingests every supported
	// file found.
	IngestDir(ctx context.Context, dir string) (*domain.IngestReport, error)

	// Clear removes every stored document together with its chunks
	// and vectors.
	Clear(ctx context.Context) error
}
