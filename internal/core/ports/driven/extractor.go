package driven

import (
	"context"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
)

// Extractor turns a source file into a Document. Each extractor handles
// specific formats and is dispatched through the ExtractorRegistry.
// Extraction has no side effects beyond the returned Document.
type Extractor interface {
	// Formats returns the formats this extractor handles.
	Formats() []domain.Format

	// Extract reads the file and produces a Document with Content,
	// and for utility bills the recovered structured Fields.
	// Returns domain.ErrExtraction (wrapped) when the file cannot
	// be parsed.
	Extract(ctx context.Context, path string) (*domain.Document, error)
}

// ExtractorRegistry dispatches extraction by format tag.
type ExtractorRegistry interface {
	// Extract detects the file's format and runs the matching
	// extractor. Returns domain.ErrUnsupportedFormat when no
	// extractor is registered for the format.
	Extract(ctx context.Context, path string) (*domain.Document, error)

	// Supports reports whether a registered extractor handles the path.
	Supports(path string) bool
}

// OCREngine recognises text in rasterised document pages. The engine
// itself is external; the pipeline consumes recognised text only.
// Optional: when nil, scanned documents fall back to direct extraction.
type OCREngine interface {
	// RecognisePDF rasterises the PDF at high resolution and runs
	// recognition page by page, returning one text per page in order.
	RecognisePDF(ctx context.Context, path string) ([]string, error)

	// RecogniseTableRegions reruns recognition with word geometry and
	// reassembles line-item table rows, keeping a row's label and
	// value columns on one line even when plain page recognition
	// splits the columns into separate blocks. One region text per
	// page, in page order.
	RecogniseTableRegions(ctx context.Context, path string) ([]string, error)

	// Available reports whether the engine can run on this host.
	Available() bool
}
