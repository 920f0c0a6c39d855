package extractors

import (
	"context"
	"fmt"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches extraction by format tag. Formats registered later
// override earlier registrations, so specialised extractors (utility
// bills) can be layered over generic ones.
type Registry struct {
	byFormat map[domain.Format]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		byFormat: make(map[domain.Format]driven.Extractor),
	}
}

// Register adds an extractor for each format it declares.
func (r *Registry) Register(e driven.Extractor) {
	for _, f := range e.Formats() {
		r.byFormat[f] = e
	}
}

// Extract detects the file's format and runs the matching extractor.
func (r *Registry) Extract(ctx context.Context, path string) (*domain.Document, error) {
	format := domain.DetectFormat(path)
	extractor, ok := r.byFormat[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, path)
	}
	return extractor.Extract(ctx, path)
}

// Supports reports whether a registered extractor handles the path.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byFormat[domain.DetectFormat(path)]
	return ok
}

// Formats returns the registered format tags.
func (r *Registry) Formats() []domain.Format {
	formats := make([]domain.Format, 0, len(r.byFormat))
	for f := range r.byFormat {
		formats = append(formats, f)
	}
	return formats
}
