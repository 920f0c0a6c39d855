// Package plaintext extracts text files without transformation.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
	"github.com/docquery-labs/docquery-cli/internal/extractors"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatText}
}

// Extract reads the file as UTF-8 text.
func (e *Extractor) Extract(_ context.Context, path string) (*domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrExtraction, path, err)
	}

	now := time.Now()
	return &domain.Document{
		ID:          uuid.New().String(),
		Path:        path,
		Format:      domain.FormatText,
		Title:       extractors.TitleFromPath(path),
		Content:     extractors.CleanText(string(raw)),
		Confidence:  1.0,
		ContentHash: extractors.HashContent(raw),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
