// Package pdf extracts text from PDF documents.
package pdf

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
	"github.com/docquery-labs/docquery-cli/internal/extractors"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles regular PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatPDF}
}

// Extract reads the PDF and produces a Document with page-marked text.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrExtraction, path, err)
	}

	text, pages, err := ExtractText(ctx, path)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doc := &domain.Document{
		ID:          uuid.New().String(),
		Path:        path,
		Format:      domain.FormatPDF,
		Title:       extractors.TitleFromPath(path),
		Content:     extractors.CleanText(text),
		Confidence:  1.0,
		ContentHash: extractors.HashContent(raw),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	doc.Fields = map[string]string{"pages": fmt.Sprintf("%d", pages)}

	return doc, nil
}

// ExtractText pulls plain text from every page, separated by page
// markers. Returns the text and the page count. The underlying reader
// panics on malformed files; those are mapped to ErrExtraction.
func ExtractText(ctx context.Context, path string) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: parse %s: %v", domain.ErrExtraction, path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("%w: open %s: %v", domain.ErrExtraction, path, err)
	}
	defer f.Close()

	pages = reader.NumPage()

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages rather than failing the document.
			continue
		}

		fmt.Fprintf(&sb, "--- Page %d ---\n%s\n", i, pageText)
	}

	return sb.String(), pages, nil
}
