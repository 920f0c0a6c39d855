// Package utilitybill provides layered extraction for utility bills,
// which are frequently scanned and need OCR to recover text.
package utilitybill

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
	"github.com/docquery-labs/docquery-cli/internal/extractors"
	"github.com/docquery-labs/docquery-cli/internal/extractors/pdf"
	"github.com/docquery-labs/docquery-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// DensityThreshold is the minimum extracted characters per page below
// which a bill is treated as scanned and routed through OCR.
const DensityThreshold = 200

// minOCRText is the minimum recognised text length for an OCR pass to
// be considered successful.
const minOCRText = 50

// Extraction confidence by route.
const (
	confidenceDirect = 0.9
	confidenceOCR    = 0.6
	confidenceSparse = 0.3
)

// Extractor handles utility bill PDFs with layered extraction:
// direct text first, OCR when the text density indicates a scan, then
// structured field recovery merged with the narrative text.
type Extractor struct {
	ocr driven.OCREngine

	// extractText is swappable for tests.
	extractText func(ctx context.Context, path string) (string, int, error)
}

// New creates a utility bill extractor. The OCR engine is optional;
// without it scanned bills degrade to whatever direct extraction finds.
func New(ocr driven.OCREngine) *Extractor {
	return &Extractor{
		ocr:         ocr,
		extractText: pdf.ExtractText,
	}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatUtilityBill}
}

// Extract runs the layered extraction and merges free text with the
// recovered structured fields into one Document.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrExtraction, path, err)
	}

	text, confidence, err := e.recoverText(ctx, path)
	if err != nil {
		return nil, err
	}

	text = extractors.CleanText(text)
	fields := ParseFields(text)

	// On the OCR route the flat page text reads columns out of order,
	// detaching labels from their figures. A table-region pass
	// reassembles line-item rows; fields recovered there win.
	if confidence == confidenceOCR {
		if tableFields := e.tableFields(ctx, path); len(tableFields) > 0 {
			fields = mergeFields(tableFields, fields)
		}
	}

	// Keep both representations: the narrative text and synthesised
	// sentences for the structured fields, so retrieval can match
	// either.
	content := text
	if synthesised := SynthesiseText(fields); synthesised != "" {
		content = text + "\n\n" + synthesised
	}

	logger.Debug("Bill %s: %d chars, %d fields, confidence %.1f",
		path, utf8.RuneCountInString(text), len(fields), confidence)

	now := time.Now()
	return &domain.Document{
		ID:          uuid.New().String(),
		Path:        path,
		Format:      domain.FormatUtilityBill,
		Title:       extractors.TitleFromPath(path),
		Content:     content,
		Fields:      fields,
		Confidence:  confidence,
		ContentHash: extractors.HashContent(raw),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// tableFields runs the table-region recognition pass and parses each
// region's reassembled rows for structured fields. The first region
// that yields a field keeps it; pages come in order, and bills carry
// their line-item summary up front.
func (e *Extractor) tableFields(ctx context.Context, path string) map[string]string {
	regions, err := e.ocr.RecogniseTableRegions(ctx, path)
	if err != nil {
		logger.Warn("Table-region pass failed for %s: %v", path, err)
		return nil
	}

	fields := make(map[string]string)
	for _, region := range regions {
		for k, v := range ParseFields(region) {
			if _, ok := fields[k]; !ok {
				fields[k] = v
			}
		}
	}
	return fields
}

// mergeFields overlays preferred values onto fallback ones.
func mergeFields(preferred, fallback map[string]string) map[string]string {
	merged := make(map[string]string, len(fallback)+len(preferred))
	for k, v := range fallback {
		merged[k] = v
	}
	for k, v := range preferred {
		merged[k] = v
	}
	return merged
}

// recoverText runs the layered text recovery: direct extraction, then
// OCR when the per-page character density marks the bill as scanned.
func (e *Extractor) recoverText(ctx context.Context, path string) (string, float64, error) {
	direct, pages, directErr := e.extractText(ctx, path)
	if directErr == nil && !scanned(direct, pages) {
		return direct, confidenceDirect, nil
	}

	if e.ocr != nil && e.ocr.Available() {
		logger.Debug("Bill %s looks scanned, running OCR", path)
		pageTexts, ocrErr := e.ocr.RecognisePDF(ctx, path)
		if ocrErr == nil {
			recognised := joinPages(pageTexts)
			if utf8.RuneCountInString(strings.TrimSpace(recognised)) >= minOCRText {
				return recognised, confidenceOCR, nil
			}
			logger.Warn("OCR produced minimal text for %s", path)
		} else {
			logger.Warn("OCR failed for %s: %v", path, ocrErr)
		}
	}

	// OCR unavailable or unhelpful: keep whatever direct extraction
	// found, or fail the document if there was nothing at all.
	if directErr != nil {
		return "", 0, directErr
	}
	if strings.TrimSpace(direct) == "" {
		return "", 0, fmt.Errorf("%w: no text recovered from %s", domain.ErrExtraction, path)
	}
	return direct, confidenceSparse, nil
}

// scanned reports whether the extracted text is too sparse for a real
// text-layer PDF, indicating a scanned image.
func scanned(text string, pages int) bool {
	if pages <= 0 {
		pages = 1
	}
	density := utf8.RuneCountInString(strings.TrimSpace(text)) / pages
	return density < DensityThreshold
}

// joinPages concatenates OCR page texts with page markers.
func joinPages(pageTexts []string) string {
	var sb strings.Builder
	for i, pageText := range pageTexts {
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		fmt.Fprintf(&sb, "--- OCR Page %d ---\n%s\n", i+1, pageText)
	}
	return sb.String()
}
