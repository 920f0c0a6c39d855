// Package tesseract provides an OCR engine adapter that shells out to
// the tesseract binary, rasterising pages with pdftoppm first.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
	"github.com/docquery-labs/docquery-cli/internal/logger"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// Default configuration values.
const (
	// DefaultDPI is the rasterisation resolution. 300 DPI recovers
	// small print on bills without ballooning runtime.
	DefaultDPI = 300

	// DefaultMaxPages bounds how many pages are recognised per
	// document. Bills carry their key figures on the first pages.
	DefaultMaxPages = 5

	// pageSegMode 6 treats each page as a uniform block of text,
	// which keeps line-item table rows intact.
	pageSegMode = "6"
)

// Config holds configuration for the tesseract engine.
type Config struct {
	// TesseractPath overrides the tesseract binary location.
	TesseractPath string

	// PdftoppmPath overrides the pdftoppm binary location.
	PdftoppmPath string

	// DPI is the rasterisation resolution (default: 300).
	DPI int

	// MaxPages bounds pages recognised per document (default: 5).
	MaxPages int

	// Language is the tesseract language (default: "eng").
	Language string
}

// Engine recognises text in scanned PDFs via external binaries.
type Engine struct {
	tesseract string
	pdftoppm  string
	dpi       int
	maxPages  int
	language  string
}

// New creates a tesseract OCR engine. Binary paths are resolved from
// PATH when not configured.
func New(cfg Config) *Engine {
	if cfg.TesseractPath == "" {
		cfg.TesseractPath = "tesseract"
	}
	if cfg.PdftoppmPath == "" {
		cfg.PdftoppmPath = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}

	return &Engine{
		tesseract: cfg.TesseractPath,
		pdftoppm:  cfg.PdftoppmPath,
		dpi:       cfg.DPI,
		maxPages:  cfg.MaxPages,
		language:  cfg.Language,
	}
}

// Available reports whether both external binaries can be found.
func (e *Engine) Available() bool {
	if _, err := exec.LookPath(e.tesseract); err != nil {
		return false
	}
	if _, err := exec.LookPath(e.pdftoppm); err != nil {
		return false
	}
	return true
}

// RecognisePDF rasterises the PDF page by page and runs tesseract on
// each image, returning one text per page in page order.
func (e *Engine) RecognisePDF(ctx context.Context, path string) ([]string, error) {
	tmpDir, err := os.MkdirTemp("", "docquery-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := e.rasterise(ctx, path, tmpDir); err != nil {
		return nil, err
	}

	images, err := filepath.Glob(filepath.Join(tmpDir, "page-*.png"))
	if err != nil {
		return nil, fmt.Errorf("list rasterised pages: %w", err)
	}
	sort.Strings(images)

	texts := make([]string, 0, len(images))
	for _, image := range images {
		text, err := e.recognise(ctx, image)
		if err != nil {
			logger.Warn("OCR failed for %s: %v", filepath.Base(image), err)
			texts = append(texts, "")
			continue
		}
		texts = append(texts, text)
	}

	return texts, nil
}

// RecogniseTableRegions reruns recognition in TSV mode to get word
// bounding boxes and reassembles the words into visual rows. Plain
// page recognition reads multi-column line-item tables column by
// column, separating labels from their values; row reassembly keeps
// "Total Amount Due" and its figure on one line. One region text per
// page, in page order.
func (e *Engine) RecogniseTableRegions(ctx context.Context, path string) ([]string, error) {
	tmpDir, err := os.MkdirTemp("", "docquery-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := e.rasterise(ctx, path, tmpDir); err != nil {
		return nil, err
	}

	images, err := filepath.Glob(filepath.Join(tmpDir, "page-*.png"))
	if err != nil {
		return nil, fmt.Errorf("list rasterised pages: %w", err)
	}
	sort.Strings(images)

	regions := make([]string, 0, len(images))
	for _, image := range images {
		tsv, err := e.recogniseTSV(ctx, image)
		if err != nil {
			logger.Warn("Table recognition failed for %s: %v", filepath.Base(image), err)
			continue
		}
		if region := assembleRows(parseTSVWords(tsv)); region != "" {
			regions = append(regions, region)
		}
	}
	return regions, nil
}

// rasterise renders the first MaxPages pages of the PDF to PNG images.
func (e *Engine) rasterise(ctx context.Context, path, outDir string) error {
	cmd := exec.CommandContext(ctx, e.pdftoppm,
		"-png",
		"-r", strconv.Itoa(e.dpi),
		"-f", "1",
		"-l", strconv.Itoa(e.maxPages),
		path,
		filepath.Join(outDir, "page"),
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pdftoppm: %w: %s", err, stderr.String())
	}
	return nil
}

// recogniseTSV runs tesseract on a single page image in TSV mode,
// returning recognised words with their bounding boxes.
func (e *Engine) recogniseTSV(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, e.tesseract,
		imagePath,
		"stdout",
		"-l", e.language,
		"--psm", pageSegMode,
		"tsv",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract tsv: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

// tsvWord is one recognised word and its bounding box, parsed from
// tesseract's TSV output.
type tsvWord struct {
	left, top, bottom int
	text              string
}

// parseTSVWords extracts word-level entries from TSV output. Columns:
// level page block par line word left top width height conf text;
// level 5 rows carry words.
func parseTSVWords(tsv string) []tsvWord {
	var words []tsvWord
	for _, line := range strings.Split(tsv, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 12 || fields[0] != "5" {
			continue
		}
		text := strings.TrimSpace(fields[11])
		if text == "" {
			continue
		}
		left, err1 := strconv.Atoi(fields[6])
		top, err2 := strconv.Atoi(fields[7])
		height, err3 := strconv.Atoi(fields[9])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		words = append(words, tsvWord{left: left, top: top, bottom: top + height, text: text})
	}
	return words
}

// assembleRows groups words into visual rows by vertical overlap and
// orders each row left to right, one output line per row.
func assembleRows(words []tsvWord) string {
	if len(words) == 0 {
		return ""
	}

	sorted := make([]tsvWord, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].top < sorted[j].top })

	var rows [][]tsvWord
	for _, w := range sorted {
		if n := len(rows); n > 0 && overlapsRow(rows[n-1], w) {
			rows[n-1] = append(rows[n-1], w)
			continue
		}
		rows = append(rows, []tsvWord{w})
	}

	var sb strings.Builder
	for i, row := range rows {
		sort.Slice(row, func(a, b int) bool { return row[a].left < row[b].left })
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, w := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(w.text)
		}
	}
	return sb.String()
}

// overlapsRow reports whether the word's box vertically overlaps the
// row's combined band.
func overlapsRow(row []tsvWord, w tsvWord) bool {
	top, bottom := row[0].top, row[0].bottom
	for _, r := range row[1:] {
		if r.top < top {
			top = r.top
		}
		if r.bottom > bottom {
			bottom = r.bottom
		}
	}
	return w.top < bottom && w.bottom > top
}

// recognise runs tesseract on a single page image.
func (e *Engine) recognise(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, e.tesseract,
		imagePath,
		"stdout",
		"-l", e.language,
		"--psm", pageSegMode,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}
