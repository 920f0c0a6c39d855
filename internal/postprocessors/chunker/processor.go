// Package chunker provides a boundary-aware text chunking processor.
package chunker

import (
	"context"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of runes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping runes.
const DefaultChunkOverlap = 200

// DefaultBoundaryWindow is how far back from the target size the
// processor searches for a sentence or paragraph boundary before hard
// splitting. Fixed configuration constant, not a hidden heuristic.
const DefaultBoundaryWindow = 120

// Processor splits document content into overlapping chunks, preferring
// sentence and paragraph boundaries near the target size. Deterministic:
// the same content and parameters always yield the same boundaries and
// the same chunk IDs.
type Processor struct {
	chunkSize int
	overlap   int
	window    int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithBoundaryWindow sets the boundary search window in runes.
func WithBoundaryWindow(window int) Option {
	return func(p *Processor) {
		if window >= 0 {
			p.window = window
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		window:    DefaultBoundaryWindow,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must leave forward progress per chunk.
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}
	if p.window >= p.chunkSize-p.overlap {
		p.window = (p.chunkSize - p.overlap) / 2
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks. Input chunks are
// ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		// Empty content produces no chunks.
		return nil, nil
	}

	runes := []rune(doc.Content)
	total := len(runes)

	estimated := (total / (p.chunkSize - p.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	position := 0

	for start < total {
		end := start + p.chunkSize
		if end >= total {
			end = total
		} else {
			end = p.snapToBoundary(runes, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			ID:          domain.ChunkID(doc.ID, position),
			DocumentID:  doc.ID,
			Content:     string(runes[start:end]),
			Position:    position,
			StartOffset: start,
			EndOffset:   end,
			Metadata: map[string]any{
				"format": string(doc.Format),
				"path":   doc.Path,
			},
		})

		if end >= total {
			break
		}

		// The next chunk repeats the trailing overlap of this one,
		// bounding both redundancy and context loss at boundaries.
		start = end - p.overlap
		position++
	}

	return chunks, nil
}

// snapToBoundary searches backwards from the hard split point for the
// nearest sentence or paragraph boundary within the tolerance window.
// Returns the hard split point when no boundary exists, or when
// snapping would stall the scan.
func (p *Processor) snapToBoundary(runes []rune, start, end int) int {
	limit := end - p.window
	if limit <= start {
		limit = start + 1
	}

	for i := end - 1; i >= limit; i-- {
		if !isBoundary(runes, i) {
			continue
		}
		snapped := i + 1
		// Snapped chunk must still outrun the overlap.
		if snapped-start > p.overlap {
			return snapped
		}
		break
	}

	return end
}

// isBoundary reports whether position i ends a sentence or paragraph.
func isBoundary(runes []rune, i int) bool {
	switch runes[i] {
	case '\n':
		return true
	case '.', '!', '?':
		// Sentence terminator followed by whitespace.
		return i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t')
	default:
		return false
	}
}
