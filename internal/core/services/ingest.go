package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driving"
	"github.com/docquery-labs/docquery-cli/internal/extractors"
	"github.com/docquery-labs/docquery-cli/internal/logger"
)

// DefaultIngestWorkers is the default bound on concurrent document
// ingestion.
const DefaultIngestWorkers = 4

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService drives documents through extraction, chunking,
// embedding and indexing. Documents are processed concurrently up to
// the worker bound; a failure in one document never aborts the batch.
type IngestService struct {
	extractors  driven.ExtractorRegistry
	pipeline    driven.PostProcessorPipeline
	embedder    driven.EmbeddingService
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	workers     int

	// pathLocks serialises concurrent ingestion of the same path so
	// duplicate entries in a batch cannot interleave their
	// delete-then-insert sequences.
	mu        sync.Mutex
	pathLocks map[string]*sync.Mutex
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	extractorRegistry driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
) *IngestService {
	return &IngestService{
		extractors:  extractorRegistry,
		pipeline:    pipeline,
		embedder:    embedder,
		docStore:    docStore,
		vectorIndex: vectorIndex,
		workers:     DefaultIngestWorkers,
		pathLocks:   make(map[string]*sync.Mutex),
	}
}

// SetWorkers overrides the concurrent worker bound.
func (s *IngestService) SetWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// Ingest processes the given files concurrently. Per-document failures
// are recorded in the report; the batch runs to completion unless the
// context is cancelled, in which case the report accumulated so far is
// returned together with the context error.
func (s *IngestService) Ingest(ctx context.Context, paths []string) (*domain.IngestReport, error) {
	logger.Section("Ingestion")
	logger.Debug("Batch of %d path(s), %d worker(s)", len(paths), s.workers)

	report := &domain.IngestReport{}
	var reportMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			status, err := s.ingestOne(gctx, path)

			reportMu.Lock()
			defer reportMu.Unlock()

			switch {
			case err != nil:
				logger.Error("failed to ingest %s: %v", path, err)
				report.Failed++
				report.Failures = append(report.Failures, domain.IngestFailure{
					Path:   path,
					Kind:   domain.ErrorKind(err),
					Reason: err.Error(),
				})
			case status == statusSkipped:
				logger.Debug("Skipped %s (content unchanged)", path)
				report.Skipped++
			default:
				logger.Info("Ingested %s", path)
				report.Ingested++
			}
			return nil
		})
	}

	// Workers never return errors; failures land in the report.
	_ = g.Wait()

	logger.Info("Batch done: %d ingested, %d skipped, %d failed",
		report.Ingested, report.Skipped, report.Failed)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// IngestDir walks the directory tree and ingests every file a
// registered extractor supports. Unsupported files are silently
// skipped; they are not counted in the report.
func (s *IngestService) IngestDir(ctx context.Context, dir string) (*domain.IngestReport, error) {
	var paths []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			// Skip hidden directories such as .git.
			if name := d.Name(); name != "." && len(name) > 1 && name[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if s.extractors.Supports(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	logger.Debug("Directory %s: %d supported file(s)", dir, len(paths))
	return s.Ingest(ctx, paths)
}

// Clear removes every stored document, its chunks and its vectors.
// Vectors go first so a concurrent reader never sees a hit pointing at
// a deleted document.
func (s *IngestService) Clear(ctx context.Context) error {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("%w: listing documents: %v", domain.ErrIndex, err)
	}

	for _, doc := range docs {
		unlock := s.lockPath(doc.Path)
		if err := s.vectorIndex.DeleteDocument(ctx, doc.ID); err != nil {
			unlock()
			return fmt.Errorf("%w: removing vectors for %s: %v", domain.ErrIndex, doc.Path, err)
		}
		if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil {
			unlock()
			return fmt.Errorf("%w: removing %s: %v", domain.ErrIndex, doc.Path, err)
		}
		unlock()
	}

	logger.Info("Cleared %d document(s)", len(docs))
	return nil
}

// Ingestion status values.
const (
	statusIngested = "ingested"
	statusSkipped  = "skipped"
)

// ingestOne runs the full pipeline for a single file: hash check,
// extract, chunk, embed, then an atomic delete-then-insert into both
// stores.
func (s *IngestService) ingestOne(ctx context.Context, path string) (string, error) {
	unlock := s.lockPath(path)
	defer unlock()

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", domain.ErrExtraction, path, err)
	}
	hash := extractors.HashContent(raw)

	existing, err := s.docStore.GetDocumentByPath(ctx, path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("%w: looking up %s: %v", domain.ErrIndex, path, err)
	}
	if existing != nil && existing.ContentHash == hash {
		return statusSkipped, nil
	}

	doc, err := s.extractors.Extract(ctx, path)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	doc.ID = uuid.NewString()
	doc.ContentHash = hash
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if existing != nil {
		// Replacement keeps the original ingestion timestamp.
		doc.CreatedAt = existing.CreatedAt
	}

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("%w: chunking %s: %v", domain.ErrExtraction, path, err)
	}
	logger.Debug("Extracted %s: %d chars, %d chunk(s), confidence %.2f",
		path, len(doc.Content), len(chunks), doc.Confidence)

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", domain.ErrEmbedding, path, err)
		}
		if len(vectors) != len(chunks) {
			return "", fmt.Errorf("%w: %s: got %d vectors for %d chunks",
				domain.ErrEmbedding, path, len(vectors), len(chunks))
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}

	// Delete-then-insert. Old vectors go first so a reader never sees
	// stale vectors pointing at the replaced document.
	if existing != nil {
		if err := s.vectorIndex.DeleteDocument(ctx, existing.ID); err != nil {
			return "", fmt.Errorf("%w: removing old vectors for %s: %v", domain.ErrIndex, path, err)
		}
	}

	if err := s.docStore.ReplaceDocument(ctx, doc, chunks); err != nil {
		return "", fmt.Errorf("%w: storing %s: %v", domain.ErrIndex, path, err)
	}

	if len(chunks) > 0 {
		if err := s.vectorIndex.Upsert(ctx, chunks); err != nil {
			return "", fmt.Errorf("%w: indexing %s: %v", domain.ErrIndex, path, err)
		}
	}

	return statusIngested, nil
}

// lockPath acquires the per-path mutex, creating it on first use.
func (s *IngestService) lockPath(path string) func() {
	key := filepath.Clean(path)

	s.mu.Lock()
	l, ok := s.pathLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.pathLocks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
