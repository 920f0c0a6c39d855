package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery-labs/docquery-cli/internal/adapters/driven/storage/memory"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
	"github.com/docquery-labs/docquery-cli/internal/extractors"
	"github.com/docquery-labs/docquery-cli/internal/extractors/plaintext"
	"github.com/docquery-labs/docquery-cli/internal/postprocessors"
	"github.com/docquery-labs/docquery-cli/internal/postprocessors/chunker"
)

// ingestFixture wires an IngestService against in-memory stores with a
// plain text extractor and the real chunker.
type ingestFixture struct {
	service  *IngestService
	docStore *memory.DocumentStore
	index    *memory.VectorIndex
	embedder *fakeEmbedder
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()

	registry := extractors.NewRegistry()
	registry.Register(plaintext.New())

	pipeline := postprocessors.NewPipeline(chunker.New(
		chunker.WithChunkSize(100),
		chunker.WithOverlap(20),
	))

	f := &ingestFixture{
		docStore: memory.NewDocumentStore(),
		index:    memory.NewVectorIndex(),
		embedder: newFakeEmbedder(),
	}
	f.service = NewIngestService(registry, pipeline, f.embedder, f.docStore, f.index)
	return f
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestIngest_Success(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "The quick brown fox jumps over the lazy dog.")

	report, err := f.service.Ingest(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Ingested)
	assert.Equal(t, 0, report.Failed)

	doc, err := f.docStore.GetDocumentByPath(context.Background(), path)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.NotEmpty(t, doc.ContentHash)

	count, err := f.index.Count(context.Background())
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}

func TestIngest_PartialFailureContinuesBatch(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	good1 := writeFile(t, dir, "a.txt", "first document content")
	good2 := writeFile(t, dir, "b.txt", "second document content")
	bad := writeFile(t, dir, "c.xyz", "unsupported")

	report, err := f.service.Ingest(context.Background(), []string{good1, bad, good2})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Ingested)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, bad, report.Failures[0].Path)
	assert.Equal(t, "unsupported_format", report.Failures[0].Kind)
	assert.Equal(t, 3, report.Total())
}

func TestIngest_SkipsUnchangedContent(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "stable content")

	ctx := context.Background()
	_, err := f.service.Ingest(ctx, []string{path})
	require.NoError(t, err)

	report, err := f.service.Ingest(ctx, []string{path})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Ingested)
	assert.Equal(t, 1, report.Skipped)
}

func TestIngest_ReplacesNotAppends(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "original content here")

	ctx := context.Background()
	_, err := f.service.Ingest(ctx, []string{path})
	require.NoError(t, err)

	first, err := f.docStore.GetDocumentByPath(ctx, path)
	require.NoError(t, err)

	writeFile(t, dir, "a.txt", "revised content that is different")
	report, err := f.service.Ingest(ctx, []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Ingested)

	// Still exactly one document for the path, under a new ID.
	docs, err := f.docStore.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotEqual(t, first.ID, docs[0].ID)
	assert.Equal(t, first.CreatedAt, docs[0].CreatedAt)

	// No stale vectors for the replaced document.
	hits, err := f.index.Query(ctx, []float32{1, 1, 1}, 100, driven.QueryFilter{})
	require.NoError(t, err)
	for _, hit := range hits {
		assert.Equal(t, docs[0].ID, hit.DocumentID)
	}
}

func TestIngest_EmbeddingFailureIsReported(t *testing.T) {
	f := newIngestFixture(t)
	f.embedder.fail = true
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "content to embed")

	report, err := f.service.Ingest(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "embedding", report.Failures[0].Kind)
}

func TestIngest_CancelledContextReturnsPartialReport(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.service.Ingest(ctx, []string{path})
	require.NotNil(t, report)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Ingested)
}

func TestClear_EmptiesBothStores(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "first document")
	b := writeFile(t, dir, "b.txt", "second document")

	ctx := context.Background()
	_, err := f.service.Ingest(ctx, []string{a, b})
	require.NoError(t, err)

	require.NoError(t, f.service.Clear(ctx))

	docs, err := f.docStore.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	count, err := f.index.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIngestDir_WalksSupportedFilesOnly(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "document one")
	writeFile(t, dir, "b.md", "document two")
	writeFile(t, dir, "c.bin", "ignored")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0700))
	writeFile(t, filepath.Join(dir, "sub"), "d.txt", "document three")

	report, err := f.service.IngestDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Ingested)
	assert.Equal(t, 0, report.Failed)
}
