package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
)

func doc(content string) *domain.Document {
	return &domain.Document{
		ID:      "doc-1",
		Path:    "/tmp/a.txt",
		Format:  domain.FormatText,
		Content: content,
	}
}

func TestProcess_EmptyContentProducesNoChunks(t *testing.T) {
	p := New()
	chunks, err := p.Process(context.Background(), doc(""), nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestProcess_ShortContentSingleChunk(t *testing.T) {
	p := New()
	chunks, err := p.Process(context.Background(), doc("short content"), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, "short content", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, len("short content"), chunks[0].EndOffset)
	assert.Equal(t, domain.ChunkID("doc-1", 0), chunks[0].ID)
}

func TestProcess_CoversAllContent(t *testing.T) {
	content := strings.Repeat("word word word. ", 500)
	p := New(WithChunkSize(200), WithOverlap(40))

	chunks, err := p.Process(context.Background(), doc(content), nil)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	runes := []rune(content)

	// Offsets cover the content with no gaps: each chunk starts at or
	// before the previous chunk's end.
	assert.Equal(t, 0, chunks[0].StartOffset)
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i].StartOffset, chunks[i-1].EndOffset,
			"gap between chunk %d and %d", i-1, i)
		assert.Greater(t, chunks[i].EndOffset, chunks[i-1].EndOffset)
	}
	assert.Equal(t, len(runes), chunks[len(chunks)-1].EndOffset)

	// Content matches offsets exactly.
	for _, c := range chunks {
		assert.Equal(t, string(runes[c.StartOffset:c.EndOffset]), c.Content)
	}
}

func TestProcess_Deterministic(t *testing.T) {
	content := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 100)
	p := New()

	first, err := p.Process(context.Background(), doc(content), nil)
	require.NoError(t, err)
	second, err := p.Process(context.Background(), doc(content), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestProcess_PrefersSentenceBoundaries(t *testing.T) {
	// A sentence boundary sits just inside the window before the hard
	// split point; the chunk should end right after it.
	sentence := strings.Repeat("a", 180) + ". "
	content := sentence + strings.Repeat("b", 400)
	p := New(WithChunkSize(200), WithOverlap(20), WithBoundaryWindow(50))

	chunks, err := p.Process(context.Background(), doc(content), nil)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	assert.True(t, strings.HasSuffix(chunks[0].Content, "."),
		"chunk should snap to the sentence boundary, got ...%q", chunks[0].Content[len(chunks[0].Content)-5:])
	assert.Equal(t, 181, chunks[0].EndOffset)
}

func TestProcess_HardSplitWithoutBoundary(t *testing.T) {
	content := strings.Repeat("a", 500)
	p := New(WithChunkSize(200), WithOverlap(20))

	chunks, err := p.Process(context.Background(), doc(content), nil)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, 200, chunks[0].EndOffset)
}

func TestProcess_OverlapBetweenChunks(t *testing.T) {
	content := strings.Repeat("a", 500)
	p := New(WithChunkSize(200), WithOverlap(50))

	chunks, err := p.Process(context.Background(), doc(content), nil)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	assert.Equal(t, chunks[0].EndOffset-50, chunks[1].StartOffset)
}

func TestProcess_MetadataCarriesProvenance(t *testing.T) {
	p := New()
	chunks, err := p.Process(context.Background(), doc("content"), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, string(domain.FormatText), chunks[0].Metadata["format"])
	assert.Equal(t, "/tmp/a.txt", chunks[0].Metadata["path"])
}

func TestNew_GuardsDegenerateOptions(t *testing.T) {
	// Overlap larger than chunk size must not stall the scan.
	p := New(WithChunkSize(100), WithOverlap(100))
	content := strings.Repeat("a", 300)

	chunks, err := p.Process(context.Background(), doc(content), nil)
	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)

	// Forward progress on every chunk.
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].StartOffset, chunks[i-1].StartOffset)
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "chunker", New().Name())
}
