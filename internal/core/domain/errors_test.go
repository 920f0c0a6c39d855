package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrUnsupportedFormat, "unsupported_format"},
		{ErrExtraction, "extraction"},
		{ErrEmbedding, "embedding"},
		{ErrIndex, "index"},
		{ErrGeneration, "generation"},
		{errors.New("something else"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err))
	}
}

func TestErrorKind_SeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: reading /tmp/bad.pdf: io error", ErrExtraction)
	assert.Equal(t, "extraction", ErrorKind(wrapped))
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "doc-1:0000", ChunkID("doc-1", 0))
	assert.Equal(t, "doc-1:0042", ChunkID("doc-1", 42))
	assert.Equal(t, "doc-1:12345", ChunkID("doc-1", 12345))
}
