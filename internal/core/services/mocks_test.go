package services

import (
	"context"
	"errors"
	"sync"

	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
)

// fakeEmbedder is a deterministic EmbeddingService for tests. Vectors
// can be pinned per text; unpinned texts hash to a stable vector.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	fail    bool
	calls   int
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: make(map[string][]float32)}
}

func (f *fakeEmbedder) pin(text string, vec []float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors[text] = vec
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return nil, errors.New("embedding backend down")
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	// Stable fallback derived from content so identical text always
	// embeds identically.
	var sum float32
	for _, r := range text {
		sum += float32(r % 13)
	}
	return []float32{sum, float32(len(text)), 1}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int            { return 3 }
func (f *fakeEmbedder) ModelName() string          { return "fake-embed" }
func (f *fakeEmbedder) Ping(context.Context) error { return nil }
func (f *fakeEmbedder) Close() error               { return nil }

// fakeGenerator records the last request and returns a canned answer.
type fakeGenerator struct {
	mu      sync.Mutex
	lastReq driven.GenerationRequest
	answer  string
	fail    bool
}

var _ driven.GenerationService = (*fakeGenerator)(nil)

func (f *fakeGenerator) Generate(_ context.Context, req driven.GenerationRequest) (*driven.GenerationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	if f.fail {
		return nil, errors.New("generation backend down")
	}
	answer := f.answer
	if answer == "" {
		answer = "canned answer"
	}
	return &driven.GenerationResponse{Answer: answer}, nil
}

func (f *fakeGenerator) ModelName() string { return "fake-gen" }
func (f *fakeGenerator) Close() error      { return nil }

func (f *fakeGenerator) last() driven.GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}
