package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// entry is one stored (vector, chunk, provenance) tuple.
type entry struct {
	chunkID    string
	documentID string
	format     domain.Format
	vector     []float32
	seq        int64
}

// VectorIndex is an in-memory brute-force cosine similarity index.
// Results are ordered by descending score with ties broken by
// insertion order, matching the SQLite implementation.
type VectorIndex struct {
	mu      sync.RWMutex
	entries map[string]entry
	nextSeq int64
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		entries: make(map[string]entry),
	}
}

// Upsert stores the chunks' vectors and provenance.
func (v *VectorIndex) Upsert(_ context.Context, chunks []domain.Chunk) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		e := entry{
			chunkID:    chunk.ID,
			documentID: chunk.DocumentID,
			vector:     append([]float32(nil), chunk.Embedding...),
			seq:        v.nextSeq,
		}
		if f, ok := chunk.Metadata["format"].(string); ok {
			e.format = domain.Format(f)
		}
		if old, ok := v.entries[chunk.ID]; ok {
			e.seq = old.seq
		} else {
			v.nextSeq++
		}
		v.entries[chunk.ID] = e
	}
	return nil
}

// Query returns the k most similar chunks, descending by cosine
// similarity. An empty index yields an empty result.
func (v *VectorIndex) Query(_ context.Context, vector []float32, k int, filter driven.QueryFilter) ([]driven.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	type scored struct {
		hit driven.VectorHit
		seq int64
	}

	candidates := make([]scored, 0, len(v.entries))
	for _, e := range v.entries {
		if filter.Format != "" && e.format != filter.Format {
			continue
		}
		candidates = append(candidates, scored{
			hit: driven.VectorHit{
				ChunkID:    e.chunkID,
				DocumentID: e.documentID,
				Score:      CosineSimilarity(vector, e.vector),
			},
			seq: e.seq,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].hit.Score != candidates[j].hit.Score {
			return candidates[i].hit.Score > candidates[j].hit.Score
		}
		return candidates[i].seq < candidates[j].seq
	})

	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}

	hits := make([]driven.VectorHit, len(candidates))
	for i, c := range candidates {
		hits[i] = c.hit
	}
	return hits, nil
}

// DeleteDocument removes all tuples belonging to a document.
func (v *VectorIndex) DeleteDocument(_ context.Context, documentID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for id, e := range v.entries {
		if e.documentID == documentID {
			delete(v.entries, id)
		}
	}
	return nil
}

// Count returns the number of indexed tuples.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries), nil
}

// Close is a no-op for the in-memory index.
func (v *VectorIndex) Close() error {
	return nil
}

// CosineSimilarity computes the cosine of the angle between two
// vectors. Zero vectors or mismatched lengths score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
