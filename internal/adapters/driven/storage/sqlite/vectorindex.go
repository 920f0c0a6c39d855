package sqlite

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex with brute-force cosine
// similarity over vectors stored in SQLite. It is scoped to one
// embedding model; vectors stored under other models are ignored.
type vectorIndex struct {
	store *Store
	model string
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Upsert stores the chunks' vectors in one transaction.
func (v *vectorIndex) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embeddings (chunk_id, model, vector, dims, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id, model) DO UPDATE SET
			vector = excluded.vector,
			dims = excluded.dims,
			created_at = excluded.created_at
	`)
	if err != nil {
		return fmt.Errorf("preparing embedding insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		blob := float32SliceToBytes(chunk.Embedding)
		if _, err := stmt.ExecContext(ctx, chunk.ID, v.model, blob, len(chunk.Embedding), now); err != nil {
			return fmt.Errorf("inserting embedding for chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query scans all vectors for the model, scores them against the query
// vector and returns the top k by descending cosine similarity. Ties
// are broken by chunk rowid, which follows ingestion order.
func (v *vectorIndex) Query(ctx context.Context, vector []float32, k int, filter driven.QueryFilter) ([]driven.VectorHit, error) {
	query := `
		SELECT e.chunk_id, c.document_id, e.vector, c.rowid
		FROM embeddings e
		JOIN chunks c ON c.id = e.chunk_id
		JOIN documents d ON d.id = c.document_id
		WHERE e.model = ?`
	args := []any{v.model}

	if filter.Format != "" {
		query += " AND d.format = ?"
		args = append(args, string(filter.Format))
	}

	rows, err := v.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	type scored struct {
		hit   driven.VectorHit
		rowid int64
	}

	var candidates []scored //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunkID, documentID string
		var blob []byte
		var rowid int64
		if err := rows.Scan(&chunkID, &documentID, &blob, &rowid); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		candidates = append(candidates, scored{
			hit: driven.VectorHit{
				ChunkID:    chunkID,
				DocumentID: documentID,
				Score:      cosineSimilarity(vector, bytesToFloat32Slice(blob)),
			},
			rowid: rowid,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].hit.Score != candidates[j].hit.Score {
			return candidates[i].hit.Score > candidates[j].hit.Score
		}
		return candidates[i].rowid < candidates[j].rowid
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

// DeleteDocument removes all embeddings belonging to a document, for
// every model.
func (v *vectorIndex) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := v.store.db.ExecContext(ctx, `
		DELETE FROM embeddings
		WHERE chunk_id IN (SELECT id FROM chunks WHERE document_id = ?)
	`, documentID)
	if err != nil {
		return fmt.Errorf("deleting embeddings: %w", err)
	}
	return nil
}

// Count returns the number of stored vectors for this index's model.
func (v *vectorIndex) Count(ctx context.Context) (int, error) {
	var count int
	err := v.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM embeddings WHERE model = ?", v.model).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return count, nil
}

// Close is a no-op; the underlying database is owned by the Store.
func (v *vectorIndex) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. Zero vectors or mismatched lengths score 0.
func cosineSimilarity(a, b []float32) float64 {
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
