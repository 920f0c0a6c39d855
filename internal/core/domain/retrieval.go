package domain

// RetrievalResult is a single ranked hit from the vector index, hydrated
// with the chunk and its document provenance.
type RetrievalResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity to the query vector.
	Score float64

	// DocumentID links to the originating document.
	DocumentID string

	// Path is the originating file path.
	Path string

	// Format is the originating document format.
	Format Format
}

// Citation references a chunk whose content was handed to the generator.
type Citation struct {
	// DocumentID is the cited document.
	DocumentID string

	// Path is the cited file.
	Path string

	// ChunkID is the cited chunk.
	ChunkID string

	// Position is the chunk's ordinal within its document.
	Position int
}

// QueryOptions configures a retrieval query.
type QueryOptions struct {
	// TopK is the maximum number of chunks to retrieve.
	TopK int

	// Format restricts retrieval to documents of one format.
	// Empty means no filter.
	Format Format

	// MaxContextChars bounds the assembled context handed to the
	// generator. Zero means the service default.
	MaxContextChars int

	// Temperature is passed through to the generation service.
	Temperature float64
}

// QueryContext is the full record of one answered question: the query,
// what was retrieved, the generated answer and its citations.
type QueryContext struct {
	// Question is the original query text.
	Question string

	// Results are the ranked retrieval hits, descending by score.
	Results []RetrievalResult

	// Answer is the generated answer text.
	Answer string

	// Citations reference the chunks placed in the generation context.
	Citations []Citation

	// NoContext is set when retrieval found nothing and the generator
	// was invoked with an explicit no-context marker.
	NoContext bool
}
