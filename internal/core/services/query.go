package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driving"
	"github.com/docquery-labs/docquery-cli/internal/logger"
)

// DefaultTopK is the default number of chunks retrieved per query.
const DefaultTopK = 5

// DefaultMaxContextChars bounds the assembled context handed to the
// generator when the caller does not set a limit.
const DefaultMaxContextChars = 8000

// NoContextMarker is handed to the generator when retrieval found
// nothing, so the model is told explicitly rather than given an empty
// string it might hallucinate around.
const NoContextMarker = "No relevant context was found in the indexed documents."

// contextSeparator joins source blocks in the assembled context.
const contextSeparator = "\n---\n"

// defaultSystemPrompt grounds answers in the retrieved context only.
const defaultSystemPrompt = "You are a document assistant. Answer the question using only the " +
	"provided context. If the context does not contain the answer, say so " +
	"plainly instead of guessing. Reference sources by their number when " +
	"it helps the reader."

// billSystemPrompt is used when the question is about billing figures.
const billSystemPrompt = "You are a utility bill analyst. Answer the question using only the " +
	"provided context. Quote exact amounts, dates, account numbers and " +
	"usage figures as they appear in the context. If a figure is not in " +
	"the context, say it is not available instead of estimating."

// billKeywords mark a question as billing analysis, selecting the
// analyst prompt.
var billKeywords = []string{
	"bill", "charge", "cost", "amount", "due", "payment", "pay",
	"usage", "kwh", "kilowatt", "therm", "account", "balance", "owe",
}

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers questions over the index: embed the question,
// retrieve the nearest chunks, assemble a bounded context and generate
// a grounded answer with citations.
type QueryService struct {
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService
	generator   driven.GenerationService
	prompts     driven.PromptStore
}

// Ensure QueryService accepts custom prompts.
var _ driven.PromptStoreAware = (*QueryService)(nil)

// NewQueryService creates a new query service.
func NewQueryService(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
	generator driven.GenerationService,
) *QueryService {
	return &QueryService{
		docStore:    docStore,
		vectorIndex: vectorIndex,
		embedder:    embedder,
		generator:   generator,
	}
}

// Query runs the full retrieval flow for a question. An empty index is
// not an error: the generator is invoked with an explicit no-context
// marker and NoContext is set on the result.
func (s *QueryService) Query(ctx context.Context, question string, opts domain.QueryOptions) (*domain.QueryContext, error) {
	logger.Section("Query")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	logger.Debug("Question: %q", question)

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	maxChars := opts.MaxContextChars
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding question: %v", domain.ErrEmbedding, err)
	}

	hits, err := s.vectorIndex.Query(ctx, vector, topK, driven.QueryFilter{Format: opts.Format})
	if err != nil {
		return nil, fmt.Errorf("%w: vector query: %v", domain.ErrIndex, err)
	}
	logger.Debug("Retrieved %d hit(s), topK=%d, format=%q", len(hits), topK, opts.Format)

	results, err := s.hydrate(ctx, hits)
	if err != nil {
		return nil, err
	}

	qc := &domain.QueryContext{
		Question: question,
		Results:  results,
	}

	contextText := NoContextMarker
	if len(results) == 0 {
		qc.NoContext = true
		logger.Info("No relevant context found, answering with marker")
	} else {
		var included []domain.RetrievalResult
		contextText, included = assembleContext(results, maxChars)
		for _, r := range included {
			qc.Citations = append(qc.Citations, domain.Citation{
				DocumentID: r.DocumentID,
				Path:       r.Path,
				ChunkID:    r.Chunk.ID,
				Position:   r.Chunk.Position,
			})
		}
		logger.Debug("Context: %d chars from %d chunk(s)", len(contextText), len(included))
	}

	system := s.loadPrompt(driven.PromptAnswerSystem, defaultSystemPrompt)
	if isBillQuestion(question) {
		system = s.loadPrompt(driven.PromptBillSystem, billSystemPrompt)
		logger.Debug("Billing question detected, using analyst prompt")
	}

	resp, err := s.generator.Generate(ctx, driven.GenerationRequest{
		Question:    question,
		Context:     contextText,
		System:      system,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	qc.Answer = resp.Answer
	return qc, nil
}

// Stats reports current index size and model configuration.
func (s *QueryService) Stats(ctx context.Context) (*driving.Stats, error) {
	docs, err := s.docStore.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	vectors, err := s.vectorIndex.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting vectors: %w", err)
	}

	st := &driving.Stats{
		Documents: docs,
		Vectors:   vectors,
	}
	if s.embedder != nil {
		st.EmbeddingModel = s.embedder.ModelName()
	}
	if s.generator != nil {
		st.GenerationModel = s.generator.ModelName()
	}
	return st, nil
}

// SetPromptStore sets the prompt store for loading customisable
// system prompts. Without one the hardcoded defaults are used.
func (s *QueryService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// loadPrompt resolves a named prompt, falling back to the default.
func (s *QueryService) loadPrompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	prompt, err := s.prompts.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// hydrate resolves vector hits into full retrieval results, preserving
// the index's ranking order. Documents are fetched once per ID.
func (s *QueryService) hydrate(ctx context.Context, hits []driven.VectorHit) ([]domain.RetrievalResult, error) {
	docs := make(map[string]*domain.Document)
	results := make([]domain.RetrievalResult, 0, len(hits))

	for _, hit := range hits {
		chunk, err := s.docStore.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			return nil, fmt.Errorf("%w: loading chunk %s: %v", domain.ErrIndex, hit.ChunkID, err)
		}

		doc, ok := docs[hit.DocumentID]
		if !ok {
			doc, err = s.docStore.GetDocument(ctx, hit.DocumentID)
			if err != nil {
				return nil, fmt.Errorf("%w: loading document %s: %v", domain.ErrIndex, hit.DocumentID, err)
			}
			docs[hit.DocumentID] = doc
		}

		results = append(results, domain.RetrievalResult{
			Chunk:      *chunk,
			Score:      hit.Score,
			DocumentID: doc.ID,
			Path:       doc.Path,
			Format:     doc.Format,
		})
	}

	return results, nil
}

// assembleContext builds the generation context from ranked results in
// descending score order, stopping before the character budget is
// exceeded. The first block is always included, truncated if it alone
// overflows the budget. Returns the context and the results included.
func assembleContext(results []domain.RetrievalResult, maxChars int) (string, []domain.RetrievalResult) {
	var b strings.Builder
	var included []domain.RetrievalResult

	for i, r := range results {
		block := fmt.Sprintf("Source %d (%s):\n%s", i+1, r.Path, r.Chunk.Content)

		if len(included) == 0 {
			if len(block) > maxChars {
				block = truncateAtRune(block, maxChars)
			}
			b.WriteString(block)
			included = append(included, r)
			continue
		}

		if b.Len()+len(contextSeparator)+len(block) > maxChars {
			break
		}
		b.WriteString(contextSeparator)
		b.WriteString(block)
		included = append(included, r)
	}

	return b.String(), included
}

// truncateAtRune cuts the string at the byte budget, backing up so a
// multi-byte rune is never split.
func truncateAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// isBillQuestion reports whether the question asks about billing
// figures.
func isBillQuestion(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range billKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
