// Command docquery is a local document question-answering tool. It
// ingests PDFs, Word documents and scanned utility bills into a local
// vector index and answers questions grounded in their content.
package main

import (
	"fmt"
	"os"

	configfile "github.com/docquery-labs/docquery-cli/internal/adapters/driven/config/file"
	embeddingollama "github.com/docquery-labs/docquery-cli/internal/adapters/driven/embedding/ollama"
	embeddingopenai "github.com/docquery-labs/docquery-cli/internal/adapters/driven/embedding/openai"
	generationanthropic "github.com/docquery-labs/docquery-cli/internal/adapters/driven/generation/anthropic"
	generationollama "github.com/docquery-labs/docquery-cli/internal/adapters/driven/generation/ollama"
	generationopenai "github.com/docquery-labs/docquery-cli/internal/adapters/driven/generation/openai"
	"github.com/docquery-labs/docquery-cli/internal/adapters/driven/ocr/tesseract"
	"github.com/docquery-labs/docquery-cli/internal/adapters/driven/storage/sqlite"
	"github.com/docquery-labs/docquery-cli/internal/adapters/driving/cli"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driving"
	"github.com/docquery-labs/docquery-cli/internal/core/services"
	"github.com/docquery-labs/docquery-cli/internal/extractors"
	"github.com/docquery-labs/docquery-cli/internal/extractors/docx"
	"github.com/docquery-labs/docquery-cli/internal/extractors/pdf"
	"github.com/docquery-labs/docquery-cli/internal/extractors/plaintext"
	"github.com/docquery-labs/docquery-cli/internal/extractors/utilitybill"
	"github.com/docquery-labs/docquery-cli/internal/logger"
	"github.com/docquery-labs/docquery-cli/internal/postprocessors"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	cli.SetServiceFactory(buildServices)

	if err := cli.Execute(Version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildServices wires the full pipeline from configuration.
func buildServices(dataDir string) (driving.IngestService, driving.QueryService, error) {
	config, err := configfile.NewConfigStore("")
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	embedder, err := buildEmbedder(config)
	if err != nil {
		return nil, nil, err
	}

	generator, err := buildGenerator(config)
	if err != nil {
		return nil, nil, err
	}

	docStore := store.DocumentStore()
	vectorIndex := store.VectorIndex(embedder.ModelName())

	registry := extractors.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(pdf.New())
	registry.Register(docx.New())
	registry.Register(utilitybill.New(buildOCR(config)))

	pipeline, err := buildPipeline(config)
	if err != nil {
		return nil, nil, err
	}

	ingest := services.NewIngestService(registry, pipeline, embedder, docStore, vectorIndex)
	if workers := config.GetInt("ingest.workers"); workers > 0 {
		ingest.SetWorkers(workers)
	}

	query := services.NewQueryService(docStore, vectorIndex, embedder, generator)
	if prompts, err := configfile.NewPromptStore(""); err == nil {
		query.SetPromptStore(prompts)
	}

	return ingest, query, nil
}

// buildEmbedder selects the embedding provider from configuration.
// Defaults to a local Ollama instance so the tool works offline.
func buildEmbedder(config driven.ConfigStore) (driven.EmbeddingService, error) {
	provider := config.GetString("embedding.provider")
	if provider == "" {
		provider = "ollama"
	}

	switch provider {
	case "openai":
		return embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:     apiKey(config, "embedding.api_key", "OPENAI_API_KEY"),
			Model:      config.GetString("embedding.model"),
			Dimensions: config.GetInt("embedding.dimensions"),
		})
	case "ollama":
		return embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL:    config.GetString("embedding.base_url"),
			Model:      config.GetString("embedding.model"),
			Dimensions: config.GetInt("embedding.dimensions"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// buildGenerator selects the generation provider from configuration.
func buildGenerator(config driven.ConfigStore) (driven.GenerationService, error) {
	provider := config.GetString("generation.provider")
	if provider == "" {
		provider = "anthropic"
	}

	switch provider {
	case "anthropic":
		return generationanthropic.NewGenerationService(generationanthropic.Config{
			APIKey: apiKey(config, "generation.api_key", "ANTHROPIC_API_KEY"),
			Model:  config.GetString("generation.model"),
		})
	case "openai":
		return generationopenai.NewGenerationService(generationopenai.Config{
			APIKey: apiKey(config, "generation.api_key", "OPENAI_API_KEY"),
			Model:  config.GetString("generation.model"),
		})
	case "ollama":
		return generationollama.NewGenerationService(generationollama.Config{
			BaseURL: config.GetString("generation.base_url"),
			Model:   config.GetString("generation.model"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", provider)
	}
}

// buildOCR configures the tesseract engine. A missing binary is not an
// error; scanned bills then fall back to sparse direct extraction.
func buildOCR(config driven.ConfigStore) driven.OCREngine {
	engine := tesseract.New(tesseract.Config{
		Language: config.GetString("ocr.language"),
		DPI:      config.GetInt("ocr.dpi"),
		MaxPages: config.GetInt("ocr.max_pages"),
	})
	if !engine.Available() {
		logger.Warn("tesseract or pdftoppm not found, OCR disabled")
	}
	return engine
}

// buildPipeline constructs the post-processing pipeline from config.
func buildPipeline(config driven.ConfigStore) (driven.PostProcessorPipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	cfg := map[string]any{}
	if size := config.GetInt("chunker.chunk_size"); size > 0 {
		cfg["chunk_size"] = size
	}
	if overlap := config.GetInt("chunker.overlap"); overlap > 0 {
		cfg["overlap"] = overlap
	}
	if window := config.GetInt("chunker.boundary_window"); window > 0 {
		cfg["boundary_window"] = window
	}

	chunker, err := registry.Build("chunker", cfg)
	if err != nil {
		return nil, fmt.Errorf("building chunker: %w", err)
	}

	return postprocessors.NewPipeline(chunker), nil
}

// apiKey reads a key from config, falling back to an environment
// variable so keys stay out of the config file.
func apiKey(config driven.ConfigStore, key, envVar string) string {
	if v := config.GetString(key); v != "" {
		return v
	}
	return os.Getenv(envVar)
}
