package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbtools/pdf-ingest/config"
	"github.com/kbtools/pdf-ingest/database"
	"github.com/kbtools/pdf-ingest/service"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pdf-ingest",
	Short: "Ingest PDF documents into a vector index",
	Long: `pdf-ingest extracts text from PDF documents, splits it into
overlapping retrieval-sized segments with provenance metadata, and upserts
the segments as embedded vectors into a Weaviate index.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, optional)")
}

// buildIngestService wires the pipeline from configuration: index store,
// embedder, extractor and chunker. Credentials are injected here, never via
// process-global state.
func buildIngestService(ctx context.Context, cfg *config.Config) (*service.IngestService, error) {
	store, err := database.NewWeaviateStore(cfg.Index, cfg.WeaviateAPIKey)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return service.NewIngestService(
		service.NewExtractService(),
		service.NewChunkService(cfg.ChunkingOptions()),
		embedder,
		store,
		cfg.BatchOptions(),
	), nil
}

func newEmbedder(ctx context.Context, cfg *config.Config) (service.Embedder, error) {
	model := cfg.Embedding.Model
	switch cfg.Embedding.Provider {
	case "openai", "":
		if model == "" {
			model = "text-embedding-3-small"
		}
		return service.NewOpenAIEmbedder(cfg.Embedding.BaseURL, cfg.OpenAIAPIKey, model), nil
	case "gemini":
		if model == "" {
			model = "text-embedding-004"
		}
		return service.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, model)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}
}
