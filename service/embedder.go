package service

import "context"

// Embedder computes vector embeddings for batches of segment text. The
// pipeline calls it once per upsert batch.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
