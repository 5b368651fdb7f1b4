package database

import (
	"context"

	"github.com/kbtools/pdf-ingest/types"
)

// VectorIndex is the write-path contract the ingestion pipeline depends on.
type VectorIndex interface {
	// Clear deletes every vector in the index. Destructive; the caller must
	// request it explicitly and allow for eventual consistency afterwards.
	Clear(ctx context.Context) error

	// UpsertBatch sends one group of segments with their embeddings as a
	// single call to the remote store.
	UpsertBatch(ctx context.Context, segments []types.Segment, vectors [][]float32) error

	// Count returns the number of vectors currently in the index.
	Count(ctx context.Context) (int64, error)
}
