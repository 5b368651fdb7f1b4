package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/kbtools/pdf-ingest/config"
	"github.com/kbtools/pdf-ingest/types"
)

// Class property names. These mirror types.SegmentMetadata and are part of
// the wire contract with the retrieval consumer.
const (
	propText            = "text"
	propSource          = "source"
	propPage            = "page"
	propType            = "type"
	propUploadTimestamp = "upload_timestamp"
)

func classObject(class string, multiTenancy bool) *models.Class {
	obj := &models.Class{
		Class: class,
		Properties: []*models.Property{
			{Name: propText, DataType: []string{"text"}},
			{Name: propSource, DataType: []string{"text"}},
			{Name: propPage, DataType: []string{"int"}},
			{Name: propType, DataType: []string{"text"}},
			{Name: propUploadTimestamp, DataType: []string{"text"}},
		},
		// Vectors are computed by the pipeline's embedder and passed in
		// explicitly; the index must not re-vectorize.
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
	if multiTenancy {
		obj.MultiTenancyConfig = &models.MultiTenancyConfig{Enabled: true}
	}
	return obj
}

// WeaviateStore is the remote vector index handle. It is constructed once per
// run and must not be shared across concurrent runs.
type WeaviateStore struct {
	client *weaviate.Client
	class  string
	tenant string
	logger *slog.Logger
}

// NewWeaviateStore connects to the index, verifies the service is reachable
// and ensures the segment class (and tenant, when a namespace is configured)
// exists. Returns a types.ConnectionError when the remote is unreachable.
func NewWeaviateStore(cfg config.IndexConfig, apiKey string) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")

	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if apiKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: apiKey}
	}

	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, &types.ConnectionError{Host: cfg.Host, Err: err}
	}

	store := &WeaviateStore{
		client: client,
		class:  cfg.Index,
		tenant: cfg.Namespace,
		logger: slog.Default().With("component", "weaviate-store", "class", cfg.Index),
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, &types.ConnectionError{Host: cfg.Host, Err: err}
	}

	hasClass := false
	for _, class := range schema.Classes {
		if class.Class == store.class {
			hasClass = true
			break
		}
	}
	if !hasClass {
		err = client.Schema().ClassCreator().
			WithClass(classObject(store.class, store.tenant != "")).
			Do(context.Background())
		if err != nil {
			return nil, &types.ConnectionError{Host: cfg.Host, Err: fmt.Errorf("failed to create class %s: %w", store.class, err)}
		}
	}
	if err := store.ensureTenant(context.Background()); err != nil {
		return nil, &types.ConnectionError{Host: cfg.Host, Err: err}
	}

	return store, nil
}

func (s *WeaviateStore) ensureTenant(ctx context.Context) error {
	if s.tenant == "" {
		return nil
	}
	err := s.client.Schema().TenantsCreator().
		WithClassName(s.class).
		WithTenants(models.Tenant{Name: s.tenant}).
		Do(ctx)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create tenant %s: %w", s.tenant, err)
	}
	return nil
}

// Clear deletes every vector in the index by dropping and recreating the
// class. Deletion is eventually consistent; callers should allow a settling
// delay before the first upsert.
func (s *WeaviateStore) Clear(ctx context.Context) error {
	err := s.client.Schema().ClassDeleter().WithClassName(s.class).Do(ctx)
	if err != nil {
		return &types.ClearError{Index: s.class, Err: err}
	}
	err = s.client.Schema().ClassCreator().
		WithClass(classObject(s.class, s.tenant != "")).
		Do(ctx)
	if err != nil {
		return &types.ClearError{Index: s.class, Err: err}
	}
	if err := s.ensureTenant(ctx); err != nil {
		return &types.ClearError{Index: s.class, Err: err}
	}
	s.logger.Info("index cleared")
	return nil
}

// UpsertBatch sends one group of segments as a single batch call. Object IDs
// are derived from source, page and sequence, so re-uploading the same file
// overwrites instead of duplicating.
func (s *WeaviateStore) UpsertBatch(ctx context.Context, segments []types.Segment, vectors [][]float32) error {
	if len(segments) != len(vectors) {
		return fmt.Errorf("segment/vector count mismatch: %d != %d", len(segments), len(vectors))
	}

	batcher := s.client.Batch().ObjectsBatcher()
	for i, seg := range segments {
		obj := &models.Object{
			Class: s.class,
			ID:    segmentID(seg),
			Properties: map[string]interface{}{
				propText:            seg.Text,
				propSource:          seg.Metadata.Source,
				propPage:            seg.Metadata.Page,
				propType:            seg.Metadata.Type,
				propUploadTimestamp: seg.Metadata.UploadTimestamp,
			},
			Vector: vectors[i],
		}
		if s.tenant != "" {
			obj.Tenant = s.tenant
		}
		batcher = batcher.WithObjects(obj)
	}

	resp, err := batcher.Do(ctx)
	if err != nil {
		return err
	}
	for _, item := range resp {
		if item.Result != nil && item.Result.Errors != nil && len(item.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch object rejected: %s", item.Result.Errors.Error[0].Message)
		}
	}
	s.logger.Debug("batch upserted", "objects", len(segments))
	return nil
}

// Count returns the number of vectors currently in the index. Exposed so
// callers can inspect the index after a clear instead of trusting the
// settling delay.
func (s *WeaviateStore) Count(ctx context.Context) (int64, error) {
	agg := s.client.GraphQL().Aggregate().
		WithClassName(s.class).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}})
	if s.tenant != "" {
		agg = agg.WithTenant(s.tenant)
	}
	result, err := agg.Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(result.Errors) > 0 {
		return 0, fmt.Errorf("aggregate failed: %s", result.Errors[0].Message)
	}

	data, ok := result.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	rows, ok := data[s.class].([]interface{})
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	meta, ok := row["meta"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	count, ok := meta["count"].(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	return int64(count), nil
}

func segmentID(seg types.Segment) strfmt.UUID {
	key := fmt.Sprintf("%s|%d|%d", seg.Metadata.Source, seg.Metadata.Page, seg.Seq)
	return strfmt.UUID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String())
}
