// Package vectorstore provides vector storage implementations.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// chromemTracer for OpenTelemetry instrumentation.
var chromemTracer = otel.Tracer("llmtools.vectorstore.chromem")

// ChromemConfig holds configuration for the chromem-go embedded vector
// database.
type ChromemConfig struct {
	// Path is the directory for persistent storage. Empty means an
	// in-memory database without persistence (useful for tests).
	Path string

	// Compress enables gzip compression for stored data.
	Compress bool
}

// ChromemStore implements the Store interface using chromem-go.
//
// chromem-go is an embeddable vector database with zero third-party
// dependencies: pure Go, no external service, automatic persistence to
// gob files. Search is exact (no ANN index), which also gives the
// read-after-write visibility the upsert-then-query path relies on.
//
// The store holds one long-lived DB handle; construct it once and
// share it across all components.
type ChromemStore struct {
	db       *chromem.DB
	embedder Embedder
	config   ChromemConfig
	logger   *zap.Logger
}

// NewChromemStore creates a new ChromemStore with the given configuration.
func NewChromemStore(config ChromemConfig, embedder Embedder, logger *zap.Logger) (*ChromemStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		db  *chromem.DB
		err error
	)
	if config.Path == "" {
		db = chromem.NewDB()
	} else {
		expanded, perr := expandChromemPath(config.Path)
		if perr != nil {
			return nil, fmt.Errorf("expanding path: %w", perr)
		}
		if err = os.MkdirAll(expanded, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", expanded, err)
		}
		config.Path = expanded
		db, err = chromem.NewPersistentDB(expanded, config.Compress)
		if err != nil {
			return nil, fmt.Errorf("creating chromem DB: %w", err)
		}
	}

	store := &ChromemStore{
		db:       db,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}

	logger.Info("chromem store initialized",
		zap.String("path", config.Path),
		zap.Bool("compress", config.Compress),
		zap.Bool("persistent", config.Path != ""),
	)

	return store, nil
}

// expandChromemPath expands ~ to home directory.
func expandChromemPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// embeddingFunc adapts the Embedder interface to chromem.EmbeddingFunc.
func (s *ChromemStore) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.EmbedQuery(ctx, text)
	}
}

// getCollection fetches an existing collection or nil.
// The embedding function must always be passed: chromem-go falls back
// to its OpenAI default when nil is given for persisted collections.
func (s *ChromemStore) getCollection(name string) *chromem.Collection {
	return s.db.GetCollection(name, s.embeddingFunc())
}

// EnsureCollection creates the named collection if absent.
func (s *ChromemStore) EnsureCollection(ctx context.Context, name string) error {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.EnsureCollection")
	defer span.End()
	span.SetAttributes(attribute.String("collection", name))
	start := time.Now()

	err := s.ensureCollection(ctx, name)
	observeOp("ensure_collection", time.Since(start).Seconds(), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "success")
	return nil
}

func (s *ChromemStore) ensureCollection(_ context.Context, name string) error {
	if err := ValidateCollectionName(name); err != nil {
		return err
	}
	if _, err := s.db.GetOrCreateCollection(name, nil, s.embeddingFunc()); err != nil {
		return fmt.Errorf("getting/creating collection %s: %w", name, err)
	}
	return nil
}

// CollectionExists checks if a collection exists.
func (s *ChromemStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	_, span := chromemTracer.Start(ctx, "ChromemStore.CollectionExists")
	defer span.End()
	span.SetAttributes(attribute.String("collection", name))

	if err := ValidateCollectionName(name); err != nil {
		return false, err
	}
	exists := s.getCollection(name) != nil
	span.SetStatus(codes.Ok, "success")
	return exists, nil
}

// GetCollectionInfo returns metadata about a collection.
func (s *ChromemStore) GetCollectionInfo(ctx context.Context, name string) (*CollectionInfo, error) {
	_, span := chromemTracer.Start(ctx, "ChromemStore.GetCollectionInfo")
	defer span.End()
	span.SetAttributes(attribute.String("collection", name))

	if err := ValidateCollectionName(name); err != nil {
		return nil, err
	}
	collection := s.getCollection(name)
	if collection == nil {
		span.SetStatus(codes.Error, "collection not found")
		return nil, ErrCollectionNotFound
	}
	info := &CollectionInfo{
		Name:       name,
		PointCount: collection.Count(),
	}
	span.SetAttributes(attribute.Int("point_count", info.PointCount))
	span.SetStatus(codes.Ok, "success")
	return info, nil
}

// ListCollections returns all collection names.
func (s *ChromemStore) ListCollections(ctx context.Context) ([]string, error) {
	_, span := chromemTracer.Start(ctx, "ChromemStore.ListCollections")
	defer span.End()

	collections := s.db.ListCollections()
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	span.SetAttributes(attribute.Int("collection_count", len(names)))
	span.SetStatus(codes.Ok, "success")
	return names, nil
}

// DeleteCollection deletes a collection and all its documents.
func (s *ChromemStore) DeleteCollection(ctx context.Context, name string) error {
	_, span := chromemTracer.Start(ctx, "ChromemStore.DeleteCollection")
	defer span.End()
	span.SetAttributes(attribute.String("collection", name))
	start := time.Now()

	err := s.deleteCollection(name)
	observeOp("delete_collection", time.Since(start).Seconds(), err)
	if err != nil {
		if !errors.Is(err, ErrCollectionNotFound) {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "success")
	s.logger.Info("deleted chromem collection", zap.String("collection", name))
	return nil
}

func (s *ChromemStore) deleteCollection(name string) error {
	if err := ValidateCollectionName(name); err != nil {
		return err
	}
	if s.getCollection(name) == nil {
		return ErrCollectionNotFound
	}
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("deleting collection %s: %w", name, err)
	}
	return nil
}

// AddDocuments embeds and writes documents with add-or-overwrite
// semantics keyed by ID. The collection is created if absent.
func (s *ChromemStore) AddDocuments(ctx context.Context, collection string, docs []Document) ([]string, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.AddDocuments")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("document_count", len(docs)),
	)
	start := time.Now()

	ids, err := s.addDocuments(ctx, collection, docs)
	observeOp("add", time.Since(start).Seconds(), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	DocumentsWritten.Add(float64(len(ids)))
	span.SetAttributes(attribute.Int("documents_added", len(ids)))
	span.SetStatus(codes.Ok, "success")

	s.logger.Debug("added documents to chromem",
		zap.String("collection", collection),
		zap.Int("count", len(ids)),
	)
	return ids, nil
}

func (s *ChromemStore) addDocuments(ctx context.Context, collection string, docs []Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyDocuments
	}
	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	for i, doc := range docs {
		if doc.ID == "" {
			return nil, fmt.Errorf("document at index %d has no ID", i)
		}
	}

	col, err := s.db.GetOrCreateCollection(collection, nil, s.embeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("getting/creating collection %s: %w", collection, err)
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	// Embed in one batch; per-document embedding inside chromem would
	// issue one call per chunk.
	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(embeddings) != len(docs) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d documents", ErrEmbeddingFailed, len(embeddings), len(docs))
	}

	ids := make([]string, len(docs))
	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		chromemDocs[i] = chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Metadata:  doc.Metadata,
			Embedding: embeddings[i],
		}
	}

	// Concurrency of 1 since embeddings are already computed.
	if err := col.AddDocuments(ctx, chromemDocs, 1); err != nil {
		return nil, fmt.Errorf("adding documents: %w", err)
	}
	return ids, nil
}

// Query performs metadata-filtered similarity search in a collection.
func (s *ChromemStore) Query(ctx context.Context, collection, query string, filter Filter, k int) ([]SearchResult, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Query")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("k", k),
	)
	start := time.Now()

	results, err := s.query(ctx, collection, query, filter, k)
	observeOp("query", time.Since(start).Seconds(), err)
	if err != nil {
		if !errors.Is(err, ErrCollectionNotFound) {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("results_count", len(results)))
	span.SetStatus(codes.Ok, "success")

	s.logger.Debug("searched chromem collection",
		zap.String("collection", collection),
		zap.Int("k", k),
		zap.Int("results", len(results)),
	)
	return results, nil
}

func (s *ChromemStore) query(ctx context.Context, collection, query string, filter Filter, k int) ([]SearchResult, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	col := s.getCollection(collection)
	if col == nil {
		return nil, ErrCollectionNotFound
	}

	// Cap k at collection size (chromem requires nResults <= doc count).
	count := col.Count()
	if count == 0 {
		return []SearchResult{}, nil
	}
	if k > count {
		k = count
	}

	results, err := col.Query(ctx, query, k, filter.Where(), nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Similarity,
			Metadata: r.Metadata,
		}
	}
	return searchResults, nil
}

// DeleteByFilter deletes every document matching the filter.
func (s *ChromemStore) DeleteByFilter(ctx context.Context, collection string, filter Filter) error {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.DeleteByFilter")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection))
	start := time.Now()

	err := s.deleteByFilter(ctx, collection, filter)
	observeOp("delete", time.Since(start).Seconds(), err)
	if err != nil {
		if !errors.Is(err, ErrCollectionNotFound) {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "success")
	return nil
}

func (s *ChromemStore) deleteByFilter(ctx context.Context, collection string, filter Filter) error {
	if err := ValidateCollectionName(collection); err != nil {
		return err
	}
	if filter.IsEmpty() {
		return fmt.Errorf("refusing to delete with empty filter; use DeleteCollection to drop everything")
	}
	col := s.getCollection(collection)
	if col == nil {
		return ErrCollectionNotFound
	}
	if err := col.Delete(ctx, filter.Where(), nil); err != nil {
		return fmt.Errorf("deleting from collection %s: %w", collection, err)
	}
	s.logger.Debug("deleted documents by filter",
		zap.String("collection", collection),
		zap.Any("where", filter.Where()),
	)
	return nil
}

// DeleteByID deletes documents by their IDs.
func (s *ChromemStore) DeleteByID(ctx context.Context, collection string, ids ...string) error {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.DeleteByID")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("id_count", len(ids)),
	)
	start := time.Now()

	err := s.deleteByID(ctx, collection, ids)
	observeOp("delete", time.Since(start).Seconds(), err)
	if err != nil {
		if !errors.Is(err, ErrCollectionNotFound) {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "success")
	return nil
}

func (s *ChromemStore) deleteByID(ctx context.Context, collection string, ids []string) error {
	if err := ValidateCollectionName(collection); err != nil {
		return err
	}
	col := s.getCollection(collection)
	if col == nil {
		return ErrCollectionNotFound
	}
	if len(ids) == 0 {
		return nil
	}
	if err := col.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("deleting from collection %s: %w", collection, err)
	}
	s.logger.Debug("deleted documents by id",
		zap.String("collection", collection),
		zap.Int("count", len(ids)),
	)
	return nil
}

// Close closes the ChromemStore.
// chromem-go persists synchronously on write, so there is nothing to
// flush.
func (s *ChromemStore) Close() error {
	s.logger.Info("chromem store closed")
	return nil
}

// Ensure ChromemStore implements Store interface.
var _ Store = (*ChromemStore)(nil)
