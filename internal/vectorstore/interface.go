// Package vectorstore defines the capability boundary to the backing
// vector-similarity store.
package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDocuments indicates empty or nil documents.
	ErrEmptyDocuments = errors.New("empty or nil documents")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")

	// ErrInvalidCollectionName indicates collection name validation failure.
	ErrInvalidCollectionName = errors.New("invalid collection name")
)

// CollectionInfo contains metadata about a vector collection.
type CollectionInfo struct {
	// Name is the collection name.
	Name string `json:"name"`

	// PointCount is the number of vectors in the collection.
	PointCount int `json:"point_count"`
}

// Embedder generates vector embeddings from text.
//
// Embeddings are dense numerical representations that capture semantic
// meaning, enabling similarity search. Implementations can use local
// servers (TEI) or cloud APIs (OpenAI-compatible endpoints).
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts.
	// Returns a slice of embeddings (one per input text) or an error.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	// Some models optimize differently for queries vs documents.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the interface for vector storage operations.
//
// This interface is transport-agnostic; it covers exactly the backend
// capabilities the retrieval engine needs: named collection lifecycle,
// add-or-overwrite document writes keyed by ID, metadata-filtered
// similarity search, and filter- or ID-scoped deletion.
//
// Collections are named after the owning tenant. Absence of a
// collection is an expected steady state for tenants that never wrote
// data; reads signal it with ErrCollectionNotFound so callers can
// branch, not fail.
type Store interface {
	// EnsureCollection creates the named collection if it does not
	// exist yet. Safe to call concurrently for the same name; the
	// backend's name-uniqueness guarantee prevents duplicates.
	EnsureCollection(ctx context.Context, name string) error

	// CollectionExists reports whether the named collection exists.
	// Returns an error only if the check itself fails.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// GetCollectionInfo returns metadata about a collection, or
	// ErrCollectionNotFound.
	GetCollectionInfo(ctx context.Context, name string) (*CollectionInfo, error)

	// ListCollections returns all collection names.
	ListCollections(ctx context.Context) ([]string, error)

	// DeleteCollection deletes a collection and all its documents.
	// Returns ErrCollectionNotFound if it does not exist.
	DeleteCollection(ctx context.Context, name string) error

	// AddDocuments embeds and writes documents into the named
	// collection with add-or-overwrite semantics keyed by Document.ID.
	// The collection is created if absent. Returns the written IDs.
	AddDocuments(ctx context.Context, collection string, docs []Document) ([]string, error)

	// Query performs similarity search in the named collection.
	// Only documents matching every condition of the filter are
	// considered. Returns up to k results ordered by the backend's
	// notion of relevance (closest first), or ErrCollectionNotFound.
	Query(ctx context.Context, collection, query string, filter Filter, k int) ([]SearchResult, error)

	// DeleteByFilter deletes every document whose metadata matches all
	// conditions of the filter. Returns ErrCollectionNotFound if the
	// collection does not exist.
	DeleteByFilter(ctx context.Context, collection string, filter Filter) error

	// DeleteByID deletes documents by their IDs. Unknown IDs are
	// ignored. Returns ErrCollectionNotFound if the collection does
	// not exist.
	DeleteByID(ctx context.Context, collection string, ids ...string) error

	// Close releases resources held by the store.
	Close() error
}
