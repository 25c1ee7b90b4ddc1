package rag

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cobwebai/llmtools/internal/vectorstore"
)

// Service is the caller-facing surface of the retrieval engine. It
// owns no backend connections itself: the store (and through it the
// embedding client) is a long-lived dependency acquired once by the
// caller and injected here.
//
// All methods are safe for concurrent use across tenants, projects,
// and documents. Two concurrent upserts of the same document with
// different content may interleave; callers that care must serialize
// writes per document.
type Service struct {
	store    vectorstore.Store
	tenants  *Tenants
	upserter *Upserter
	querier  *Querier
	router   *Router
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	chunkSize    int
	chunkOverlap int
	policy       RouterPolicy
	logger       *zap.Logger
}

// WithChunking overrides the default chunk window size and overlap.
func WithChunking(size, overlap int) Option {
	return func(o *serviceOptions) {
		o.chunkSize = size
		o.chunkOverlap = overlap
	}
}

// WithRouterPolicy overrides the default inline-vs-retrieve policy.
func WithRouterPolicy(policy RouterPolicy) Option {
	return func(o *serviceOptions) {
		o.policy = policy
	}
}

// WithLogger sets the logger for the engine and its components.
func WithLogger(logger *zap.Logger) Option {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService creates the retrieval engine on top of a store.
func NewService(store vectorstore.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}

	options := serviceOptions{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		policy:       DefaultRouterPolicy(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	chunker, err := NewChunker(options.chunkSize, options.chunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("configuring chunker: %w", err)
	}

	logger := options.logger
	tenants := NewTenants(store, logger.Named("tenants"))
	upserter := NewUpserter(tenants, store, chunker, logger.Named("upsert"))
	querier := NewQuerier(tenants, store, logger.Named("query"))
	router := NewRouter(upserter, querier, options.policy, logger.Named("router"))

	return &Service{
		store:    store,
		tenants:  tenants,
		upserter: upserter,
		querier:  querier,
		router:   router,
		logger:   logger,
	}, nil
}

// AddDocument splits, embeds, and indexes a document's text under the
// tenant's index, scoped to (project, document). Returns the
// content-addressed chunk IDs.
func (s *Service) AddDocument(ctx context.Context, tenant, project, document, text string) ([]string, error) {
	return s.upserter.Upsert(ctx, tenant, project, document, text)
}

// Query returns up to k chunk texts relevant to queryText under the
// tenant's index. At least one of project/document must be supplied;
// both are combined with AND.
func (s *Service) Query(ctx context.Context, tenant, queryText, project, document string, k int) ([]string, error) {
	return s.querier.Query(ctx, tenant, queryText, Scope{Project: project, Document: document}, k)
}

// AssembleContext routes the attachments through the inline-vs-retrieve
// policy and returns the aggregated context. The boolean is false when
// nothing contributed.
func (s *Service) AssembleContext(ctx context.Context, tenant, userQuery string, attachments []Attachment) (string, bool) {
	return s.router.AssembleContext(ctx, tenant, userQuery, attachments)
}

// InvalidateDocument removes every chunk of the given document from
// the tenant's index, regardless of project. Returns false when the
// tenant has no index.
//
// This is the explicit step a caller must take before re-adding a
// document whose content changed; without it the old content's chunks
// remain queryable alongside the new ones.
func (s *Service) InvalidateDocument(ctx context.Context, tenant, document string) (bool, error) {
	return s.deleteScoped(ctx, tenant, vectorstore.And(vectorstore.Equals(metaDocumentID, document)))
}

// DeleteProject removes every chunk of the given project, across all
// its documents, from the tenant's index. Chunks of other projects are
// untouched. Returns false when the tenant has no index.
func (s *Service) DeleteProject(ctx context.Context, tenant, project string) (bool, error) {
	return s.deleteScoped(ctx, tenant, vectorstore.And(vectorstore.Equals(metaProjectID, project)))
}

func (s *Service) deleteScoped(ctx context.Context, tenant string, filter vectorstore.Filter) (bool, error) {
	err := s.store.DeleteByFilter(ctx, tenant, filter)
	if errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteChunks removes individual chunks by ID from the tenant's
// index. Returns false when the tenant has no index.
func (s *Service) DeleteChunks(ctx context.Context, tenant string, ids []string) (bool, error) {
	err := s.store.DeleteByID(ctx, tenant, ids...)
	if errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteTenant drops the tenant's index and every chunk it held.
// Returns false when no index existed.
func (s *Service) DeleteTenant(ctx context.Context, tenant string) (bool, error) {
	return s.tenants.Delete(ctx, tenant)
}
