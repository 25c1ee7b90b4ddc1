package rag

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cobwebai/llmtools/internal/vectorstore"
)

// Index is a handle to a tenant's backing collection.
type Index struct {
	tenant string
}

// Collection returns the backing collection name.
func (i Index) Collection() string {
	return i.tenant
}

// Tenants manages the one-collection-per-tenant lifecycle in the
// backing store. Collections are named after the tenant identifier,
// so the backend's name-uniqueness guarantee is the only lock needed
// for concurrent get-or-create calls.
type Tenants struct {
	store  vectorstore.Store
	logger *zap.Logger
}

// NewTenants creates a tenant index manager over the given store.
func NewTenants(store vectorstore.Store, logger *zap.Logger) *Tenants {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tenants{store: store, logger: logger}
}

// GetOrCreate returns the tenant's index, creating the backing
// collection if it does not exist yet.
func (t *Tenants) GetOrCreate(ctx context.Context, tenant string) (Index, error) {
	if err := t.store.EnsureCollection(ctx, tenant); err != nil {
		return Index{}, fmt.Errorf("ensuring collection for tenant %s: %w", tenant, err)
	}
	return Index{tenant: tenant}, nil
}

// TryGet returns the tenant's index if the backing collection exists.
// Absence is an expected steady state for tenants that never wrote
// data and is reported through the boolean, not an error.
func (t *Tenants) TryGet(ctx context.Context, tenant string) (Index, bool, error) {
	exists, err := t.store.CollectionExists(ctx, tenant)
	if err != nil {
		return Index{}, false, fmt.Errorf("checking collection for tenant %s: %w", tenant, err)
	}
	if !exists {
		return Index{}, false, nil
	}
	return Index{tenant: tenant}, true, nil
}

// Delete drops the tenant's collection and every chunk it held.
// Returns false when no collection existed.
func (t *Tenants) Delete(ctx context.Context, tenant string) (bool, error) {
	err := t.store.DeleteCollection(ctx, tenant)
	if errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deleting collection for tenant %s: %w", tenant, err)
	}
	t.logger.Info("deleted tenant index", zap.String("tenant", tenant))
	return true, nil
}
