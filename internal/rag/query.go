package rag

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cobwebai/llmtools/internal/vectorstore"
)

// ErrUnscopedQuery is returned when a query carries neither a project
// nor a document filter. Tenant-wide queries are rejected outright:
// the scope requirement is an isolation boundary that keeps content
// from unrelated projects out of a response context, not an
// optimization.
var ErrUnscopedQuery = errors.New("query requires a project or document scope")

// Scope restricts a query to a project, a document, or (AND) both.
type Scope struct {
	Project  string
	Document string
}

// IsZero reports whether no scope field is set.
func (s Scope) IsZero() bool {
	return s.Project == "" && s.Document == ""
}

// filter renders the scope as a conjunctive metadata filter.
func (s Scope) filter() vectorstore.Filter {
	conds := make([]vectorstore.Condition, 0, 2)
	if s.Project != "" {
		conds = append(conds, vectorstore.Equals(metaProjectID, s.Project))
	}
	if s.Document != "" {
		conds = append(conds, vectorstore.Equals(metaDocumentID, s.Document))
	}
	return vectorstore.And(conds...)
}

// Querier executes metadata-filtered nearest-neighbor searches against
// a tenant's index.
type Querier struct {
	tenants *Tenants
	store   vectorstore.Store
	logger  *zap.Logger
}

// NewQuerier creates a Querier.
func NewQuerier(tenants *Tenants, store vectorstore.Store, logger *zap.Logger) *Querier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Querier{tenants: tenants, store: store, logger: logger}
}

// Query returns up to k chunk texts closest to queryText within the
// tenant's index, restricted to the given scope. A tenant that has
// never written data yields an empty result, not an error. Ranking
// order is the backend's notion of relevance, closest first.
func (q *Querier) Query(ctx context.Context, tenant, queryText string, scope Scope, k int) ([]string, error) {
	if scope.IsZero() {
		return nil, ErrUnscopedQuery
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	results, err := q.store.Query(ctx, tenant, queryText, scope.filter(), k)
	if errors.Is(err, vectorstore.ErrCollectionNotFound) {
		queriesTotal.WithLabelValues("empty").Inc()
		return nil, nil
	}
	if err != nil {
		queriesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("querying tenant %s: %w", tenant, err)
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Content
	}

	queriesTotal.WithLabelValues("success").Inc()
	q.logger.Debug("similarity query",
		zap.String("tenant", tenant),
		zap.String("project", scope.Project),
		zap.String("document", scope.Document),
		zap.Int("k", k),
		zap.Int("results", len(texts)),
	)
	return texts, nil
}
