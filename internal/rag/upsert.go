package rag

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cobwebai/llmtools/internal/vectorstore"
)

// Metadata keys carried on every stored chunk.
const (
	metaProjectID   = "project_id"
	metaDocumentID  = "document_id"
	metaStartOffset = "start_offset"
)

// ErrEmptyInput is returned when text with no content is passed to an
// upsert. No chunk is ever created for empty content, and the backend
// is never contacted.
var ErrEmptyInput = errors.New("empty input text")

// Upserter turns a document's text into content-addressed chunks and
// writes them into the owning tenant's index.
type Upserter struct {
	tenants *Tenants
	store   vectorstore.Store
	chunker *Chunker
	logger  *zap.Logger
}

// NewUpserter creates an Upserter.
func NewUpserter(tenants *Tenants, store vectorstore.Store, chunker *Chunker, logger *zap.Logger) *Upserter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Upserter{tenants: tenants, store: store, chunker: chunker, logger: logger}
}

// Upsert splits text, derives per-chunk IDs from (content, project,
// document), and writes all chunks into the tenant's index with
// add-or-overwrite semantics. Returns the chunk IDs in document order.
//
// The call is idempotent for identical (tenant, project, document,
// text): re-invocation rewrites the same IDs with the same content.
// Changed text produces a different ID set and leaves the old chunks
// in place; callers that must not serve stale content have to
// invalidate the document first.
func (u *Upserter) Upsert(ctx context.Context, tenant, project, document, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: tenant %s document %s", ErrEmptyInput, tenant, document)
	}

	index, err := u.tenants.GetOrCreate(ctx, tenant)
	if err != nil {
		return nil, err
	}

	windows := u.chunker.Split(text)
	docs := make([]vectorstore.Document, 0, len(windows))
	ids := make([]string, 0, len(windows))
	seen := make(map[string]struct{}, len(windows))

	for _, w := range windows {
		id := DeriveChunkID(w.Content, project, document)
		// Overlapping windows with identical text collapse to one
		// chunk; the first occurrence's offset wins.
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		docs = append(docs, vectorstore.Document{
			ID:      id,
			Content: w.Content,
			Metadata: map[string]string{
				metaProjectID:   project,
				metaDocumentID:  document,
				metaStartOffset: strconv.Itoa(w.StartOffset),
			},
		})
	}

	written, err := u.store.AddDocuments(ctx, index.Collection(), docs)
	if err != nil {
		upsertsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("upserting document %s for tenant %s: %w", document, tenant, err)
	}

	upsertsTotal.WithLabelValues("success").Inc()
	chunksUpserted.Add(float64(len(written)))

	u.logger.Debug("upserted document",
		zap.String("tenant", tenant),
		zap.String("project", project),
		zap.String("document", document),
		zap.Int("chunks", len(written)),
	)
	return written, nil
}
