package rag

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// AttachmentKind categorizes an attachment so the router can apply a
// kind-specific inline threshold. Transcripts, for example, are long
// almost by definition and warrant a lower threshold than notes.
type AttachmentKind string

const (
	KindNote       AttachmentKind = "note"
	KindTranscript AttachmentKind = "transcript"
	KindFile       AttachmentKind = "file"
)

// Attachment is one candidate piece of context for a chat turn.
type Attachment struct {
	ID       string
	Project  string
	Document string
	Content  string
	Kind     AttachmentKind
}

// RouterPolicy configures the inline-vs-retrieve decision.
type RouterPolicy struct {
	// InlineThresholds maps attachment kinds to the maximum content
	// length (in runes) that is inlined verbatim. Kinds without an
	// entry use DefaultThreshold.
	InlineThresholds map[AttachmentKind]int

	// DefaultThreshold applies to kinds without a specific threshold.
	DefaultThreshold int

	// TopK is the retrieval fan-out per routed attachment.
	TopK int

	// Separator joins the contributed pieces of the assembled context.
	Separator string
}

// DefaultRouterPolicy returns the policy used when none is configured.
func DefaultRouterPolicy() RouterPolicy {
	return RouterPolicy{
		DefaultThreshold: 2000,
		TopK:             3,
		Separator:        "\n\n",
	}
}

func (p RouterPolicy) thresholdFor(kind AttachmentKind) int {
	if t, ok := p.InlineThresholds[kind]; ok {
		return t
	}
	return p.DefaultThreshold
}

// Router assembles a single bounded context string from candidate
// attachments plus a user query.
//
// Short attachments are inlined verbatim; long ones are indexed and
// replaced by their most relevant retrieved chunks. Retrieval is
// best-effort augmentation, not a critical dependency: a backend
// failure for one attachment removes only that attachment's
// contribution and never fails the overall call.
type Router struct {
	upserter *Upserter
	querier  *Querier
	policy   RouterPolicy
	logger   *zap.Logger
}

// NewRouter creates a Router.
func NewRouter(upserter *Upserter, querier *Querier, policy RouterPolicy, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{upserter: upserter, querier: querier, policy: policy, logger: logger}
}

// AssembleContext routes each attachment and concatenates the
// contributed pieces in attachment input order, joined by the policy
// separator. The boolean is false when no attachment contributed
// anything.
//
// The output length is bounded by the sum of inline thresholds over
// inlined attachments plus TopK chunk sizes per retrieved attachment,
// which is what makes the result safe to hand to a size-constrained
// consumer.
func (r *Router) AssembleContext(ctx context.Context, tenant, userQuery string, attachments []Attachment) (string, bool) {
	var pieces []string

	for _, att := range attachments {
		piece, ok := r.routeAttachment(ctx, tenant, userQuery, att)
		if ok {
			pieces = append(pieces, piece...)
		}
	}

	if len(pieces) == 0 {
		return "", false
	}
	return strings.Join(pieces, r.policy.Separator), true
}

// routeAttachment applies the inline-vs-retrieve policy to one
// attachment and returns its contribution.
func (r *Router) routeAttachment(ctx context.Context, tenant, userQuery string, att Attachment) ([]string, bool) {
	length := utf8.RuneCountInString(att.Content)
	if length == 0 {
		routerAttachmentsTotal.WithLabelValues("empty").Inc()
		return nil, false
	}

	if length <= r.policy.thresholdFor(att.Kind) {
		routerAttachmentsTotal.WithLabelValues("inlined").Inc()
		return []string{att.Content}, true
	}

	if _, err := r.upserter.Upsert(ctx, tenant, att.Project, att.Document, att.Content); err != nil {
		routerAttachmentsTotal.WithLabelValues("failed").Inc()
		r.logger.Warn("attachment indexing failed, dropping from context",
			zap.String("tenant", tenant),
			zap.String("attachment", att.ID),
			zap.Error(err),
		)
		return nil, false
	}

	scope := Scope{Project: att.Project, Document: att.Document}
	texts, err := r.querier.Query(ctx, tenant, userQuery, scope, r.policy.TopK)
	if err != nil {
		routerAttachmentsTotal.WithLabelValues("failed").Inc()
		r.logger.Warn("attachment retrieval failed, dropping from context",
			zap.String("tenant", tenant),
			zap.String("attachment", att.ID),
			zap.Error(err),
		)
		return nil, false
	}
	if len(texts) == 0 {
		// Eventually consistent backends may not see the write yet;
		// treat as a transient empty retrieval.
		routerAttachmentsTotal.WithLabelValues("empty").Inc()
		return nil, false
	}

	routerAttachmentsTotal.WithLabelValues("retrieved").Inc()
	return texts, true
}
