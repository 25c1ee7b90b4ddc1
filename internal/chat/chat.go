// Package chat defines the data contract between the retrieval engine
// and the chat orchestration that consumes it. The orchestration
// itself (prompt construction, turn history, LLM invocation) lives
// outside this library; only the types it exchanges with the engine
// are defined here.
package chat

import (
	"context"

	"github.com/cobwebai/llmtools/internal/rag"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one chat turn. Context carries the assembled retrieval
// context for user turns; it is empty for bot turns and for user turns
// without attachments.
type Message struct {
	Role    Role
	Text    string
	Context string
}

// Attachment is a piece of user-supplied source material offered as
// context for a chat turn.
type Attachment struct {
	ID       string
	Project  string
	Document string
	Content  string
	Kind     rag.AttachmentKind
}

// ToRAG converts chat attachments into the engine's attachment form,
// preserving input order.
func ToRAG(attachments []Attachment) []rag.Attachment {
	out := make([]rag.Attachment, len(attachments))
	for i, a := range attachments {
		out[i] = rag.Attachment{
			ID:       a.ID,
			Project:  a.Project,
			Document: a.Document,
			Content:  a.Content,
			Kind:     a.Kind,
		}
	}
	return out
}

// ContextAssembler is the engine capability chat orchestration
// depends on. *rag.Service satisfies it.
type ContextAssembler interface {
	AssembleContext(ctx context.Context, tenant, userQuery string, attachments []rag.Attachment) (string, bool)
}

var _ ContextAssembler = (*rag.Service)(nil)
