package rag

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
)

// chunkNamespace is the fixed UUIDv5 namespace for chunk IDs. Changing
// it would re-key every stored chunk.
var chunkNamespace = uuid.MustParse("12345678-1234-5678-1234-567812345678")

// DeriveChunkID derives a deterministic chunk identifier from the
// chunk content and its (project, document) scope.
//
// The ID is a UUIDv5 (SHA-1) over a length-prefixed concatenation of
// the three fields, so distinct triples can never collide through
// concatenation ambiguity. Identical triples always produce the same
// ID, which is what gives upserts their overwrite-not-duplicate
// semantics; the project and document salts keep equal content in
// different scopes from sharing an ID.
func DeriveChunkID(content, projectID, documentID string) string {
	var buf bytes.Buffer
	for _, field := range []string{projectID, documentID, content} {
		var lenPrefix [binary.MaxVarintLen64]byte
		n := binary.PutUvarint(lenPrefix[:], uint64(len(field)))
		buf.Write(lenPrefix[:n])
		buf.WriteString(field)
	}
	return uuid.NewSHA1(chunkNamespace, buf.Bytes()).String()
}
