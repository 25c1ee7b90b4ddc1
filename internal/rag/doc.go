// Package rag implements the retrieval-augmented context engine: a
// multi-tenant, content-addressed chunk index over a vector store plus
// the routing policy that decides, per piece of context, whether to
// inline it verbatim or index it and retrieve only the most relevant
// chunks.
//
// Each tenant owns exactly one backing collection, created implicitly
// on first write. Projects and documents are not stored entities; they
// are metadata keys on chunks, used to scope queries and deletions.
// Chunk IDs are a pure function of (content, project, document), which
// makes writes idempotent: re-upserting the same text overwrites the
// same IDs with identical data.
package rag
