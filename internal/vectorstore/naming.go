package vectorstore

import (
	"fmt"
	"regexp"
)

// collectionNamePattern restricts collection names to a charset every
// supported backend accepts.
var collectionNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateCollectionName validates a collection name.
//
// Collections are named after tenant identifiers, so this doubles as
// tenant-ID validation at the storage boundary.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: collection name cannot be empty", ErrInvalidCollectionName)
	}
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: collection name must match pattern ^[a-zA-Z0-9_-]{1,64}$, got %q", ErrInvalidCollectionName, name)
	}
	return nil
}
