// Package uuid provides UUID generation and parsing utilities.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// New generates a new UUID v4 string.
func New() string {
	return uuid.New().String()
}

// Parse parses a UUID string.
func Parse(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid UUID: %w", err)
	}
	return id, nil
}

// ParseOrNew parses s as a UUID, falling back to a freshly generated
// UUID when s is not parseable. Seed and sync payloads carry external
// ids that are not guaranteed to be well-formed.
func ParseOrNew(s string) string {
	if id, err := uuid.Parse(s); err == nil {
		return id.String()
	}
	return uuid.New().String()
}

// IsValid reports whether s is a well-formed UUID.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
