// Package session provides the per-launch conversation identity.
package session

import "github.com/google/uuid"

// NewID returns an opaque identifier unique within this process lifetime.
// It is generated once at startup and never persisted or reused.
func NewID() string {
	return uuid.NewString()
}
