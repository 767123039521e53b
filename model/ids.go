package model

import "github.com/google/uuid"

// NewID returns a new opaque 128-bit identifier, per spec's "all internal
// ids are opaque 128-bit values".
func NewID() string {
	return uuid.NewString()
}
