package store

import (
	"context"

	"github.com/webradar/webradar/pkg/content"
)

// Backend persists the discovery list between sessions
type Backend interface {
	// Save replaces the persisted list with the given discoveries
	Save(ctx context.Context, discoveries []*content.Discovery) error

	// Load returns the persisted discoveries, newest first. A missing
	// or empty store yields an empty slice, not an error.
	Load(ctx context.Context) ([]*content.Discovery, error)
}
