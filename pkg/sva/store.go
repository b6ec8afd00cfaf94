package sva

import (
	"context"

	"github.com/google/uuid"
)

// Store persists instances as opaque records keyed by instance ID.
// Round-tripping Save then Load must reproduce an instance with identical
// state and turns. Load returns nil (and no error) when the ID is unknown.
type Store[S, A any] interface {
	// Ping tests the store connection
	Ping(ctx context.Context) error

	// Close closes the store connection
	Close() error

	Save(ctx context.Context, inst *Instance[S, A]) error
	Load(ctx context.Context, id uuid.UUID) (*Instance[S, A], error)
	List(ctx context.Context) ([]Metadata, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
