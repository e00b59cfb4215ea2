package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Load for unknown or expired ids.
var ErrNotFound = errors.New("session not found")

// Store persists encoded sessions. Implementations must be safe for
// concurrent use; the last Save for an id wins.
type Store interface {
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
