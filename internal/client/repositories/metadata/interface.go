// Package metadata provides a small key/value store backed by the local
// database. The session manager keeps the serialized session blob here under
// a single named key.
package metadata

import "context"

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
