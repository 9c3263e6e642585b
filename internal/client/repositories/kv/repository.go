// Package kv is the persistence port of the client state: a flat key/value
// store holding opaque byte values. Backends: SQLite, PostgreSQL, Redis,
// S3-compatible object storage and an in-process map.
package kv

import "context"

// Repository stores whole values per key; Set overwrites (last write wins).
// Get on a missing key returns an error matching common.ErrorNotFound.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
