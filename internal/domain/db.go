package domain

import "context"

// Database defines lifecycle operations for the underlying database.
// Each implementation (SQLite, Postgres, etc.) owns its own migration
// files and strategy, ensuring the entire backend is swappable.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}

// Storage keys used by the portal. The directory key holds every user with
// their nested accounts and transactions; the session key holds the signed
// profile of whoever is currently signed in.
const (
	DirectoryKey = "bankingPortalUsers"
	SessionKey   = "bankingPortalCurrentUser"
)

// Gateway is durable key-value storage for opaque string blobs.
// Get returns ErrNotFound when the key has never been set.
type Gateway interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
