package registry

import "context"

// Store is the registry of enrolled users. Implementations must serialize
// mutations so concurrent registrations cannot lose writes, and All must
// return records in a stable order because match ties are broken by
// iteration order.
type Store interface {
	// Put inserts or overwrites a user record and makes it durable.
	// The durable write happens before the in-memory commit; a failed
	// write leaves the store unchanged and returns a StorageError.
	Put(ctx context.Context, rec UserRecord) error

	// Get returns the record for the given id, or ErrUserNotFound.
	Get(ctx context.Context, id string) (*UserRecord, error)

	// Delete removes a user record, or returns ErrUserNotFound.
	Delete(ctx context.Context, id string) error

	// All returns every record for scanning. No pagination: the whole
	// set is scanned on each verification, which is fine for a
	// single-site registry.
	All(ctx context.Context) ([]UserRecord, error)

	// Count returns the number of enrolled users.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
