// Package registry holds the enrolled user records and their face
// descriptors behind a durable Store.
package registry

import (
	"errors"
	"fmt"
	"time"
)

// UserRecord represents an enrolled user. The descriptor is the embedding
// vector produced by the external detector and is immutable once stored.
type UserRecord struct {
	ID         string
	Name       string
	Descriptor []float32
	CreatedAt  time.Time
}

// ErrUserNotFound is returned when a user id does not exist in the store.
var ErrUserNotFound = errors.New("user not found")

// StorageError wraps a durable read/write failure so callers can tell
// storage trouble apart from domain errors.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("registry storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
