package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/face-gate/internal/registry"
	"github.com/pgvector/pgvector-go"
)

// UserStore is a PostgreSQL-backed registry.Store. The database serializes
// writes, so no additional locking is needed on top of the pool.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a user store on top of an existing pool.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Put inserts or overwrites a user record.
func (s *UserStore) Put(ctx context.Context, rec registry.UserRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO users (id, name, descriptor, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, descriptor = EXCLUDED.descriptor
	`
	_, err := s.pool.Exec(ctx, query, rec.ID, rec.Name, pgvector.NewVector(rec.Descriptor), createdAt)
	if err != nil {
		return &registry.StorageError{Op: "put", Err: err}
	}
	return nil
}

// Get returns a user record by id.
func (s *UserStore) Get(ctx context.Context, id string) (*registry.UserRecord, error) {
	query := `SELECT id, name, descriptor, created_at FROM users WHERE id = $1`

	var rec registry.UserRecord
	var vec pgvector.Vector

	err := s.pool.QueryRow(ctx, query, id).Scan(&rec.ID, &rec.Name, &vec, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, registry.ErrUserNotFound
	}
	if err != nil {
		return nil, &registry.StorageError{Op: "get", Err: err}
	}

	rec.Descriptor = vec.Slice()
	return &rec, nil
}

// Delete removes a user record by id.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	result, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return &registry.StorageError{Op: "delete", Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return &registry.StorageError{Op: "delete", Err: err}
	}
	if affected == 0 {
		return registry.ErrUserNotFound
	}
	return nil
}

// All returns every user record ordered by insertion (created_at, id), so
// match tie-break behavior stays stable across backends.
func (s *UserStore) All(ctx context.Context) ([]registry.UserRecord, error) {
	query := `SELECT id, name, descriptor, created_at FROM users ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, &registry.StorageError{Op: "all", Err: err}
	}
	defer rows.Close()

	var records []registry.UserRecord
	for rows.Next() {
		var rec registry.UserRecord
		var vec pgvector.Vector
		if err := rows.Scan(&rec.ID, &rec.Name, &vec, &rec.CreatedAt); err != nil {
			return nil, &registry.StorageError{Op: "all", Err: fmt.Errorf("scan user: %w", err)}
		}
		rec.Descriptor = vec.Slice()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &registry.StorageError{Op: "all", Err: err}
	}
	return records, nil
}

// Count returns the number of enrolled users.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, &registry.StorageError{Op: "count", Err: err}
	}
	return count, nil
}

// Close closes the underlying pool.
func (s *UserStore) Close() error {
	return s.pool.Close()
}
