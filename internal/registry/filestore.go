package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// fileRecord is the on-disk shape of a single user entry.
type fileRecord struct {
	Name       string    `json:"name"`
	Descriptor []float32 `json:"descriptor"`
}

// fileDocument is the on-disk shape of the whole registry: a single JSON
// object keyed by user id.
type fileDocument struct {
	Users map[string]fileRecord `json:"users"`
}

// FileStore is a JSON-file-backed Store. The whole collection is read once
// at startup and overwritten on every mutation. All access goes through a
// single mutex, so concurrent registrations cannot interleave their
// read-modify-write cycles.
type FileStore struct {
	path string
	dim  int

	mu    sync.Mutex
	users map[string]UserRecord
	order []string // insertion order, ties in matching are broken by it
}

// NewFileStore opens (or creates) the registry file at path. A missing
// file is created empty. A malformed file is logged, discarded, and
// replaced with an empty registry: corruption is a recoverable condition,
// never fatal. Records whose descriptor length does not match dim are
// dropped with a warning.
func NewFileStore(path string, dim int) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		dim:   dim,
		users: make(map[string]UserRecord),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &StorageError{Op: "init", Err: err}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := s.writeFile(s.users); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("Warning: registry file %s is malformed, resetting to empty: %v", path, err)
		if err := s.writeFile(s.users); err != nil {
			return nil, err
		}
		return s, nil
	}

	for id, rec := range doc.Users {
		if len(rec.Descriptor) != dim {
			log.Printf("Warning: dropping user %s: descriptor length %d, expected %d", id, len(rec.Descriptor), dim)
			continue
		}
		s.users[id] = UserRecord{ID: id, Name: rec.Name, Descriptor: rec.Descriptor}
	}

	// File order is a JSON object, so reload order is sorted by id to
	// keep All deterministic across restarts.
	s.order = make([]string, 0, len(s.users))
	for id := range s.users {
		s.order = append(s.order, id)
	}
	sort.Strings(s.order)

	return s, nil
}

// writeFile overwrites the durable file with the given collection. The
// write goes to a temp file first and is renamed into place so a crash
// mid-write cannot corrupt the registry.
func (s *FileStore) writeFile(users map[string]UserRecord) error {
	doc := fileDocument{Users: make(map[string]fileRecord, len(users))}
	for id, rec := range users {
		doc.Users[id] = fileRecord{Name: rec.Name, Descriptor: rec.Descriptor}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &StorageError{Op: "write", Err: fmt.Errorf("rename %s: %w", tmp, err)}
	}
	return nil
}

// Put inserts or overwrites a record. The durable write happens first;
// memory is committed only after it succeeds.
func (s *FileStore) Put(ctx context.Context, rec UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]UserRecord, len(s.users)+1)
	for id, r := range s.users {
		next[id] = r
	}
	next[rec.ID] = rec

	if err := s.writeFile(next); err != nil {
		return err
	}

	if _, exists := s.users[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.users[rec.ID] = rec
	return nil
}

// Get returns the record for the given id.
func (s *FileStore) Get(ctx context.Context, id string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &rec, nil
}

// Delete removes a record, writing the durable state first.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrUserNotFound
	}

	next := make(map[string]UserRecord, len(s.users))
	for uid, r := range s.users {
		if uid != id {
			next[uid] = r
		}
	}

	if err := s.writeFile(next); err != nil {
		return err
	}

	delete(s.users, id)
	for i, uid := range s.order {
		if uid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// All returns every record in insertion order.
func (s *FileStore) All(ctx context.Context) ([]UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]UserRecord, 0, len(s.users))
	for _, id := range s.order {
		records = append(records, s.users[id])
	}
	return records, nil
}

// Count returns the number of enrolled users.
func (s *FileStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
