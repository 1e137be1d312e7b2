// Package session remembers the authenticated identity between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
)

// FileStore keeps the identity in a JSON file readable only by the owner.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the file at path. The file and its
// directory are created on the first SetIdentity.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file the store writes to.
func (s *FileStore) Path() string {
	return s.path
}

// CurrentIdentity returns the stored identity, or nil when there is none.
func (s *FileStore) CurrentIdentity() (*model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var identity model.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", s.path, err)
	}
	if identity.UserID.IsZero() {
		return nil, nil
	}
	return &identity, nil
}

// SetIdentity replaces the stored identity.
func (s *FileStore) SetIdentity(identity model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set session file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to save session file: %w", err)
	}
	return nil
}

// ClearIdentity removes the stored identity. Clearing an empty store is not an error.
func (s *FileStore) ClearIdentity() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// MemoryStore keeps the identity in memory.
type MemoryStore struct {
	identity *model.Identity
	mu       sync.Mutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// CurrentIdentity returns the stored identity, or nil.
func (s *MemoryStore) CurrentIdentity() (*model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return nil, nil
	}
	identity := *s.identity
	return &identity, nil
}

// SetIdentity replaces the stored identity.
func (s *MemoryStore) SetIdentity(identity model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = &identity
	return nil
}

// ClearIdentity forgets the stored identity.
func (s *MemoryStore) ClearIdentity() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	return nil
}

var (
	_ service.SessionStore = (*FileStore)(nil)
	_ service.SessionStore = (*MemoryStore)(nil)
)
