package client

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore persists the session token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a file, the desktop analogue of the
// browser's local storage.
type FileTokenStore struct {
	Path string
}

// NewFileTokenStore creates a store at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{Path: path}
}

// Load returns the stored token, or "" when none is stored.
func (s *FileTokenStore) Load() (string, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Save writes the token with owner-only permissions.
func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.Path, []byte(token), 0o600)
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryTokenStore keeps the token in memory; useful in tests.
type MemoryTokenStore struct {
	token string
}

func (s *MemoryTokenStore) Load() (string, error)  { return s.token, nil }
func (s *MemoryTokenStore) Save(t string) error    { s.token = t; return nil }
func (s *MemoryTokenStore) Clear() error           { s.token = ""; return nil }
