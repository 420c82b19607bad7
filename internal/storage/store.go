// Package storage persists raw document blobs on the local filesystem behind
// opaque keys. Keys are generated by the upload flow and never interpreted by
// callers.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is a local-disk blob store rooted at a single directory.
type Store struct {
	root string
}

// New creates a blob store rooted at the given directory.
func New(root string) *Store {
	return &Store{root: root}
}

// Save writes a blob under the given key, creating parent directories.
func (s *Store) Save(key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save blob: %w", err)
	}
	return nil
}

// Read returns the blob stored under the given key.
func (s *Store) Read(key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Delete removes the blob stored under the given key. Deleting a missing
// blob is not an error.
func (s *Store) Delete(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
