package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore keeps assets on the local filesystem under a root directory.
type LocalStore struct {
	root string
}

var _ AssetStore = (*LocalStore)(nil)

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, AssetDir), 0o750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", root, err)
	}
	return &LocalStore{root: root}, nil
}

// Root returns the directory assets are stored under.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) resolve(p string) (string, error) {
	key, err := cleanKey(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *LocalStore) Write(_ context.Context, p string, data []byte) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("mkdir for %s: %w", p, err)
	}
	if err := os.WriteFile(full, data, 0o640); err != nil {
		return fmt.Errorf("write asset %s: %w", p, err)
	}
	return nil
}

// Delete removes the asset. Deleting a missing asset is not an error.
func (s *LocalStore) Delete(_ context.Context, p string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete asset %s: %w", p, err)
	}
	return nil
}

func (s *LocalStore) Exists(_ context.Context, p string) (bool, error) {
	full, err := s.resolve(p)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat asset %s: %w", p, err)
	}
	return !info.IsDir(), nil
}
