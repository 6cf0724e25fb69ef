package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirStore keeps artifacts as plain files under a root directory. Agents
// also write into the same directory through the write_file tool, so List
// reflects everything the run produced, not only Save calls.
type DirStore struct {
	root string
}

// NewDirStore creates the root directory if needed and returns the store.
func NewDirStore(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &DirStore{root: root}, nil
}

// Root returns the backing directory.
func (s *DirStore) Root() string { return s.root }

// Save writes the artifact, creating intermediate directories for slashed
// names.
func (s *DirStore) Save(name string, data []byte) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact parent: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", name, err)
	}
	return nil
}

// Get returns the artifact bytes or ErrNotFound.
func (s *DirStore) Get(name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read artifact %s: %w", name, err)
	}
	return data, nil
}

// List walks the root recursively and returns root-relative paths, sorted.
func (s *DirStore) List() ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the artifact or returns ErrNotFound.
func (s *DirStore) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete artifact %s: %w", name, err)
	}
	return nil
}

// resolve rejects names that would escape the root.
func (s *DirStore) resolve(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return filepath.Join(s.root, clean), nil
}
