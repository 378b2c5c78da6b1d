// Package file stores notebooks as one document per file in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/aretw0/cado/pkg/persistence"
)

// DefaultDir is used when no directory is configured.
var DefaultDir = filepath.Join(".cado", "notebooks")

// Store implements ports.NotebookStore on the local filesystem.
// Each notebook is written to <dir>/<id>.cado.
type Store struct {
	BasePath string
	codec    persistence.Codec
}

// Option configures the Store.
type Option func(*Store)

// WithCodec replaces the document codec, e.g. to add encryption middleware.
func WithCodec(c persistence.Codec) Option {
	return func(s *Store) {
		s.codec = c
	}
}

// New creates a Store rooted at basePath (DefaultDir when empty).
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = DefaultDir
	}
	s := &Store{
		BasePath: basePath,
		codec:    persistence.JSONCodec{Indent: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(id string) (string, error) {
	if id == "" {
		return "", errors.New("notebook id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid notebook id %q", id)
	}
	return filepath.Join(s.BasePath, id+persistence.Extension), nil
}

// Save writes the notebook atomically: temp file, fsync, rename.
func (s *Store) Save(ctx context.Context, nb *domain.Notebook) error {
	destPath, err := s.path(nb.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure notebook directory: %w", err)
	}

	data, err := s.codec.Marshal(nb)
	if err != nil {
		return fmt.Errorf("failed to marshal notebook: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+nb.ID+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		// Windows refuses to rename over an existing file.
		if _, statErr := os.Stat(destPath); statErr == nil {
			if err := os.Remove(destPath); err != nil {
				return fmt.Errorf("failed to remove existing notebook file for overwrite: %w", err)
			}
			if err := os.Rename(tmpPath, destPath); err != nil {
				return fmt.Errorf("failed to rename temp file: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads and decodes a notebook.
func (s *Store) Load(ctx context.Context, id string) (*domain.Notebook, error) {
	filePath, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotebookNotFound
		}
		return nil, fmt.Errorf("failed to read notebook file: %w", err)
	}

	nb, err := s.codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("notebook %s: %w", id, err)
	}
	return nb, nil
}

// Delete removes the notebook file.
func (s *Store) Delete(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete notebook file: %w", err)
	}
	return nil
}

// List returns the IDs of all notebooks in the directory.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list notebooks: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != persistence.Extension || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, persistence.Extension))
	}
	sort.Strings(ids)
	return ids, nil
}
