// Package loam stores notebooks as JSON documents of a loam repository.
//
// Each notebook is the document <id>.json. The persistence codec still
// shapes the document, so encryption and redaction middleware apply, but
// it must produce a JSON object.
package loam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/aretw0/cado/pkg/persistence"
	"github.com/aretw0/loam"
)

const docExt = ".json"

// ErrNotJSON is returned when the configured codec does not write JSON objects.
var ErrNotJSON = errors.New("loam store needs a codec that writes JSON objects")

// Store implements ports.NotebookStore on top of a loam repository.
type Store struct {
	BasePath string
	repo     *loam.TypedRepository[map[string]any]
	codec    persistence.Codec
	mu       sync.Mutex
}

// Option configures the Store.
type Option func(*Store)

// WithCodec replaces the document codec, e.g. to add encryption middleware.
func WithCodec(c persistence.Codec) Option {
	return func(s *Store) {
		s.codec = c
	}
}

// New opens (or creates) a loam repository in dir. Versioning is disabled:
// every save overwrites the document in place.
func New(dir string, opts ...Option) (*Store, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure notebook directory: %w", err)
	}

	// Strict mode keeps integers as json.Number instead of float64.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithVersioning(false),
		loam.WithForceTemp(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	s := &Store{
		BasePath: absPath,
		repo:     loam.NewTypedRepository[map[string]any](repo),
		codec:    persistence.JSONCodec{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func docID(id string) (string, error) {
	if id == "" {
		return "", errors.New("notebook id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid notebook id %q", id)
	}
	return id + docExt, nil
}

func (s *Store) exists(doc string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.BasePath, doc))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Save encodes the notebook with the codec and writes it as a document.
func (s *Store) Save(ctx context.Context, nb *domain.Notebook) error {
	doc, err := docID(nb.ID)
	if err != nil {
		return err
	}

	data, err := s.codec.Marshal(nb)
	if err != nil {
		return fmt.Errorf("failed to marshal notebook: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return ErrNotJSON
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Save(ctx, &loam.DocumentModel[map[string]any]{
		ID:   doc,
		Data: fields,
	}); err != nil {
		return fmt.Errorf("loam save failed for %s: %w", nb.ID, err)
	}
	return nil
}

// Load reads a document and decodes it with the codec.
func (s *Store) Load(ctx context.Context, id string) (*domain.Notebook, error) {
	doc, err := docID(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.exists(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to stat notebook %s: %w", id, err)
	}
	if !ok {
		return nil, domain.ErrNotebookNotFound
	}

	model, err := s.repo.Get(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	data, err := json.Marshal(model.Data)
	if err != nil {
		return nil, fmt.Errorf("notebook %s: %w", id, err)
	}
	nb, err := s.codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("notebook %s: %w", id, err)
	}
	return nb, nil
}

// Delete removes the document file. Deleting an unknown notebook is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	doc, err := docID(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(filepath.Join(s.BasePath, doc)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete notebook %s: %w", id, err)
	}
	return nil
}

// List returns the IDs of the notebook documents in the repository.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	ids := []string{}
	seen := make(map[string]bool)
	for _, d := range docs {
		name := path.Base(filepath.ToSlash(d.ID))
		if !strings.HasSuffix(name, docExt) {
			name += docExt
		}
		id := strings.TrimSuffix(name, docExt)
		if seen[id] {
			continue
		}
		// The repository may still index documents removed by Delete.
		if ok, err := s.exists(name); err != nil || !ok {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
