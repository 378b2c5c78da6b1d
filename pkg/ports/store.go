package ports

import (
	"context"

	"github.com/aretw0/cado/pkg/domain"
)

// NotebookStore defines the interface for persisting notebooks.
type NotebookStore interface {
	// Save persists the notebook under its own ID.
	Save(ctx context.Context, nb *domain.Notebook) error

	// Load retrieves the notebook with the given ID.
	// Returns domain.ErrNotebookNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Notebook, error)

	// Delete removes the notebook. Deleting a missing notebook is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored notebooks.
	List(ctx context.Context) ([]string, error)
}
