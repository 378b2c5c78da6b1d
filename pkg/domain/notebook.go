package domain

import (
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the document version written by this build.
// Loading any other version fails with ErrUnsupportedVersion.
const SchemaVersion = 1

// Notebook is the document: an ordered collection of cells.
// It owns every Cell exclusively; cells are addressed by ID, never by pointer
// from other cells.
type Notebook struct {
	ID      string    `json:"id" yaml:"id"`
	Name    string    `json:"name" yaml:"name"`
	Version int       `json:"version" yaml:"version"`
	Created time.Time `json:"created" yaml:"created"`
	Updated time.Time `json:"updated" yaml:"updated"`
	Cells   []*Cell   `json:"cells" yaml:"cells"`
}

// NotebookDetails is the summary used for listings.
type NotebookDetails struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// NewNotebook creates an empty notebook with a fresh identifier.
func NewNotebook(name string) *Notebook {
	now := time.Now().UTC()
	return &Notebook{
		ID:      uuid.NewString(),
		Name:    name,
		Version: SchemaVersion,
		Created: now,
		Updated: now,
		Cells:   []*Cell{},
	}
}

// Touch records a modification time.
func (n *Notebook) Touch(now time.Time) {
	n.Updated = now.UTC()
}

// Details returns the listing summary of the notebook.
func (n *Notebook) Details() NotebookDetails {
	return NotebookDetails{
		ID:      n.ID,
		Name:    n.Name,
		Created: n.Created,
		Updated: n.Updated,
	}
}

// IndexOf returns the position of the cell with the given id, or -1.
func (n *Notebook) IndexOf(id string) int {
	for i, c := range n.Cells {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Snapshot returns a deep copy of the notebook so callers cannot mutate the
// engine's state through the returned value.
func (n *Notebook) Snapshot() *Notebook {
	if n == nil {
		return nil
	}
	cp := *n
	cp.Cells = make([]*Cell, len(n.Cells))
	for i, c := range n.Cells {
		cp.Cells[i] = c.Clone()
	}
	return &cp
}
