package domain

import (
	"reflect"
)

// NotebookDiff represents the changes between two snapshots of a notebook.
// It is designed to be serialized to JSON for partial updates on the client.
type NotebookDiff struct {
	// NotebookID is always present to identify the target.
	NotebookID string `json:"notebook_id"`

	// Name is set when the notebook was renamed.
	Name *string `json:"name,omitempty"`

	// Order holds the full list of cell ids when cells were added, removed or moved.
	Order []string `json:"order,omitempty"`

	// Cells contains cells that are new or whose fields changed.
	Cells []*Cell `json:"cells,omitempty"`

	// Removed lists ids of deleted cells.
	Removed []string `json:"removed,omitempty"`
}

// Diff calculates the difference between oldNb and newNb.
// If oldNb is nil, it returns a diff representing the entire newNb (initial load).
// It returns nil when nothing changed.
func Diff(oldNb, newNb *Notebook) *NotebookDiff {
	if newNb == nil {
		return nil
	}

	diff := &NotebookDiff{NotebookID: newNb.ID}

	if oldNb == nil || oldNb.Name != newNb.Name {
		diff.Name = &newNb.Name
	}

	oldCells := make(map[string]*Cell)
	var oldOrder []string
	if oldNb != nil {
		for _, c := range oldNb.Cells {
			oldCells[c.ID] = c
			oldOrder = append(oldOrder, c.ID)
		}
	}

	newOrder := make([]string, 0, len(newNb.Cells))
	seen := make(map[string]bool, len(newNb.Cells))
	for _, c := range newNb.Cells {
		newOrder = append(newOrder, c.ID)
		seen[c.ID] = true
		if prev, ok := oldCells[c.ID]; !ok || !sameCell(prev, c) {
			diff.Cells = append(diff.Cells, c.Clone())
		}
	}

	for _, id := range oldOrder {
		if !seen[id] {
			diff.Removed = append(diff.Removed, id)
		}
	}

	if !reflect.DeepEqual(oldOrder, newOrder) {
		diff.Order = newOrder
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func sameCell(a, b *Cell) bool {
	if a.Code != b.Code ||
		a.OutputName != b.OutputName ||
		a.Language != b.Language ||
		a.Status != b.Status ||
		a.Stdout != b.Stdout ||
		a.Stderr != b.Stderr ||
		a.Error != b.Error {
		return false
	}
	if len(a.InputNames) != len(b.InputNames) {
		return false
	}
	for i := range a.InputNames {
		if a.InputNames[i] != b.InputNames[i] {
			return false
		}
	}
	return reflect.DeepEqual(a.Output, b.Output)
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *NotebookDiff) IsEmpty() bool {
	return d.Name == nil &&
		len(d.Order) == 0 &&
		len(d.Cells) == 0 &&
		len(d.Removed) == 0
}
