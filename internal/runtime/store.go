package runtime

import (
	"fmt"

	"github.com/aretw0/cado/pkg/domain"
)

// Cell returns the cell with the given id.
func (e *Engine) Cell(id string) (*domain.Cell, error) {
	for _, c := range e.nb.Cells {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.NotFound(id)
}

// AddCell inserts a new expired cell at index, or at the end when index is nil.
// Out-of-range indexes are clamped.
func (e *Engine) AddCell(index *int) *domain.Cell {
	c := domain.NewCell()

	pos := len(e.nb.Cells)
	if index != nil {
		pos = min(max(*index, 0), len(e.nb.Cells))
	}

	e.nb.Cells = append(e.nb.Cells, nil)
	copy(e.nb.Cells[pos+1:], e.nb.Cells[pos:])
	e.nb.Cells[pos] = c

	e.logger.Debug("cell added", "cell_id", c.ID, "index", pos)
	return c
}

// DeleteCell removes a cell. Dependents keep referencing its former output
// name and become unresolved the next time they run.
func (e *Engine) DeleteCell(id string) error {
	idx := e.nb.IndexOf(id)
	if idx < 0 {
		return domain.NotFound(id)
	}
	e.nb.Cells = append(e.nb.Cells[:idx], e.nb.Cells[idx+1:]...)
	e.logger.Debug("cell deleted", "cell_id", id)
	return nil
}

// ReorderCells changes the display order. ids must be a permutation of the
// current cell ids. No status changes.
func (e *Engine) ReorderCells(ids []string) error {
	if len(ids) != len(e.nb.Cells) {
		return fmt.Errorf("%w: got %d ids for %d cells", domain.ErrInvalidReorder, len(ids), len(e.nb.Cells))
	}

	byID := make(map[string]*domain.Cell, len(e.nb.Cells))
	for _, c := range e.nb.Cells {
		byID[c.ID] = c
	}

	reordered := make([]*domain.Cell, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown or repeated id %q", domain.ErrInvalidReorder, id)
		}
		delete(byID, id)
		reordered = append(reordered, c)
	}

	e.nb.Cells = reordered
	return nil
}
