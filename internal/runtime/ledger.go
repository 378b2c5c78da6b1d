package runtime

import (
	"context"
	"slices"

	"github.com/aretw0/cado/pkg/domain"
)

// SetCode replaces the cell's code. The cell and all of its descendants expire.
func (e *Engine) SetCode(ctx context.Context, id, code string) error {
	c, err := e.Cell(id)
	if err != nil {
		return err
	}
	c.Code = code
	e.clear(ctx, c)
	return nil
}

// SetLanguage changes the language tag. The cell and all of its descendants expire.
func (e *Engine) SetLanguage(ctx context.Context, id string, lang domain.Language) error {
	c, err := e.Cell(id)
	if err != nil {
		return err
	}
	c.Language = lang
	e.clear(ctx, c)
	return nil
}

// SetOutputName declares the name other cells use to reference this cell.
//
// A name held by another cell puts the cell in ERROR with an empty output
// name. Otherwise the cell expires together with the children of both the
// old and the new name. An empty name is always accepted.
func (e *Engine) SetOutputName(ctx context.Context, id, name string) error {
	c, err := e.Cell(id)
	if err != nil {
		return err
	}

	if name != "" {
		if holder := e.producer(name); holder != nil && holder.ID != c.ID {
			c.OutputName = ""
			c.Fail(domain.ErrDuplicateOutputName.Error())
			e.logger.Debug("duplicate output name", "cell_id", c.ID, "name", name, "holder", holder.ID)
			return &domain.CellError{CellID: c.ID, Err: domain.ErrDuplicateOutputName}
		}
		if err := e.checkRenameCycle(c, name); err != nil {
			return err
		}
	}

	oldChildren := e.ChildrenOf(c)
	c.OutputName = name

	visited := make(map[string]bool)
	e.clearFrom(ctx, c, visited)
	for _, child := range oldChildren {
		e.clearFrom(ctx, child, visited)
	}
	return nil
}

// SetInputNames replaces the cell's input names.
//
// Validation runs before anything is committed: a name no cell produces
// puts the cell in ERROR with its inputs reset, a name that would close a
// cycle is rejected and leaves the notebook untouched.
func (e *Engine) SetInputNames(ctx context.Context, id string, names []string) error {
	c, err := e.Cell(id)
	if err != nil {
		return err
	}
	proposed := slices.Clone(names)
	if proposed == nil {
		proposed = []string{}
	}

	for _, name := range proposed {
		if e.producer(name) == nil {
			c.InputNames = []string{}
			c.Fail((&domain.UnknownInputError{CellID: c.ID, Name: name}).Error())
			e.logger.Debug("unknown input", "cell_id", c.ID, "name", name)
			return &domain.UnknownInputError{CellID: c.ID, Name: name}
		}
	}

	if err := e.checkInputCycle(c, proposed); err != nil {
		e.logger.Debug("cycle rejected", "cell_id", c.ID, "inputs", proposed)
		return err
	}

	c.InputNames = proposed
	e.clear(ctx, c)
	return nil
}

// ClearCell expires the cell and every cell downstream of it.
func (e *Engine) ClearCell(ctx context.Context, id string) error {
	c, err := e.Cell(id)
	if err != nil {
		return err
	}
	e.clear(ctx, c)
	return nil
}

func (e *Engine) clear(ctx context.Context, c *domain.Cell) {
	e.clearFrom(ctx, c, make(map[string]bool))
}

// clearFrom expires c and its descendants. The visited set makes it
// terminate even if the graph were somehow cyclic.
func (e *Engine) clearFrom(ctx context.Context, c *domain.Cell, visited map[string]bool) {
	if visited[c.ID] {
		return
	}
	visited[c.ID] = true

	c.Expire()
	if e.hooks.OnCellCleared != nil {
		e.hooks.OnCellCleared(ctx, e.event(domain.EventCellCleared, c))
	}

	for _, child := range e.ChildrenOf(c) {
		e.clearFrom(ctx, child, visited)
	}
}
