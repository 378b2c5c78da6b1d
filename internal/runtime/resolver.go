package runtime

import "github.com/aretw0/cado/pkg/domain"

// The graph is never stored: parents and children are recomputed from the
// current names on every call, so renames can never leave stale edges.

// ParentsOf returns the other cells whose output name is one of c's inputs,
// in notebook order.
func (e *Engine) ParentsOf(c *domain.Cell) []*domain.Cell {
	var parents []*domain.Cell
	for _, other := range e.nb.Cells {
		if other.ID != c.ID && other.HasOutput() && c.DependsOn(other.OutputName) {
			parents = append(parents, other)
		}
	}
	return parents
}

// ChildrenOf returns the other cells that list c's output name as an input,
// in notebook order. A cell without an output name has no children.
func (e *Engine) ChildrenOf(c *domain.Cell) []*domain.Cell {
	if !c.HasOutput() {
		return nil
	}
	var children []*domain.Cell
	for _, other := range e.nb.Cells {
		if other.ID != c.ID && other.DependsOn(c.OutputName) {
			children = append(children, other)
		}
	}
	return children
}

// Unresolved returns c's input names that no cell currently produces.
func (e *Engine) Unresolved(c *domain.Cell) []string {
	var missing []string
	for _, name := range c.InputNames {
		if e.producer(name) == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// producer returns the cell declaring name as its output, or nil.
func (e *Engine) producer(name string) *domain.Cell {
	if name == "" {
		return nil
	}
	for _, c := range e.nb.Cells {
		if c.OutputName == name {
			return c
		}
	}
	return nil
}
