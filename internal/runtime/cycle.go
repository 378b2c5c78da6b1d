package runtime

import "github.com/aretw0/cado/pkg/domain"

// checkInputCycle reports whether giving target the proposed inputs would
// make it its own ancestor. It walks backward from each proposed parent
// through the current input names and never mutates anything.
func (e *Engine) checkInputCycle(target *domain.Cell, inputs []string) error {
	visited := make(map[string]bool)
	for _, name := range inputs {
		parent := e.producer(name)
		if parent == nil {
			continue
		}
		if e.reaches(parent, target.ID, visited) {
			return &domain.CellError{CellID: target.ID, Err: domain.ErrCycleDetected}
		}
	}
	return nil
}

// checkRenameCycle reports whether declaring name as target's output would
// close a loop: some cell already waiting on name is an ancestor of target.
func (e *Engine) checkRenameCycle(target *domain.Cell, name string) error {
	if name == "" {
		return nil
	}
	if target.DependsOn(name) {
		return &domain.CellError{CellID: target.ID, Err: domain.ErrCycleDetected}
	}
	for _, c := range e.nb.Cells {
		if c.ID == target.ID || !c.DependsOn(name) {
			continue
		}
		// c would become a child of target; it must not already be upstream of it.
		if e.reaches(target, c.ID, make(map[string]bool)) {
			return &domain.CellError{CellID: target.ID, Err: domain.ErrCycleDetected}
		}
	}
	return nil
}

// reaches walks parent links backward from start and reports whether the
// cell with id goal is found.
func (e *Engine) reaches(start *domain.Cell, goal string, visited map[string]bool) bool {
	if start.ID == goal {
		return true
	}
	if visited[start.ID] {
		return false
	}
	visited[start.ID] = true
	for _, p := range e.ParentsOf(start) {
		if e.reaches(p, goal, visited) {
			return true
		}
	}
	return false
}
