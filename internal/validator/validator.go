package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/cado/pkg/domain"
)

// ValidateNotebook checks a loaded document for states the engine would
// never produce through its own commands: duplicate output names, inputs
// with no producer, self references and dependency cycles.
// Every problem is reported, not only the first.
func ValidateNotebook(nb *domain.Notebook) error {
	var errors []string

	producers := make(map[string]string)
	seen := make(map[string]bool)
	for _, c := range nb.Cells {
		if seen[c.ID] {
			errors = append(errors, fmt.Sprintf("Duplicate cell id '%s'", c.ID))
		}
		seen[c.ID] = true

		if !c.HasOutput() {
			continue
		}
		if other, ok := producers[c.OutputName]; ok {
			errors = append(errors, fmt.Sprintf("Output name '%s' declared by cells '%s' and '%s'", c.OutputName, other, c.ID))
			continue
		}
		producers[c.OutputName] = c.ID
	}

	for _, c := range nb.Cells {
		for _, in := range c.InputNames {
			producer, ok := producers[in]
			switch {
			case !ok:
				errors = append(errors, fmt.Sprintf("Cell '%s' reads unknown input '%s'", c.ID, in))
			case producer == c.ID:
				errors = append(errors, fmt.Sprintf("Cell '%s' reads its own output '%s'", c.ID, in))
			}
		}
	}

	for _, cycle := range findCycles(nb, producers) {
		errors = append(errors, fmt.Sprintf("Dependency cycle: %s", strings.Join(cycle, " -> ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}

	return nil
}

// findCycles returns one path per cycle found by a depth-first walk from
// every cell to its parents. Self references are reported separately.
func findCycles(nb *domain.Notebook, producers map[string]string) [][]string {
	const (
		unvisited = iota
		inProgress
		done
	)
	byID := make(map[string]*domain.Cell, len(nb.Cells))
	for _, c := range nb.Cells {
		byID[c.ID] = c
	}

	state := make(map[string]int)
	var cycles [][]string
	var path []string

	var walk func(id string)
	walk = func(id string) {
		state[id] = inProgress
		path = append(path, id)

		parents := make([]string, 0, len(byID[id].InputNames))
		for _, in := range byID[id].InputNames {
			if p, ok := producers[in]; ok && p != id {
				parents = append(parents, p)
			}
		}
		sort.Strings(parents)

		for _, p := range parents {
			switch state[p] {
			case unvisited:
				walk(p)
			case inProgress:
				start := indexOf(path, p)
				cycle := append(append([]string{}, path[start:]...), p)
				cycles = append(cycles, cycle)
			}
		}

		path = path[:len(path)-1]
		state[id] = done
	}

	for _, c := range nb.Cells {
		if state[c.ID] == unvisited {
			walk(c.ID)
		}
	}
	return cycles
}

func indexOf(path []string, id string) int {
	for i, p := range path {
		if p == id {
			return i
		}
	}
	return 0
}
