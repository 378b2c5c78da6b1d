/*
Package cado is a notebook engine: an ordered collection of code cells that
reference each other's outputs by name, forming an implicit dependency graph
that is recomputed from the current names on every operation.

# Concept

Each cell declares an output name and a list of input names. A cell whose
input names another cell's output is that cell's child. The engine keeps the
graph acyclic, tracks which cached outputs are stale, and when a cell is run
it evaluates exactly what is needed: stale ancestors first, then the cell,
then every descendant that can now be refreshed.

Code is executed by an Evaluator chosen by the host. The engine never looks
inside cell code or output values.

# Cell status

	expired  the cached output is stale or absent
	running  the evaluator is working on the cell
	ok       the output is valid
	error    the last run failed or the cell is misconfigured

Editing a cell (code, language, input or output names) expires it together
with all of its descendants.

# Usage

	eng := cado.New(domain.NewNotebook("demo"), cado.WithEvaluator(hcl.New()))

	a := eng.AddCell(nil)
	eng.SetCellCode(ctx, a.ID, "a = 4 + 5")
	eng.UpdateCellOutputName(ctx, a.ID, "a")

	b := eng.AddCell(nil)
	eng.SetCellCode(ctx, b.ID, "b = a * 2")
	eng.UpdateCellOutputName(ctx, b.ID, "b")
	eng.UpdateCellInputNames(ctx, b.ID, []string{"a"})

	cell, err := eng.RunCell(ctx, b.ID) // runs a, then b; cell.Output == 18

An Engine is single-threaded. Hosts that serve several clients go through
pkg/session, which serializes commands per notebook and persists the result
through a ports.NotebookStore.
*/
package cado
