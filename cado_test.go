package cado_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cado"
	"github.com/aretw0/cado/pkg/adapters/hcl"
	"github.com/aretw0/cado/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...cado.Option) *cado.Engine {
	t.Helper()
	opts = append([]cado.Option{cado.WithEvaluator(hcl.New())}, opts...)
	return cado.New(domain.NewNotebook("test"), opts...)
}

func TestEngine_ConcreteScenario(t *testing.T) {
	ctx := t.Context()
	eng := newEngine(t)

	a := eng.AddCell(nil)
	_, err := eng.SetCellCode(ctx, a.ID, "a = 4 + 5")
	require.NoError(t, err)
	_, err = eng.UpdateCellOutputName(ctx, a.ID, "a")
	require.NoError(t, err)

	b := eng.AddCell(nil)
	_, err = eng.SetCellCode(ctx, b.ID, "b = a * 2")
	require.NoError(t, err)
	_, err = eng.UpdateCellOutputName(ctx, b.ID, "b")
	require.NoError(t, err)
	_, err = eng.UpdateCellInputNames(ctx, b.ID, []string{"a"})
	require.NoError(t, err)

	cell, err := eng.RunCell(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, cell.Status)
	assert.Equal(t, int64(18), cell.Output)

	got, err := eng.Cell(a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.Output)

	// Editing a expires both cells.
	_, err = eng.SetCellCode(ctx, a.ID, "a = 1")
	require.NoError(t, err)
	for _, c := range eng.Notebook().Cells {
		assert.Equal(t, domain.StatusExpired, c.Status)
		assert.Nil(t, c.Output)
	}

	_, err = eng.RunCell(ctx, a.ID)
	require.NoError(t, err)
	got, err = eng.Cell(b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Output)
}

func TestEngine_SnapshotsAreIsolated(t *testing.T) {
	eng := newEngine(t)
	c := eng.AddCell(nil)
	c.Code = "mutated"

	nb := eng.Notebook()
	nb.Cells[0].InputNames = append(nb.Cells[0].InputNames, "x")
	nb.Name = "changed"

	fresh := eng.Notebook()
	assert.Empty(t, fresh.Cells[0].Code)
	assert.Empty(t, fresh.Cells[0].InputNames)
	assert.Equal(t, "test", fresh.Name)
}

func TestEngine_TypedFailuresReturnCell(t *testing.T) {
	ctx := t.Context()
	eng := newEngine(t)
	a := eng.AddCell(nil)
	_, err := eng.UpdateCellOutputName(ctx, a.ID, "a")
	require.NoError(t, err)
	b := eng.AddCell(nil)

	cell, err := eng.UpdateCellOutputName(ctx, b.ID, "a")
	require.ErrorIs(t, err, domain.ErrDuplicateOutputName)
	require.NotNil(t, cell)
	assert.Equal(t, domain.StatusError, cell.Status)
	assert.Empty(t, cell.OutputName)

	cell, err = eng.UpdateCellInputNames(ctx, b.ID, []string{"ghost"})
	require.ErrorIs(t, err, domain.ErrUnknownInput)
	assert.Equal(t, []string{}, cell.InputNames)

	cell, err = eng.RunCell(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, cell)
}

func TestEngine_NotebookOperations(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	eng := newEngine(t, cado.WithClock(func() time.Time { return now }))

	a := eng.AddCell(nil)
	b := eng.AddCell(nil)
	require.NoError(t, eng.ReorderCells([]string{b.ID, a.ID}))
	eng.UpdateNotebookName("renamed")
	require.NoError(t, eng.DeleteCell(b.ID))

	nb := eng.Notebook()
	assert.Equal(t, "renamed", nb.Name)
	assert.Equal(t, now, nb.Updated)
	require.Len(t, nb.Cells, 1)
	assert.Equal(t, a.ID, nb.Cells[0].ID)

	require.ErrorIs(t, eng.DeleteCell(b.ID), domain.ErrNotFound)
	require.ErrorIs(t, eng.ReorderCells([]string{"x"}), domain.ErrInvalidReorder)
}

func TestEngine_UpdatedMovesOnlyOnChange(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	eng := newEngine(t, cado.WithClock(func() time.Time { return now }))

	a := eng.AddCell(nil)
	_, err := eng.UpdateCellOutputName(ctx, a.ID, "a")
	require.NoError(t, err)
	b := eng.AddCell(nil)
	_, err = eng.UpdateCellOutputName(ctx, b.ID, "b")
	require.NoError(t, err)
	_, err = eng.UpdateCellInputNames(ctx, b.ID, []string{"a"})
	require.NoError(t, err)
	stamped := eng.Notebook().Updated
	require.Equal(t, now, stamped)

	now = now.Add(time.Hour)

	_, err = eng.UpdateCellInputNames(ctx, a.ID, []string{"b"})
	require.ErrorIs(t, err, domain.ErrCycleDetected)
	require.ErrorIs(t, eng.ReorderCells([]string{"x"}), domain.ErrInvalidReorder)
	require.NoError(t, eng.ReorderCells([]string{a.ID, b.ID}))
	eng.UpdateNotebookName("test")
	assert.Equal(t, stamped, eng.Notebook().Updated, "rejected and no-op commands keep Updated")

	_, err = eng.UpdateCellInputNames(ctx, b.ID, []string{"ghost"})
	require.ErrorIs(t, err, domain.ErrUnknownInput)
	assert.Equal(t, now, eng.Notebook().Updated, "a failure that changed the cell moves Updated")
}

func TestEngine_RunAllAndHooks(t *testing.T) {
	ctx := t.Context()
	var finished []string
	hooks := domain.LifecycleHooks{
		OnCellFinish: func(_ context.Context, ev *domain.CellEvent) {
			finished = append(finished, ev.OutputName)
		},
	}
	eng := newEngine(t, cado.WithLifecycleHooks(hooks), cado.WithEvalTimeout(time.Second))

	x := eng.AddCell(nil)
	y := eng.AddCell(nil)
	_, _ = eng.SetCellCode(ctx, y.ID, "y = x + 1")
	_, _ = eng.UpdateCellOutputName(ctx, y.ID, "y")
	_, _ = eng.SetCellCode(ctx, x.ID, "x = 1")
	_, _ = eng.UpdateCellOutputName(ctx, x.ID, "x")
	_, err := eng.UpdateCellInputNames(ctx, y.ID, []string{"x"})
	require.NoError(t, err)

	require.NoError(t, eng.RunAll(ctx))
	assert.Equal(t, []string{"x", "y"}, finished)

	cell, err := eng.ClearCell(ctx, x.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, cell.Status)

	unresolved, err := eng.Unresolved(y.ID)
	require.NoError(t, err)
	assert.Empty(t, unresolved)
}

func TestEngine_NilNotebook(t *testing.T) {
	eng := cado.New(nil)
	assert.NotEmpty(t, eng.Notebook().ID)
	assert.Empty(t, eng.Notebook().Cells)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, cado.Version)
}
