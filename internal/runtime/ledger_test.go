package runtime

import (
	"context"
	"testing"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds a -> b -> c and runs it to OK.
func chain(t *testing.T) (*Engine, *domain.Cell, *domain.Cell, *domain.Cell) {
	t.Helper()
	e, _ := newTestEngine(t)
	a := addCell(t, e, "a = 1", "a")
	b := addCell(t, e, "b = a + 1", "b", "a")
	c := addCell(t, e, "c = b + 1", "c", "b")
	require.NoError(t, e.RunCell(t.Context(), a.ID))
	require.Equal(t, 3, c.Output)
	return e, a, b, c
}

func assertExpired(t *testing.T, cells ...*domain.Cell) {
	t.Helper()
	for _, c := range cells {
		assert.Equal(t, domain.StatusExpired, c.Status, "cell %s", c.OutputName)
		assert.Nil(t, c.Output)
		assert.Empty(t, c.Stdout)
		assert.Empty(t, c.Stderr)
	}
}

func TestSetCode_ExpiresDescendants(t *testing.T) {
	e, a, b, c := chain(t)
	unrelated := addCell(t, e, "z = 7", "z")
	require.NoError(t, e.RunCell(t.Context(), unrelated.ID))

	require.NoError(t, e.SetCode(t.Context(), b.ID, "b = a + 10"))

	assert.Equal(t, domain.StatusOK, a.Status)
	assertExpired(t, b, c)
	assert.Equal(t, domain.StatusOK, unrelated.Status)
}

func TestSetLanguage_ExpiresDescendants(t *testing.T) {
	e, a, b, c := chain(t)

	require.NoError(t, e.SetLanguage(t.Context(), a.ID, domain.LanguagePython))

	assert.Equal(t, domain.LanguagePython, a.Language)
	assertExpired(t, a, b, c)
}

func TestClearCell(t *testing.T) {
	e, a, b, c := chain(t)

	var cleared []string
	e.hooks.OnCellCleared = func(_ context.Context, ev *domain.CellEvent) {
		cleared = append(cleared, ev.OutputName)
	}

	require.NoError(t, e.ClearCell(t.Context(), b.ID))
	assert.Equal(t, domain.StatusOK, a.Status)
	assertExpired(t, b, c)
	assert.Equal(t, []string{"b", "c"}, cleared)

	require.ErrorIs(t, e.ClearCell(t.Context(), "nope"), domain.ErrNotFound)
}

func TestClearCell_TerminatesOnMalformedGraph(t *testing.T) {
	e, _ := newTestEngine(t)
	a := addCell(t, e, "a = b", "a")
	b := addCell(t, e, "b = a", "b", "a")
	// Forced loop that the ledger would never accept.
	a.InputNames = []string{"b"}

	require.NoError(t, e.ClearCell(t.Context(), a.ID))
	assertExpired(t, a, b)
}

func TestSetOutputName_Duplicate(t *testing.T) {
	e, a, b, c := chain(t)

	err := e.SetOutputName(t.Context(), c.ID, "a")

	require.ErrorIs(t, err, domain.ErrDuplicateOutputName)
	assert.Equal(t, domain.StatusError, c.Status)
	assert.Empty(t, c.OutputName)
	assert.Nil(t, c.Output)
	assert.Equal(t, "a", a.OutputName)
	assert.Equal(t, domain.StatusOK, a.Status, "the holder is untouched")
	assert.Equal(t, domain.StatusOK, b.Status)
	assert.Empty(t, e.Unresolved(c), "inputs are kept")
}

func TestSetOutputName_SameNameIsNotDuplicate(t *testing.T) {
	e, a, b, c := chain(t)

	require.NoError(t, e.SetOutputName(t.Context(), b.ID, "b"))
	assert.Equal(t, "b", b.OutputName)
	assertExpired(t, b, c)
	assert.Equal(t, domain.StatusOK, a.Status)
}

func TestSetOutputName_ExpiresOldAndNewChildren(t *testing.T) {
	e, a, b, c := chain(t)
	waiting := addCell(t, e, "w = 1", "w")
	waiting.InputNames = []string{"renamed"}
	waiting.Status = domain.StatusOK
	waiting.Output = 1

	require.NoError(t, e.SetOutputName(t.Context(), b.ID, "renamed"))

	assert.Equal(t, domain.StatusOK, a.Status)
	assertExpired(t, b, c, waiting)
	assert.Equal(t, []string{"b"}, e.Unresolved(c))
	assert.Empty(t, e.Unresolved(waiting))
}

func TestSetOutputName_Empty(t *testing.T) {
	e, _, b, c := chain(t)
	d := addCell(t, e, "d = 1", "")

	require.NoError(t, e.SetOutputName(t.Context(), b.ID, ""))
	require.NoError(t, e.SetOutputName(t.Context(), d.ID, ""), "empty names never collide")
	assertExpired(t, b, c)
	assert.Equal(t, []string{"b"}, e.Unresolved(c))
}

func TestSetInputNames_Unknown(t *testing.T) {
	e, a, b, c := chain(t)

	err := e.SetInputNames(t.Context(), c.ID, []string{"a", "ghost"})

	var uerr *domain.UnknownInputError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "ghost", uerr.Name)
	assert.Equal(t, c.ID, uerr.CellID)
	require.ErrorIs(t, err, domain.ErrUnknownInput)

	assert.Equal(t, domain.StatusError, c.Status)
	assert.Equal(t, []string{}, c.InputNames)
	assert.Equal(t, domain.StatusOK, a.Status)
	assert.Equal(t, domain.StatusOK, b.Status)
}

func TestSetInputNames_UnknownIsCheckedBeforeCycle(t *testing.T) {
	e, a, _, _ := chain(t)

	err := e.SetInputNames(t.Context(), a.ID, []string{"c", "ghost"})
	require.ErrorIs(t, err, domain.ErrUnknownInput)
	require.NotErrorIs(t, err, domain.ErrCycleDetected)
}

func TestSetInputNames_CommitsAndExpires(t *testing.T) {
	e, a, b, c := chain(t)
	x := addCell(t, e, "x = 5", "x")
	require.NoError(t, e.RunCell(t.Context(), x.ID))

	in := []string{"x"}
	require.NoError(t, e.SetInputNames(t.Context(), b.ID, in))
	in[0] = "mutated"

	assert.Equal(t, []string{"x"}, b.InputNames, "input slice is copied")
	assert.Equal(t, domain.StatusOK, a.Status)
	assert.Equal(t, domain.StatusOK, x.Status)
	assertExpired(t, b, c)
	assert.Empty(t, e.ChildrenOf(a))
}

func TestLedger_NotFound(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := t.Context()

	require.ErrorIs(t, e.SetCode(ctx, "x", "a = 1"), domain.ErrNotFound)
	require.ErrorIs(t, e.SetOutputName(ctx, "x", "a"), domain.ErrNotFound)
	require.ErrorIs(t, e.SetInputNames(ctx, "x", nil), domain.ErrNotFound)
	require.ErrorIs(t, e.SetLanguage(ctx, "x", domain.LanguageShell), domain.ErrNotFound)
}
