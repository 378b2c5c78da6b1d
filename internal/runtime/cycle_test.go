package runtime

import (
	"testing"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetInputNames_RejectsCycles(t *testing.T) {
	tests := []struct {
		name   string
		target string
		inputs []string
	}{
		{"self reference", "a", []string{"a"}},
		{"direct", "a", []string{"b"}},
		{"transitive", "a", []string{"c"}},
		{"mixed with valid input", "a", []string{"x", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			addCell(t, e, "x = 1", "x")
			a := addCell(t, e, "a = 1", "a")
			b := addCell(t, e, "b = a", "b", "a")
			c := addCell(t, e, "c = b", "c", "b")
			require.NoError(t, e.RunCell(t.Context(), c.ID))
			before := e.Notebook().Snapshot()

			target := e.producer(tt.target)
			err := e.SetInputNames(t.Context(), target.ID, tt.inputs)

			require.ErrorIs(t, err, domain.ErrCycleDetected)
			assert.Equal(t, before, e.Notebook(), "a rejected mutation changes nothing")
			assert.Equal(t, domain.StatusOK, b.Status)
			assert.Equal(t, domain.StatusOK, a.Status)
		})
	}
}

func TestSetInputNames_AcceptsDiamond(t *testing.T) {
	e, _ := newTestEngine(t)
	addCell(t, e, "a = 1", "a")
	addCell(t, e, "b = a", "b", "a")
	addCell(t, e, "c = a", "c", "a")
	d := addCell(t, e, "d = b + c", "d")

	require.NoError(t, e.SetInputNames(t.Context(), d.ID, []string{"b", "c"}))
	assert.Equal(t, []string{"b", "c"}, d.InputNames)
}

func TestSetOutputName_RejectsCycles(t *testing.T) {
	e, _ := newTestEngine(t)
	a := addCell(t, e, "a = 1", "a")
	b := addCell(t, e, "b = a", "b", "a")
	// c waits on a name nobody produces yet.
	c := addCell(t, e, "c = 1", "c")
	c.InputNames = []string{"later"}

	err := e.SetOutputName(t.Context(), a.ID, "later")
	require.NoError(t, err, "c is not upstream of a")

	// Now a feeds c. Naming b "later" would make c both upstream and downstream.
	require.NoError(t, e.SetOutputName(t.Context(), a.ID, "a"))
	require.NoError(t, e.SetInputNames(t.Context(), a.ID, []string{"c"}))
	err = e.SetOutputName(t.Context(), b.ID, "later")
	require.ErrorIs(t, err, domain.ErrCycleDetected)
	assert.Equal(t, "b", b.OutputName)

	// Declaring a name the cell itself consumes is a self reference.
	d := addCell(t, e, "d = 1", "")
	d.InputNames = []string{"free"}
	require.ErrorIs(t, e.SetOutputName(t.Context(), d.ID, "free"), domain.ErrCycleDetected)
}
