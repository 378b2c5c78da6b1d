package runtime

import (
	"testing"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParentsAndChildren(t *testing.T) {
	e, _ := newTestEngine(t)
	a := addCell(t, e, "a = 1", "a")
	b := addCell(t, e, "b = 2", "b")
	c := addCell(t, e, "c = a + b", "c", "b", "a")
	d := addCell(t, e, "d = a", "d", "a")
	loose := addCell(t, e, "x = 1", "")

	assert.Equal(t, []*domain.Cell{a, b}, e.ParentsOf(c), "parents follow notebook order")
	assert.Equal(t, []*domain.Cell{c, d}, e.ChildrenOf(a))
	assert.Empty(t, e.ParentsOf(a))
	assert.Empty(t, e.ChildrenOf(loose), "a cell without output name has no children")

	// Reordering changes the order of the derived edges, not their existence.
	require.NoError(t, e.ReorderCells([]string{d.ID, c.ID, b.ID, a.ID, loose.ID}))
	assert.Equal(t, []*domain.Cell{b, a}, e.ParentsOf(c))
	assert.Equal(t, []*domain.Cell{d, c}, e.ChildrenOf(a))
}

func TestEdgesFollowRenames(t *testing.T) {
	e, _ := newTestEngine(t)
	a := addCell(t, e, "a = 1", "a")
	b := addCell(t, e, "b = a", "b", "a")

	require.NoError(t, e.SetOutputName(t.Context(), a.ID, "z"))
	assert.Empty(t, e.ParentsOf(b))
	assert.Equal(t, []string{"a"}, e.Unresolved(b))

	require.NoError(t, e.SetOutputName(t.Context(), a.ID, "a"))
	assert.Equal(t, []*domain.Cell{a}, e.ParentsOf(b))
	assert.Empty(t, e.Unresolved(b))
}
