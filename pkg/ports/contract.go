package ports

import (
	"context"
	"testing"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunNotebookStoreContract runs a suite of tests to verify that a NotebookStore
// implementation adheres to the defined interface contract.
func RunNotebookStoreContract(t *testing.T, store NotebookStore) {
	ctx := context.Background()

	newNotebook := func() *domain.Notebook {
		nb := domain.NewNotebook("contract")
		a := domain.NewCell()
		a.Code = "a = 4 + 5"
		a.OutputName = "a"
		a.Status = domain.StatusOK
		a.Output = "9"
		b := domain.NewCell()
		b.Code = "b = a * 2"
		b.OutputName = "b"
		b.InputNames = []string{"a"}
		nb.Cells = append(nb.Cells, a, b)
		return nb
	}

	t.Run("Save and Load", func(t *testing.T) {
		nb := newNotebook()

		err := store.Save(ctx, nb)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, nb.ID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, nb.ID, loaded.ID)
		assert.Equal(t, nb.Name, loaded.Name)
		require.Len(t, loaded.Cells, 2)
		assert.Equal(t, nb.Cells[0].ID, loaded.Cells[0].ID, "cell order must be preserved")
		assert.Equal(t, "a", loaded.Cells[0].OutputName)
		assert.Equal(t, domain.StatusOK, loaded.Cells[0].Status)
		assert.Equal(t, "9", loaded.Cells[0].Output)
		assert.Equal(t, []string{"a"}, loaded.Cells[1].InputNames)

		_ = store.Delete(ctx, nb.ID)
	})

	t.Run("Load Is Isolated From Caller Mutation", func(t *testing.T) {
		nb := newNotebook()
		require.NoError(t, store.Save(ctx, nb))
		defer func() { _ = store.Delete(ctx, nb.ID) }()

		nb.Cells[0].OutputName = "mutated"

		loaded, err := store.Load(ctx, nb.ID)
		require.NoError(t, err)
		assert.Equal(t, "a", loaded.Cells[0].OutputName)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-notebook")
		assert.ErrorIs(t, err, domain.ErrNotebookNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		nb := newNotebook()
		require.NoError(t, store.Save(ctx, nb))

		err := store.Delete(ctx, nb.ID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, nb.ID)
		assert.ErrorIs(t, err, domain.ErrNotebookNotFound, "Load after Delete should return ErrNotebookNotFound")
	})

	t.Run("List", func(t *testing.T) {
		nb1 := newNotebook()
		nb2 := newNotebook()
		require.NoError(t, store.Save(ctx, nb1))
		require.NoError(t, store.Save(ctx, nb2))
		defer func() {
			_ = store.Delete(ctx, nb1.ID)
			_ = store.Delete(ctx, nb2.ID)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, nb1.ID)
		assert.Contains(t, ids, nb2.ID)
	})
}
