package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/cado/pkg/adapters/file"
	"github.com/aretw0/cado/pkg/domain"
	"github.com/aretw0/cado/pkg/persistence"
	"github.com/aretw0/cado/pkg/persistence/middleware"
	"github.com/aretw0/cado/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunNotebookStoreContract(t, store)
}

func TestFileStore_Layout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store := file.New(dir)
	ctx := context.Background()

	nb := domain.NewNotebook("layout")
	require.NoError(t, store.Save(ctx, nb))
	require.NoError(t, store.Save(ctx, nb), "overwrite must succeed")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, nb.ID+".cado", entries[0].Name())

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{nb.ID}, ids)
}

func TestFileStore_EmptyDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_RejectsBadIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "../escape", `a\b`, ".."} {
		_, err := store.Load(ctx, id)
		assert.Error(t, err, "id %q", id)
		assert.NotErrorIs(t, err, domain.ErrNotebookNotFound)
	}
}

func TestFileStore_VersionMismatch(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.cado"), []byte(`{"id":"old","version":7,"cells":[]}`), 0o644))

	_, err := store.Load(context.Background(), "old")
	require.ErrorIs(t, err, domain.ErrUnsupportedVersion)
}

func TestFileStore_WithCodec(t *testing.T) {
	dir := t.TempDir()
	key := make([]byte, 32)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	require.NoError(t, err)
	store := file.New(dir, file.WithCodec(enc(persistence.JSONCodec{})))

	nb := domain.NewNotebook("top secret name")
	require.NoError(t, store.Save(context.Background(), nb))

	raw, err := os.ReadFile(filepath.Join(dir, nb.ID+".cado"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "top secret name")

	loaded, err := store.Load(context.Background(), nb.ID)
	require.NoError(t, err)
	assert.Equal(t, "top secret name", loaded.Name)
}
