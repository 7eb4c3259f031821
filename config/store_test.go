package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-mc/lantern/core"
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "lantern.toml")
}

func TestStoreFiltersRoundTrip(t *testing.T) {
	path := storePath(t)

	store, err := NewStore(path)
	require.NoError(t, err)

	_, ok, err := store.LoadFilters()
	require.NoError(t, err)
	assert.False(t, ok)

	filters := core.NewCatalogFilters("sodium", core.CategoryMod)
	filters.GameVersion = "1.21.1"
	filters.Loader = "fabric"
	filters.Sort = core.SortUpdated
	filters.Page = 2
	require.NoError(t, store.SaveFilters(filters))

	// A fresh store reads the file back.
	reloaded, err := NewStore(path)
	require.NoError(t, err)
	got, ok, err := reloaded.LoadFilters()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filters, got)
}

func TestStoreSaveReplacesWholeObject(t *testing.T) {
	path := storePath(t)
	store, err := NewStore(path)
	require.NoError(t, err)

	first := core.NewCatalogFilters("sodium", core.CategoryMod)
	first.GameVersion = "1.21.1"
	require.NoError(t, store.SaveFilters(first))

	second := core.NewCatalogFilters("iris", core.CategoryShader)
	require.NoError(t, store.SaveFilters(second))

	got, ok, err := store.LoadFilters()
	require.NoError(t, err)
	require.True(t, ok)
	// The earlier game version does not bleed into the new object.
	assert.Empty(t, got.GameVersion)
	assert.Equal(t, "iris", got.Query)
}

func TestStoreMissingFile(t *testing.T) {
	store, err := NewStore(storePath(t))
	require.NoError(t, err)
	assert.Empty(t, store.InstanceDir())
	_, err = store.ActiveAccount()
	assert.Error(t, err)
}

func TestStoreSettings(t *testing.T) {
	path := storePath(t)
	store, err := NewStore(path)
	require.NoError(t, err)

	require.NoError(t, store.SetCurseforgeKey("user-key"))
	require.NoError(t, store.SetInstanceDir("/srv/mc"))
	require.NoError(t, store.SetAccount("steve"))

	reloaded, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, "user-key", reloaded.CurseforgeKey())
	assert.Equal(t, "/srv/mc", reloaded.InstanceDir())

	account, err := reloaded.ActiveAccount()
	require.NoError(t, err)
	assert.Equal(t, "steve", account.Username)
	assert.False(t, account.Online())
}
