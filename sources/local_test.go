package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-mc/lantern/core"
)

const testCatalogTOML = `
name = "server-pack"

[[entry]]
id = "gravestones"
name = "Gravestones Reborn"
author = "someone"
summary = "Keeps your stuff on death"
category = "mod"
version = "2.1.0"
game-versions = ["1.21.1"]
loaders = ["fabric"]
url = "https://files.example.com/gravestones-2.1.0.jar"
hash-format = "sha256"
hash = "aabbcc"
dependencies = ["trinket-lib"]

[[entry]]
id = "trinket-lib"
name = "Trinket Lib"
category = "mod"
url = "https://files.example.com/trinket-lib.jar"

[[entry]]
id = "night-shader"
name = "Night Shader"
category = "shader"
url = "https://files.example.com/night-shader.zip"
`

func writeTestCatalog(t *testing.T) *LocalProvider {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server-pack.toml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogTOML), 0644))
	provider, err := LoadLocalProvider(path)
	require.NoError(t, err)
	return provider
}

func TestLocalProviderName(t *testing.T) {
	provider := writeTestCatalog(t)
	assert.Equal(t, "local:server-pack", provider.Name())
}

func TestLocalSearchSubstring(t *testing.T) {
	provider := writeTestCatalog(t)

	// Case-insensitive substring match on the entry name.
	page, err := provider.Search(context.Background(), core.NewCatalogFilters("GRAVE", core.CategoryMod))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "gravestones", page.Items[0].ID)
	assert.Equal(t, "local:server-pack", page.Items[0].Source)

	// Empty query matches every entry of the category.
	page, err = provider.Search(context.Background(), core.NewCatalogFilters("", core.CategoryMod))
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Total)

	// Category filters apply before the name match.
	page, err = provider.Search(context.Background(), core.NewCatalogFilters("night", core.CategoryShader))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "night-shader", page.Items[0].ID)

	page, err = provider.Search(context.Background(), core.NewCatalogFilters("night", core.CategoryMod))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestLocalResolve(t *testing.T) {
	provider := writeTestCatalog(t)

	deps, err := provider.Resolve(context.Background(), "gravestones", "")
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "trinket-lib", deps[0].ID)
	assert.Equal(t, "local:server-pack", deps[0].Source)
	assert.True(t, deps[0].Required)

	// A dependency id missing from the catalog is unresolvable.
	broken := NewLocalProvider("local:broken", []localEntry{
		{ID: "a", Name: "A", Dependencies: []string{"missing"}},
	})
	_, err = broken.Resolve(context.Background(), "a", "")
	assert.ErrorIs(t, err, core.ErrDependencyUnresolved)
}

func TestLocalDownload(t *testing.T) {
	provider := writeTestCatalog(t)

	artifact, err := provider.Download(context.Background(), "gravestones", "")
	require.NoError(t, err)
	assert.Equal(t, "gravestones-2.1.0.jar", artifact.FileName)
	assert.Equal(t, "https://files.example.com/gravestones-2.1.0.jar", artifact.URL)
	assert.Equal(t, "sha256", artifact.HashFormat)
	assert.Equal(t, "aabbcc", artifact.Hash)

	_, err = provider.Download(context.Background(), "nope", "")
	assert.ErrorIs(t, err, core.ErrNotFound)

	noURL := NewLocalProvider("local:nourl", []localEntry{{ID: "a", Name: "A"}})
	_, err = noURL.Download(context.Background(), "a", "")
	assert.ErrorIs(t, err, core.ErrDownloadUnavailable)
}

func TestLocalDetails(t *testing.T) {
	provider := writeTestCatalog(t)

	item := core.CatalogItem{Source: "local:server-pack", ID: "gravestones"}
	details, err := provider.Details(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "Gravestones Reborn", details.Name)
	require.Len(t, details.Versions, 1)
	assert.Equal(t, "2.1.0", details.Versions[0].ID)
	require.Len(t, details.Dependencies, 1)
	assert.Equal(t, "trinket-lib", details.Dependencies[0].ID)
}
