package sources

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-mc/lantern/core"
)

func TestCurseforgeWithoutKey(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without an API key")
	})

	provider := NewCurseforgeProvider(testFetcher(t), "")
	provider.baseURL = srv.URL

	// Searches degrade to empty pages, never errors.
	page, err := provider.Search(context.Background(), core.NewCatalogFilters("jei", core.CategoryMod))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)

	// Details fall back to the summary already in hand.
	item := core.CatalogItem{Source: "curseforge", ID: "238222", Name: "JEI", Category: core.CategoryMod}
	details, err := provider.Details(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, item, details.CatalogItem)
	assert.Empty(t, details.Body)

	deps, err := provider.Resolve(context.Background(), "238222", "")
	require.NoError(t, err)
	assert.Empty(t, deps)

	_, err = provider.Download(context.Background(), "238222", "")
	assert.ErrorIs(t, err, core.ErrDownloadUnavailable)
}

func TestCurseforgeSearch(t *testing.T) {
	var gotClass, gotSort, gotKey, gotLoader string
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mods/search", r.URL.Path)
		gotKey = r.Header.Get("X-Api-Key")
		q := r.URL.Query()
		gotClass = q.Get("classId")
		gotSort = q.Get("sortField")
		gotLoader = q.Get("modLoaderType")

		fmt.Fprint(w, `{
			"data": [{
				"id": 238222,
				"name": "Just Enough Items",
				"slug": "jei",
				"summary": "View items and recipes",
				"downloadCount": 300000000,
				"dateModified": "2024-05-01T00:00:00Z",
				"authors": [{"name": "mezz"}],
				"logo": {"thumbnailUrl": "https://media.forgecdn.net/jei.png"},
				"links": {"websiteUrl": "https://www.curseforge.com/minecraft/mc-mods/jei"},
				"latestFilesIndexes": [
					{"gameVersion": "1.21.1", "modLoader": 1},
					{"gameVersion": "1.21.1", "modLoader": 6}
				]
			}],
			"pagination": {"index": 0, "pageSize": 12, "resultCount": 1, "totalCount": 1}
		}`)
	})

	provider := NewCurseforgeProvider(testFetcher(t), "test-key")
	provider.baseURL = srv.URL

	filters := core.NewCatalogFilters("jei", core.CategoryMod)
	filters.Loader = "Forge"

	page, err := provider.Search(context.Background(), filters)
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "6", gotClass)
	assert.Equal(t, "6", gotSort)
	assert.Equal(t, "1", gotLoader)

	require.Len(t, page.Items, 1)
	item := page.Items[0]
	assert.Equal(t, "curseforge", item.Source)
	assert.Equal(t, "238222", item.ID)
	assert.Equal(t, "mezz", item.Author)
	assert.Equal(t, uint64(300000000), item.Downloads)
	assert.Equal(t, []string{"1.21.1"}, item.GameVersions)
	assert.Equal(t, []string{"forge", "neoforge"}, item.Loaders)
	assert.False(t, page.HasMore)
}

func TestCurseforgeSearchModpackClass(t *testing.T) {
	var gotClass string
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotClass = r.URL.Query().Get("classId")
		fmt.Fprint(w, `{"data": [], "pagination": {"totalCount": 0}}`)
	})

	provider := NewCurseforgeProvider(testFetcher(t), "test-key")
	provider.baseURL = srv.URL

	_, err := provider.Search(context.Background(), core.NewCatalogFilters("", core.CategoryModpack))
	require.NoError(t, err)
	assert.Equal(t, "4471", gotClass)
}

func TestCurseforgeAddonsUnsupported(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an unsupported category")
	})

	provider := NewCurseforgeProvider(testFetcher(t), "test-key")
	provider.baseURL = srv.URL

	page, err := provider.Search(context.Background(), core.NewCatalogFilters("", core.CategoryAddon))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestCurseforgeDownload(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mods/238222/files/500", r.URL.Path)
		fmt.Fprint(w, `{"data": {
			"id": 500,
			"displayName": "jei-1.21.1",
			"fileName": "jei-1.21.1.jar",
			"downloadUrl": "https://edge.forgecdn.net/jei-1.21.1.jar",
			"hashes": [
				{"value": "md5hash", "algo": 2},
				{"value": "sha1hash", "algo": 1}
			],
			"dependencies": []
		}}`)
	})

	provider := NewCurseforgeProvider(testFetcher(t), "test-key")
	provider.baseURL = srv.URL

	artifact, err := provider.Download(context.Background(), "238222", "500")
	require.NoError(t, err)
	assert.Equal(t, "jei-1.21.1.jar", artifact.FileName)
	assert.Equal(t, "sha1", artifact.HashFormat)
	assert.Equal(t, "sha1hash", artifact.Hash)
}

func TestCurseforgeDownloadOptOut(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"id": 500, "fileName": "private.jar", "downloadUrl": ""}}`)
	})

	provider := NewCurseforgeProvider(testFetcher(t), "test-key")
	provider.baseURL = srv.URL

	_, err := provider.Download(context.Background(), "238222", "500")
	assert.ErrorIs(t, err, core.ErrDownloadUnavailable)
}

func TestCurseforgeResolve(t *testing.T) {
	srv := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {
			"id": 500,
			"fileName": "jei.jar",
			"downloadUrl": "https://edge.forgecdn.net/jei.jar",
			"dependencies": [
				{"modId": 1, "relationType": 3},
				{"modId": 2, "relationType": 2},
				{"modId": 3, "relationType": 1}
			]
		}}`)
	})

	provider := NewCurseforgeProvider(testFetcher(t), "test-key")
	provider.baseURL = srv.URL

	deps, err := provider.Resolve(context.Background(), "238222", "500")
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, "1", deps[0].ID)
	assert.True(t, deps[0].Required)
	assert.Equal(t, "2", deps[1].ID)
	assert.False(t, deps[1].Required)
}

func TestCurseforgeFileVersionSplitsLoaders(t *testing.T) {
	f := cfFile{
		ID:           500,
		DisplayName:  "jei-1.21.1",
		ReleaseType:  2,
		GameVersions: []string{"1.21.1", "Forge", "NeoForge"},
	}
	fv := f.toFileVersion()
	assert.Equal(t, "beta", fv.Channel)
	assert.Equal(t, []string{"1.21.1"}, fv.GameVersions)
	assert.Equal(t, []string{"forge", "neoforge"}, fv.Loaders)
}

func TestCurseforgeGameVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.21.1", "1.21.1"},
		{"1.19-pre1", "1.19-Snapshot"},
		{"1.18.2-rc1", "1.18.2-Snapshot"},
		{"1.16.5 Pre-Release 2", "1.16.5-Snapshot"},
		{"22w11a", "1.19-Snapshot"},
		{"21w37a", "1.18-Snapshot"},
		{"20w45a", "1.17-Snapshot"},
		{"20w06a", "1.16-Snapshot"},
		{"19w34a", "1.15-Snapshot"},
		{"19w02a", "19w02a"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CurseforgeGameVersion(tt.in))
		})
	}
}
