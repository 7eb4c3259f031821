package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogFiltersValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CatalogFilters)
		wantErr bool
	}{
		{"defaults are valid", func(f *CatalogFilters) {}, false},
		{"unknown category", func(f *CatalogFilters) { f.Category = "plugin" }, true},
		{"unknown sort", func(f *CatalogFilters) { f.Sort = "trending" }, true},
		{"negative page", func(f *CatalogFilters) { f.Page = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewCatalogFilters("sodium", CategoryMod)
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCatalogFiltersValidateClampsPageSize(t *testing.T) {
	f := NewCatalogFilters("sodium", CategoryMod)

	f.PageSize = 0
	assert.NoError(t, f.Validate())
	assert.Equal(t, DefaultPageSize, f.PageSize)

	f.PageSize = 500
	assert.NoError(t, f.Validate())
	assert.Equal(t, MaxPageSize, f.PageSize)
}

func TestOffsetAndNextPage(t *testing.T) {
	f := NewCatalogFilters("", CategoryMod)
	f.Page = 2
	f.PageSize = 10

	assert.Equal(t, 20, f.Offset())
	assert.True(t, HasNextPage(f, 31))
	assert.False(t, HasNextPage(f, 30))
}

func TestDetectLoader(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
		ok   bool
	}{
		{"single loader", []string{"fabric"}, "fabric", true},
		{"last recognized wins", []string{"fabric", "quilt"}, "quilt", true},
		{"unrelated tags ignored", []string{"minecraft", "iris"}, "", false},
		{"mixed case", []string{"NeoForge"}, "neoforge", true},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectLoader(tt.tags)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidLoaderVersion(t *testing.T) {
	assert.True(t, ValidLoaderVersion("0.15.11"))
	assert.True(t, ValidLoaderVersion("21.1.77"))
	assert.False(t, ValidLoaderVersion(""))
	assert.False(t, ValidLoaderVersion("latest"))
}
