package core

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Category is the kind of content being searched for. Every provider maps
// these onto its own native facet or class-id vocabulary.
type Category string

const (
	CategoryModpack      Category = "modpack"
	CategoryMod          Category = "mod"
	CategoryShader       Category = "shader"
	CategoryResourcePack Category = "resourcepack"
	CategoryDataPack     Category = "datapack"
	CategoryWorld        Category = "world"
	CategoryAddon        Category = "addon"
)

var Categories = []Category{
	CategoryModpack,
	CategoryMod,
	CategoryShader,
	CategoryResourcePack,
	CategoryDataPack,
	CategoryWorld,
	CategoryAddon,
}

// SortMode orders merged search results. Relevance is a weak proxy (name
// comparison) since no cross-source relevance score exists.
type SortMode string

const (
	SortPopular   SortMode = "popular"
	SortUpdated   SortMode = "updated"
	SortRelevance SortMode = "relevance"
)

var SortModes = []SortMode{SortPopular, SortUpdated, SortRelevance}

// PlatformAll selects every registered provider in a search.
const PlatformAll = "all"

const (
	MinPageSize     = 1
	MaxPageSize     = 24
	DefaultPageSize = 12
)

// CatalogFilters is a single search request. Treated as immutable once built.
type CatalogFilters struct {
	Query       string   `mapstructure:"query"`
	Category    Category `mapstructure:"category"`
	GameVersion string   `mapstructure:"game-version"`
	Loader      string   `mapstructure:"loader"`
	Platform    string   `mapstructure:"platform"`
	Sort        SortMode `mapstructure:"sort"`
	Ascending   bool     `mapstructure:"ascending"`
	Page        int      `mapstructure:"page"`
	PageSize    int      `mapstructure:"page-size"`
}

func NewCatalogFilters(query string, category Category) CatalogFilters {
	return CatalogFilters{
		Query:    query,
		Category: category,
		Platform: PlatformAll,
		Sort:     SortPopular,
		PageSize: DefaultPageSize,
	}
}

// Validate checks enumerated fields and clamps the page size into bounds.
func (f *CatalogFilters) Validate() error {
	if !slices.Contains(Categories, f.Category) {
		return fmt.Errorf("unknown category %q", f.Category)
	}
	if f.Sort == "" {
		f.Sort = SortPopular
	}
	if !slices.Contains(SortModes, f.Sort) {
		return fmt.Errorf("unknown sort mode %q", f.Sort)
	}
	if f.Platform == "" {
		f.Platform = PlatformAll
	}
	if f.Page < 0 {
		return fmt.Errorf("page must not be negative, got %d", f.Page)
	}
	if f.PageSize < MinPageSize {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return nil
}

// Offset is the zero-based index of the first item of the requested page.
func (f CatalogFilters) Offset() int {
	return f.Page * f.PageSize
}
