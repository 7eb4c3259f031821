package core

import "time"

// ItemKey is the composite identity of a catalog item: provider name plus the
// provider's native id. It is the deduplication key for merged results and
// the seen-set key for the installer. The same content listed on two
// different catalogs produces two distinct keys; cross-source duplicate
// detection is deliberately not attempted.
type ItemKey struct {
	Source string
	ID     string
}

func (k ItemKey) String() string {
	return k.Source + ":" + k.ID
}

// CatalogItem is one normalized search hit.
type CatalogItem struct {
	Source       string
	ID           string
	Slug         string
	Name         string
	Author       string
	Summary      string
	Category     Category
	Downloads    uint64
	GameVersions []string
	Loaders      []string
	IconURL      string
	PageURL      string
	Updated      time.Time // zero when the source does not report it
}

func (i CatalogItem) Key() ItemKey {
	return ItemKey{Source: i.Source, ID: i.ID}
}

// DownloadsDisplay renders the raw download count for humans ("1.2M").
func (i CatalogItem) DownloadsDisplay() string {
	return FormatCount(i.Downloads)
}

// CatalogPage is one merged page of search results.
type CatalogPage struct {
	Items []CatalogItem
	// Total is a best-effort sum of the per-source totals.
	Total int
	// HasMore is true while any contributing source believes more pages
	// exist; a further page may therefore return fewer new items than
	// requested once some sources are exhausted.
	HasMore bool
	Page    int
}

// ProviderPage is a single provider's contribution to a search, before
// merging. Total and HasMore come from the provider's own pagination math.
type ProviderPage struct {
	Items   []CatalogItem
	Total   int
	HasMore bool
}

// HasNextPage reports whether another page exists after the given filters,
// using the shared (page+1)*pageSize < total rule.
func HasNextPage(f CatalogFilters, total int) bool {
	return (f.Page+1)*f.PageSize < total
}

// FileVersion is one installable version of a catalog item.
type FileVersion struct {
	ID           string
	Name         string
	Channel      string // release, beta, alpha
	GameVersions []string
	Loaders      []string
	Published    time.Time
	FileName     string
	DownloadURL  string // empty when the source withholds distribution
	HashFormat   string
	Hash         string
	Dependencies []DependencyCandidate
}

// ItemDetails is the rich projection of one item, fetched lazily.
type ItemDetails struct {
	CatalogItem
	Body         string
	Gallery      []string
	Versions     []FileVersion
	Dependencies []DependencyCandidate
}

// DependencyCandidate names another item a version depends on. Required
// dependencies must be installed for the parent to function.
type DependencyCandidate struct {
	ID        string
	VersionID string
	Source    string
	Required  bool
}

// DownloadedArtifact describes a file ready to be placed into an instance.
type DownloadedArtifact struct {
	FileName   string
	URL        string
	HashFormat string // sha256 unless the source only publishes another
	Hash       string
}

// InstalledMod is one record of the delta produced by an install batch.
type InstalledMod struct {
	Key       ItemKey
	Name      string
	FileName  string
	VersionID string
	Required  bool
}

// InstalledDelta is merged into persisted instance state by the caller; this
// core never persists anything itself.
type InstalledDelta struct {
	Mods          []InstalledMod
	Loader        string // last loader detected while processing, if any
	LoaderVersion string
}
