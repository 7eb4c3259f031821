package core

import (
	"context"
	"sort"
)

// providers stores every registered catalog adapter, keyed by source name.
// The set is populated once at startup, before any searches run, so reads
// need no locking.
var providers = make(map[string]Provider)

func AddProvider(p Provider) {
	providers[p.Name()] = p
}

func GetProvider(name string) (Provider, bool) {
	p, ok := providers[name]
	return p, ok
}

// AllProviders returns the registered providers in stable name order.
func AllProviders() []Provider {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Provider, len(names))
	for i, name := range names {
		out[i] = providers[name]
	}
	return out
}

// Provider adapts one external catalog to the uniform search/detail/install
// contract.
type Provider interface {
	Name() string
	// Search returns this source's page for the filters, with its own
	// pagination math. A provider may fail outright; the aggregator turns
	// that into "this source contributed zero results".
	Search(ctx context.Context, filters CatalogFilters) (ProviderPage, error)
	// Details fetches the rich projection of one item. Sources that cannot
	// serve details (e.g. no API key configured) degrade to the summary
	// fields already known rather than failing.
	Details(ctx context.Context, item CatalogItem) (ItemDetails, error)
	// Resolve returns the dependency candidates of an item's version
	// (latest when versionID is empty). Not every catalog exposes a
	// dependency graph; an empty result is legitimate.
	Resolve(ctx context.Context, id, versionID string) ([]DependencyCandidate, error)
	// Download resolves the artifact for an item's version (latest when
	// versionID is empty). Returns ErrDownloadUnavailable when the source
	// withholds the file URL.
	Download(ctx context.Context, id, versionID string) (*DownloadedArtifact, error)
}
