// Package catalog merges search results from every registered source into a
// single deduplicated, sorted page. One slow or broken source degrades to an
// empty contribution instead of failing the whole search.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lantern-mc/lantern/core"
)

// Aggregator fans a search out to the active providers and merges what comes
// back. It holds no state of its own beyond the logger.
type Aggregator struct {
	log *log.Logger
}

func New(logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{log: logger}
}

// Search runs the query against every provider selected by the platform
// filter, concurrently, and merges the results. Provider failures are
// isolated: a failed source contributes nothing and the rest of the page
// stands. Only when every selected provider fails does Search return an
// error.
func (a *Aggregator) Search(ctx context.Context, filters core.CatalogFilters) (core.CatalogPage, error) {
	if err := filters.Validate(); err != nil {
		return core.CatalogPage{}, err
	}

	selected, err := a.selectProviders(filters.Platform)
	if err != nil {
		return core.CatalogPage{}, err
	}

	type result struct {
		provider string
		page     core.ProviderPage
		err      error
	}

	results := make([]result, len(selected))
	var wg sync.WaitGroup
	for i, p := range selected {
		wg.Add(1)
		go func(i int, p core.Provider) {
			defer wg.Done()
			page, err := p.Search(ctx, filters)
			results[i] = result{provider: p.Name(), page: page, err: err}
		}(i, p)
	}
	wg.Wait()

	merged := make(map[core.ItemKey]core.CatalogItem)
	var order []core.ItemKey
	var failures []error
	page := core.CatalogPage{Page: filters.Page}

	for _, res := range results {
		if res.err != nil {
			a.log.Warn("source degraded", "source", res.provider, "err", res.err)
			failures = append(failures, &core.ProviderError{Source: res.provider, Err: res.err})
			continue
		}
		for _, item := range res.page.Items {
			key := item.Key()
			if _, dup := merged[key]; !dup {
				order = append(order, key)
			}
			merged[key] = item
		}
		page.Total += res.page.Total
		page.HasMore = page.HasMore || res.page.HasMore
	}

	if len(failures) == len(selected) && len(selected) > 0 {
		return core.CatalogPage{}, &AggregateError{Failures: failures}
	}

	page.Items = make([]core.CatalogItem, 0, len(order))
	for _, key := range order {
		page.Items = append(page.Items, merged[key])
	}
	sortItems(page.Items, filters.Sort, filters.Ascending)

	return page, nil
}

// Details routes to the provider that owns the item.
func (a *Aggregator) Details(ctx context.Context, item core.CatalogItem) (core.ItemDetails, error) {
	provider, ok := core.GetProvider(item.Source)
	if !ok {
		return core.ItemDetails{}, fmt.Errorf("unknown source %q", item.Source)
	}
	return provider.Details(ctx, item)
}

func (a *Aggregator) selectProviders(platform string) ([]core.Provider, error) {
	if platform == "" || platform == core.PlatformAll {
		all := core.AllProviders()
		if len(all) == 0 {
			return nil, errors.New("no sources registered")
		}
		return all, nil
	}
	p, ok := core.GetProvider(platform)
	if !ok {
		return nil, fmt.Errorf("unknown source %q", platform)
	}
	return []core.Provider{p}, nil
}

// sortItems orders the merged page. Each mode has a natural direction
// (downloads and recency descend, names ascend); the ascending flag flips
// whichever direction the mode starts with.
func sortItems(items []core.CatalogItem, mode core.SortMode, ascending bool) {
	var less func(a, b core.CatalogItem) bool
	switch mode {
	case core.SortUpdated:
		less = func(a, b core.CatalogItem) bool {
			// Unreported timestamps sort as oldest.
			if a.Updated.Equal(b.Updated) {
				return lessByName(a, b)
			}
			return a.Updated.After(b.Updated)
		}
	case core.SortRelevance:
		less = lessByName
	default: // SortPopular
		less = func(a, b core.CatalogItem) bool {
			if a.Downloads == b.Downloads {
				return lessByName(a, b)
			}
			return a.Downloads > b.Downloads
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if ascending {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func lessByName(a, b core.CatalogItem) bool {
	an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if an == bn {
		return a.Key().String() < b.Key().String()
	}
	return an < bn
}

// AggregateError reports that every selected source failed. It unwraps to
// the individual provider failures so callers can still detect rate limiting
// or offline conditions with errors.Is.
type AggregateError struct {
	Failures []error
}

func (e *AggregateError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, err := range e.Failures {
		parts[i] = err.Error()
	}
	return "all sources failed: " + strings.Join(parts, "; ")
}

func (e *AggregateError) Unwrap() []error {
	return e.Failures
}
