package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/lantern-mc/lantern/core"
)

// LocalProvider serves hand-maintained content catalogs from TOML files on
// disk. It is meant for private server packs and content that never gets
// published to a public index.
type LocalProvider struct {
	name    string
	entries []localEntry
}

// LoadLocalProvider reads a catalog file. The provider name is the file's
// base name without extension, prefixed to keep it distinct from the hosted
// sources.
func LoadLocalProvider(path string) (*LocalProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("local catalog %s: %w", path, err)
	}

	var catalog localCatalog
	if err := toml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("local catalog %s: %w", path, err)
	}

	name := catalog.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return NewLocalProvider("local:"+name, catalog.Entries), nil
}

func NewLocalProvider(name string, entries []localEntry) *LocalProvider {
	return &LocalProvider{name: name, entries: entries}
}

func (p *LocalProvider) Name() string {
	return p.name
}

func (p *LocalProvider) Search(ctx context.Context, filters core.CatalogFilters) (core.ProviderPage, error) {
	// Case-insensitive substring match on the entry name; empty query
	// matches everything.
	needle := strings.ToLower(filters.Query)

	var matched []core.CatalogItem
	for _, e := range p.entries {
		if filters.Category != e.category() {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.Name), needle) {
			continue
		}
		matched = append(matched, e.toCatalogItem(p.name))
	}

	total := len(matched)
	start := filters.Offset()
	if start > total {
		start = total
	}
	end := start + filters.PageSize
	if end > total {
		end = total
	}

	return core.ProviderPage{
		Items:   matched[start:end],
		Total:   total,
		HasMore: end < total,
	}, nil
}

func (p *LocalProvider) Details(ctx context.Context, item core.CatalogItem) (core.ItemDetails, error) {
	entry, ok := p.find(item.ID)
	if !ok {
		return core.ItemDetails{}, fmt.Errorf("local entry %s: %w", item.ID, core.ErrNotFound)
	}

	details := core.ItemDetails{CatalogItem: entry.toCatalogItem(p.name)}
	details.Body = entry.Description
	details.Versions = []core.FileVersion{entry.toFileVersion()}
	for _, dep := range entry.Dependencies {
		details.Dependencies = append(details.Dependencies, core.DependencyCandidate{
			ID:       dep,
			Source:   p.name,
			Required: true,
		})
	}
	return details, nil
}

func (p *LocalProvider) Resolve(ctx context.Context, id, versionID string) ([]core.DependencyCandidate, error) {
	entry, ok := p.find(id)
	if !ok {
		return nil, fmt.Errorf("local entry %s: %w", id, core.ErrNotFound)
	}

	var out []core.DependencyCandidate
	for _, dep := range entry.Dependencies {
		if _, ok := p.find(dep); !ok {
			return nil, fmt.Errorf("local entry %s requires %s: %w", id, dep, core.ErrDependencyUnresolved)
		}
		out = append(out, core.DependencyCandidate{
			ID:       dep,
			Source:   p.name,
			Required: true,
		})
	}
	return out, nil
}

func (p *LocalProvider) Download(ctx context.Context, id, versionID string) (*core.DownloadedArtifact, error) {
	entry, ok := p.find(id)
	if !ok {
		return nil, fmt.Errorf("local entry %s: %w", id, core.ErrNotFound)
	}
	if entry.URL == "" {
		return nil, fmt.Errorf("local entry %s: %w", id, core.ErrDownloadUnavailable)
	}

	fileName := entry.FileName
	if fileName == "" {
		fileName = filepath.Base(entry.URL)
	}
	return &core.DownloadedArtifact{
		FileName:   fileName,
		URL:        entry.URL,
		HashFormat: entry.HashFormat,
		Hash:       entry.Hash,
	}, nil
}

func (p *LocalProvider) find(id string) (localEntry, bool) {
	for _, e := range p.entries {
		if e.ID == id {
			return e, true
		}
	}
	return localEntry{}, false
}

type localCatalog struct {
	Name    string       `toml:"name"`
	Entries []localEntry `toml:"entry"`
}

type localEntry struct {
	ID           string    `toml:"id"`
	Name         string    `toml:"name"`
	Author       string    `toml:"author"`
	Summary      string    `toml:"summary"`
	Description  string    `toml:"description"`
	Category     string    `toml:"category"`
	Version      string    `toml:"version"`
	GameVersions []string  `toml:"game-versions"`
	Loaders      []string  `toml:"loaders"`
	URL          string    `toml:"url"`
	FileName     string    `toml:"filename"`
	HashFormat   string    `toml:"hash-format"`
	Hash         string    `toml:"hash"`
	Updated      time.Time `toml:"updated"`
	Dependencies []string  `toml:"dependencies"`
}

func (e localEntry) category() core.Category {
	if e.Category == "" {
		return core.CategoryMod
	}
	return core.Category(e.Category)
}

func (e localEntry) toCatalogItem(source string) core.CatalogItem {
	name := e.Name
	if name == "" {
		name = core.PrettifyName(e.ID)
	}
	return core.CatalogItem{
		Source:       source,
		ID:           e.ID,
		Slug:         core.SlugifyName(name),
		Name:         name,
		Author:       e.Author,
		Summary:      e.Summary,
		Category:     e.category(),
		GameVersions: e.GameVersions,
		Loaders:      e.Loaders,
		Updated:      e.Updated,
	}
}

func (e localEntry) toFileVersion() core.FileVersion {
	version := e.Version
	if version == "" {
		version = "latest"
	}
	fileName := e.FileName
	if fileName == "" && e.URL != "" {
		fileName = filepath.Base(e.URL)
	}
	return core.FileVersion{
		ID:           version,
		Name:         version,
		Channel:      "release",
		GameVersions: e.GameVersions,
		Loaders:      e.Loaders,
		Published:    e.Updated,
		FileName:     fileName,
		DownloadURL:  e.URL,
		HashFormat:   e.HashFormat,
		Hash:         e.Hash,
	}
}
