package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	modrinthApi "codeberg.org/jmansfield/go-modrinth/modrinth"
	"golang.org/x/exp/slices"

	"github.com/lantern-mc/lantern/core"
	"github.com/lantern-mc/lantern/fetch"
)

const (
	modrinthAPIBase = "https://api.modrinth.com/v2"
	modrinthSiteURL = "https://modrinth.com"

	mrSearchTTL  = 30 * time.Second
	mrProjectTTL = 5 * time.Minute
	mrVersionTTL = 5 * time.Minute
)

// modrinthProjectTypes maps catalog categories onto Modrinth facets. Absent
// categories are not hosted there and yield empty results.
var modrinthProjectTypes = map[core.Category]string{
	core.CategoryMod:          "mod",
	core.CategoryModpack:      "modpack",
	core.CategoryShader:       "shader",
	core.CategoryResourcePack: "resourcepack",
}

var modrinthIndexes = map[core.SortMode]string{
	core.SortPopular:   "downloads",
	core.SortUpdated:   "updated",
	core.SortRelevance: "relevance",
}

// ModrinthProvider is the token-free REST-paginated source. Search goes
// through the fetch client directly; dependency expansion reuses the typed
// go-modrinth client over the same transport.
type ModrinthProvider struct {
	fetcher *fetch.Client
	client  *modrinthApi.Client
	baseURL string
}

func NewModrinthProvider(fetcher *fetch.Client) *ModrinthProvider {
	return &ModrinthProvider{
		fetcher: fetcher,
		client:  modrinthApi.NewClient(fetcher.HTTPClient()),
		baseURL: modrinthAPIBase,
	}
}

func (p *ModrinthProvider) Name() string {
	return "modrinth"
}

func (p *ModrinthProvider) Search(ctx context.Context, filters core.CatalogFilters) (core.ProviderPage, error) {
	projectType, ok := modrinthProjectTypes[filters.Category]
	if !ok && filters.Category != core.CategoryDataPack {
		return core.ProviderPage{}, nil
	}

	facets := make([][]string, 0, 3)
	if filters.Category == core.CategoryDataPack {
		// Datapacks are indexed as mods carrying the datapack category.
		facets = append(facets, []string{"project_type:mod"}, []string{"categories:datapack"})
	} else {
		facets = append(facets, []string{"project_type:" + projectType})
	}
	if filters.GameVersion != "" {
		facets = append(facets, []string{"versions:" + filters.GameVersion})
	}
	if filters.Loader != "" {
		facets = append(facets, []string{"categories:" + strings.ToLower(filters.Loader)})
	}

	query := url.Values{}
	query.Set("query", filters.Query)
	query.Set("facets", facetJSON(facets))
	query.Set("index", modrinthIndexes[filters.Sort])
	query.Set("offset", strconv.Itoa(filters.Offset()))
	query.Set("limit", strconv.Itoa(filters.PageSize))

	var res mrSearchResponse
	err := p.fetcher.GetJSON(ctx, p.baseURL+"/search?"+query.Encode(), mrSearchTTL, &res)
	if err != nil {
		return core.ProviderPage{}, fmt.Errorf("modrinth search: %w", err)
	}

	items := make([]core.CatalogItem, 0, len(res.Hits))
	for _, hit := range res.Hits {
		items = append(items, hit.toCatalogItem(filters.Category))
	}

	return core.ProviderPage{
		Items:   items,
		Total:   res.TotalHits,
		HasMore: core.HasNextPage(filters, res.TotalHits),
	}, nil
}

func (p *ModrinthProvider) Details(ctx context.Context, item core.CatalogItem) (core.ItemDetails, error) {
	var project mrProject
	err := p.fetcher.GetJSON(ctx, p.baseURL+"/project/"+url.PathEscape(item.ID), mrProjectTTL, &project)
	if err != nil {
		return core.ItemDetails{}, fmt.Errorf("modrinth project %s: %w", item.ID, err)
	}

	versions, err := p.projectVersions(ctx, item.ID)
	if err != nil {
		return core.ItemDetails{}, err
	}

	details := core.ItemDetails{
		CatalogItem: item,
		Body:        project.Body,
	}
	details.Summary = project.Description
	details.GameVersions = project.GameVersions
	if detected := knownLoadersOf(project.Loaders); len(detected) > 0 {
		details.Loaders = detected
	}
	for _, img := range project.Gallery {
		details.Gallery = append(details.Gallery, img.URL)
	}
	for _, v := range versions {
		details.Versions = append(details.Versions, v.toFileVersion())
	}
	if len(versions) > 0 {
		details.Dependencies = versions[0].dependencyCandidates()
	}
	return details, nil
}

func (p *ModrinthProvider) Resolve(ctx context.Context, id, versionID string) ([]core.DependencyCandidate, error) {
	version, err := p.version(ctx, id, versionID)
	if err != nil {
		return nil, err
	}

	candidates := version.dependencyCandidates()

	// Version-scoped dependencies only carry a version id; resolve them to
	// project ids in one batch, then confirm the projects exist.
	var pendingVersionIDs []string
	for _, c := range candidates {
		if c.ID == "" && c.VersionID != "" {
			pendingVersionIDs = append(pendingVersionIDs, c.VersionID)
		}
	}
	if len(pendingVersionIDs) > 0 {
		depVersions, err := p.client.Versions.GetMultiple(pendingVersionIDs)
		if err != nil {
			return nil, fmt.Errorf("modrinth dependency versions: %w", err)
		}
		byVersion := make(map[string]string, len(depVersions))
		for _, v := range depVersions {
			if v.ID != nil && v.ProjectID != nil {
				byVersion[*v.ID] = *v.ProjectID
			}
		}
		for i := range candidates {
			if candidates[i].ID == "" {
				candidates[i].ID = byVersion[candidates[i].VersionID]
			}
		}
	}

	// Drop anything that still has no project id and de-duplicate.
	seen := make(map[string]bool)
	kept := candidates[:0]
	var projectIDs []string
	for _, c := range candidates {
		if c.ID == "" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		kept = append(kept, c)
		projectIDs = append(projectIDs, c.ID)
	}

	if len(projectIDs) > 0 {
		projects, err := p.client.Projects.GetMultiple(projectIDs)
		if err != nil {
			return nil, fmt.Errorf("modrinth dependency projects: %w", err)
		}
		exists := make(map[string]bool, len(projects))
		for _, proj := range projects {
			if proj.ID != nil {
				exists[*proj.ID] = true
			}
		}
		for _, c := range kept {
			if c.Required && !exists[c.ID] {
				return nil, fmt.Errorf("dependency %s of %s: %w", c.ID, id, core.ErrDependencyUnresolved)
			}
		}
	}

	return kept, nil
}

func (p *ModrinthProvider) Download(ctx context.Context, id, versionID string) (*core.DownloadedArtifact, error) {
	version, err := p.version(ctx, id, versionID)
	if err != nil {
		return nil, err
	}

	file, ok := pickVersionFile(version.Files)
	if !ok || file.URL == "" {
		return nil, fmt.Errorf("modrinth %s version %s: %w", id, version.ID, core.ErrDownloadUnavailable)
	}

	format, hash := bestHash(file.Hashes)
	return &core.DownloadedArtifact{
		FileName:   file.Filename,
		URL:        file.URL,
		HashFormat: format,
		Hash:       hash,
	}, nil
}

func (p *ModrinthProvider) version(ctx context.Context, id, versionID string) (*mrVersion, error) {
	if versionID != "" {
		var version mrVersion
		err := p.fetcher.GetJSON(ctx, p.baseURL+"/version/"+url.PathEscape(versionID), mrVersionTTL, &version)
		if err != nil {
			return nil, fmt.Errorf("modrinth version %s: %w", versionID, err)
		}
		return &version, nil
	}

	versions, err := p.projectVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("modrinth %s: %w", id, core.ErrNoCompatibleVersion)
	}
	return &versions[0], nil
}

func (p *ModrinthProvider) projectVersions(ctx context.Context, id string) ([]mrVersion, error) {
	var versions []mrVersion
	err := p.fetcher.GetJSON(ctx, p.baseURL+"/project/"+url.PathEscape(id)+"/version", mrVersionTTL, &versions)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("modrinth project %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("modrinth versions of %s: %w", id, err)
	}
	return versions, nil
}

// facetJSON renders Modrinth's facet syntax: [["a"],["b","c"]].
func facetJSON(facets [][]string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, group := range facets {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		for j, f := range group {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(f))
		}
		b.WriteByte(']')
	}
	b.WriteByte(']')
	return b.String()
}

func knownLoadersOf(tags []string) []string {
	var out []string
	for _, tag := range tags {
		if core.IsKnownLoader(tag) && !slices.Contains(out, strings.ToLower(tag)) {
			out = append(out, strings.ToLower(tag))
		}
	}
	return out
}

// bestHash picks the most preferred hash format the source published.
func bestHash(hashes map[string]string) (format, hash string) {
	for _, candidate := range core.PreferredHashList {
		if value, ok := hashes[candidate]; ok {
			format = candidate
			hash = value
		}
	}
	return format, hash
}

type mrSearchResponse struct {
	Hits      []mrSearchHit `json:"hits"`
	Offset    int           `json:"offset"`
	Limit     int           `json:"limit"`
	TotalHits int           `json:"total_hits"`
}

type mrSearchHit struct {
	ProjectID    string    `json:"project_id"`
	ProjectType  string    `json:"project_type"`
	Slug         string    `json:"slug"`
	Author       string    `json:"author"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Categories   []string  `json:"categories"`
	Versions     []string  `json:"versions"`
	Downloads    uint64    `json:"downloads"`
	IconURL      string    `json:"icon_url"`
	DateModified time.Time `json:"date_modified"`
}

func (h mrSearchHit) toCatalogItem(category core.Category) core.CatalogItem {
	name := h.Title
	if name == "" {
		name = core.PrettifyName(h.Slug)
	}
	return core.CatalogItem{
		Source:       "modrinth",
		ID:           h.ProjectID,
		Slug:         h.Slug,
		Name:         name,
		Author:       h.Author,
		Summary:      h.Description,
		Category:     category,
		Downloads:    h.Downloads,
		GameVersions: h.Versions,
		Loaders:      knownLoadersOf(h.Categories),
		IconURL:      h.IconURL,
		PageURL:      modrinthSiteURL + "/" + h.ProjectType + "/" + h.Slug,
		Updated:      h.DateModified,
	}
}

type mrProject struct {
	ID           string      `json:"id"`
	Slug         string      `json:"slug"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Body         string      `json:"body"`
	ProjectType  string      `json:"project_type"`
	Downloads    uint64      `json:"downloads"`
	IconURL      string      `json:"icon_url"`
	GameVersions []string    `json:"game_versions"`
	Loaders      []string    `json:"loaders"`
	Gallery      []mrGallery `json:"gallery"`
}

type mrGallery struct {
	URL string `json:"url"`
}

type mrVersion struct {
	ID            string         `json:"id"`
	ProjectID     string         `json:"project_id"`
	Name          string         `json:"name"`
	VersionNumber string         `json:"version_number"`
	VersionType   string         `json:"version_type"`
	GameVersions  []string       `json:"game_versions"`
	Loaders       []string       `json:"loaders"`
	DatePublished time.Time      `json:"date_published"`
	Files         []mrFile       `json:"files"`
	Dependencies  []mrDependency `json:"dependencies"`
}

func (v mrVersion) toFileVersion() core.FileVersion {
	fv := core.FileVersion{
		ID:           v.ID,
		Name:         v.Name,
		Channel:      v.VersionType,
		GameVersions: v.GameVersions,
		Loaders:      v.Loaders,
		Published:    v.DatePublished,
		Dependencies: v.dependencyCandidates(),
	}
	if file, ok := pickVersionFile(v.Files); ok {
		fv.FileName = file.Filename
		fv.DownloadURL = file.URL
		fv.HashFormat, fv.Hash = bestHash(file.Hashes)
	}
	return fv
}

func (v mrVersion) dependencyCandidates() []core.DependencyCandidate {
	var out []core.DependencyCandidate
	for _, dep := range v.Dependencies {
		if dep.DependencyType == "incompatible" || dep.DependencyType == "embedded" {
			continue
		}
		out = append(out, core.DependencyCandidate{
			ID:        dep.ProjectID,
			VersionID: dep.VersionID,
			Source:    "modrinth",
			Required:  dep.DependencyType == "required",
		})
	}
	return out
}

type mrFile struct {
	URL      string            `json:"url"`
	Filename string            `json:"filename"`
	Primary  bool              `json:"primary"`
	Hashes   map[string]string `json:"hashes"`
}

type mrDependency struct {
	ProjectID      string `json:"project_id"`
	VersionID      string `json:"version_id"`
	DependencyType string `json:"dependency_type"`
}
