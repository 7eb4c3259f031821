package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"github.com/lantern-mc/lantern/core"
	"github.com/lantern-mc/lantern/fetch"
)

const (
	curseforgeAPIBase = "https://api.curseforge.com/v1"
	cfMinecraftGameID = 432

	cfSearchTTL = 30 * time.Second
	cfModTTL    = 5 * time.Minute
	cfFilesTTL  = 5 * time.Minute
	cfDescTTL   = 10 * time.Minute
)

// CurseForge class ids per catalog category. Addons have no Minecraft class.
var cfClassIDs = map[core.Category]int{
	core.CategoryModpack:      4471,
	core.CategoryMod:          6,
	core.CategoryResourcePack: 12,
	core.CategoryWorld:        17,
	core.CategoryShader:       6552,
	core.CategoryDataPack:     6945,
}

var cfSortFields = map[core.SortMode]int{
	core.SortPopular:   6, // total downloads
	core.SortUpdated:   3, // last updated
	core.SortRelevance: 2, // popularity, closest native analogue
}

var cfLoaderTypes = map[string]int{
	"forge":    1,
	"fabric":   4,
	"quilt":    5,
	"neoforge": 6,
}

const (
	cfRelationRequired = 3
	cfRelationOptional = 2
)

// CurseforgeProvider is the key-authenticated REST source. Without a
// configured API key it degrades gracefully: searches return no results and
// details fall back to the summary fields already known.
type CurseforgeProvider struct {
	fetcher *fetch.Client
	apiKey  string
	baseURL string
}

func NewCurseforgeProvider(fetcher *fetch.Client, apiKey string) *CurseforgeProvider {
	return &CurseforgeProvider{
		fetcher: fetcher,
		apiKey:  apiKey,
		baseURL: curseforgeAPIBase,
	}
}

func (p *CurseforgeProvider) Name() string {
	return "curseforge"
}

// Available reports whether an API key is configured.
func (p *CurseforgeProvider) Available() bool {
	return p.apiKey != ""
}

func (p *CurseforgeProvider) headers() http.Header {
	return http.Header{"X-Api-Key": []string{p.apiKey}}
}

func (p *CurseforgeProvider) Search(ctx context.Context, filters core.CatalogFilters) (core.ProviderPage, error) {
	if !p.Available() {
		return core.ProviderPage{}, nil
	}
	classID, ok := cfClassIDs[filters.Category]
	if !ok {
		return core.ProviderPage{}, nil
	}

	query := url.Values{}
	query.Set("gameId", strconv.Itoa(cfMinecraftGameID))
	query.Set("classId", strconv.Itoa(classID))
	query.Set("searchFilter", filters.Query)
	query.Set("index", strconv.Itoa(filters.Offset()))
	query.Set("pageSize", strconv.Itoa(filters.PageSize))
	query.Set("sortField", strconv.Itoa(cfSortFields[filters.Sort]))
	query.Set("sortOrder", "desc")
	if filters.GameVersion != "" {
		query.Set("gameVersion", CurseforgeGameVersion(filters.GameVersion))
	}
	if loaderType, ok := cfLoaderTypes[strings.ToLower(filters.Loader)]; ok {
		query.Set("modLoaderType", strconv.Itoa(loaderType))
	}

	var res cfSearchResponse
	err := p.fetcher.GetJSONWithHeaders(ctx, p.baseURL+"/mods/search?"+query.Encode(), p.headers(), cfSearchTTL, &res)
	if err != nil {
		return core.ProviderPage{}, fmt.Errorf("curseforge search: %w", err)
	}

	items := make([]core.CatalogItem, 0, len(res.Data))
	for _, mod := range res.Data {
		items = append(items, mod.toCatalogItem(filters.Category))
	}

	return core.ProviderPage{
		Items:   items,
		Total:   res.Pagination.TotalCount,
		HasMore: core.HasNextPage(filters, res.Pagination.TotalCount),
	}, nil
}

func (p *CurseforgeProvider) Details(ctx context.Context, item core.CatalogItem) (core.ItemDetails, error) {
	if !p.Available() {
		// No key: the summary is all we can serve. Not an error.
		return core.ItemDetails{CatalogItem: item}, nil
	}

	var modRes cfModResponse
	err := p.fetcher.GetJSONWithHeaders(ctx, p.baseURL+"/mods/"+url.PathEscape(item.ID), p.headers(), cfModTTL, &modRes)
	if err != nil {
		return core.ItemDetails{}, fmt.Errorf("curseforge mod %s: %w", item.ID, err)
	}
	mod := modRes.Data

	details := core.ItemDetails{CatalogItem: mod.toCatalogItem(item.Category)}

	var descRes cfDescriptionResponse
	if err := p.fetcher.GetJSONWithHeaders(ctx, p.baseURL+"/mods/"+url.PathEscape(item.ID)+"/description", p.headers(), cfDescTTL, &descRes); err == nil {
		details.Body = descRes.Data
	}
	for _, shot := range mod.Screenshots {
		details.Gallery = append(details.Gallery, shot.URL)
	}

	files, err := p.modFiles(ctx, item.ID)
	if err != nil {
		return core.ItemDetails{}, err
	}
	for _, f := range files {
		details.Versions = append(details.Versions, f.toFileVersion())
	}
	if len(files) > 0 {
		details.Dependencies = files[0].dependencyCandidates()
	}
	return details, nil
}

func (p *CurseforgeProvider) Resolve(ctx context.Context, id, versionID string) ([]core.DependencyCandidate, error) {
	if !p.Available() {
		// The upstream dependency graph is unreachable without a key.
		return nil, nil
	}
	file, err := p.file(ctx, id, versionID)
	if err != nil {
		return nil, err
	}
	return file.dependencyCandidates(), nil
}

func (p *CurseforgeProvider) Download(ctx context.Context, id, versionID string) (*core.DownloadedArtifact, error) {
	if !p.Available() {
		return nil, fmt.Errorf("curseforge %s: no API key configured: %w", id, core.ErrDownloadUnavailable)
	}
	file, err := p.file(ctx, id, versionID)
	if err != nil {
		return nil, err
	}
	if file.DownloadURL == "" {
		// Distribution opt-out: the mod exists but withholds its file URL.
		return nil, fmt.Errorf("curseforge %s file %d: %w", id, file.ID, core.ErrDownloadUnavailable)
	}

	format, hash := file.bestHash()
	return &core.DownloadedArtifact{
		FileName:   file.FileName,
		URL:        file.DownloadURL,
		HashFormat: format,
		Hash:       hash,
	}, nil
}

func (p *CurseforgeProvider) file(ctx context.Context, id, versionID string) (cfFile, error) {
	if versionID != "" {
		var res cfFileResponse
		u := p.baseURL + "/mods/" + url.PathEscape(id) + "/files/" + url.PathEscape(versionID)
		if err := p.fetcher.GetJSONWithHeaders(ctx, u, p.headers(), cfFilesTTL, &res); err != nil {
			return cfFile{}, fmt.Errorf("curseforge file %s of %s: %w", versionID, id, err)
		}
		return res.Data, nil
	}

	files, err := p.modFiles(ctx, id)
	if err != nil {
		return cfFile{}, err
	}
	if len(files) == 0 {
		return cfFile{}, fmt.Errorf("curseforge %s: %w", id, core.ErrNoCompatibleVersion)
	}
	return files[0], nil
}

func (p *CurseforgeProvider) modFiles(ctx context.Context, id string) ([]cfFile, error) {
	var res cfFilesResponse
	err := p.fetcher.GetJSONWithHeaders(ctx, p.baseURL+"/mods/"+url.PathEscape(id)+"/files", p.headers(), cfFilesTTL, &res)
	if err != nil {
		return nil, fmt.Errorf("curseforge files of %s: %w", id, err)
	}
	return res.Data, nil
}

type cfSearchResponse struct {
	Data       []cfMod      `json:"data"`
	Pagination cfPagination `json:"pagination"`
}

type cfPagination struct {
	Index       int `json:"index"`
	PageSize    int `json:"pageSize"`
	ResultCount int `json:"resultCount"`
	TotalCount  int `json:"totalCount"`
}

type cfModResponse struct {
	Data cfMod `json:"data"`
}

type cfDescriptionResponse struct {
	Data string `json:"data"`
}

type cfFilesResponse struct {
	Data []cfFile `json:"data"`
}

type cfFileResponse struct {
	Data cfFile `json:"data"`
}

type cfMod struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Summary       string          `json:"summary"`
	DownloadCount float64         `json:"downloadCount"`
	DateModified  time.Time       `json:"dateModified"`
	Authors       []cfAuthor      `json:"authors"`
	Logo          cfAsset         `json:"logo"`
	Links         cfLinks         `json:"links"`
	Screenshots   []cfAsset       `json:"screenshots"`
	LatestIndexes []cfLatestIndex `json:"latestFilesIndexes"`
}

func (m cfMod) toCatalogItem(category core.Category) core.CatalogItem {
	name := m.Name
	if name == "" {
		name = core.PrettifyName(m.Slug)
	}
	author := ""
	if len(m.Authors) > 0 {
		author = m.Authors[0].Name
	}

	var gameVersions, loaders []string
	for _, idx := range m.LatestIndexes {
		if idx.GameVersion != "" && !slices.Contains(gameVersions, idx.GameVersion) {
			gameVersions = append(gameVersions, idx.GameVersion)
		}
		for loaderName, loaderType := range cfLoaderTypes {
			if idx.ModLoader == loaderType && !slices.Contains(loaders, loaderName) {
				loaders = append(loaders, loaderName)
			}
		}
	}
	slices.Sort(loaders)

	return core.CatalogItem{
		Source:       "curseforge",
		ID:           strconv.Itoa(m.ID),
		Slug:         m.Slug,
		Name:         name,
		Author:       author,
		Summary:      m.Summary,
		Category:     category,
		Downloads:    uint64(m.DownloadCount),
		GameVersions: gameVersions,
		Loaders:      loaders,
		IconURL:      m.Logo.ThumbnailURL,
		PageURL:      m.Links.WebsiteURL,
		Updated:      m.DateModified,
	}
}

type cfAuthor struct {
	Name string `json:"name"`
}

type cfAsset struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

type cfLinks struct {
	WebsiteURL string `json:"websiteUrl"`
}

type cfLatestIndex struct {
	GameVersion string `json:"gameVersion"`
	ModLoader   int    `json:"modLoader"`
}

type cfFile struct {
	ID           int            `json:"id"`
	DisplayName  string         `json:"displayName"`
	FileName     string         `json:"fileName"`
	ReleaseType  int            `json:"releaseType"` // 1 release, 2 beta, 3 alpha
	FileDate     time.Time      `json:"fileDate"`
	DownloadURL  string         `json:"downloadUrl"`
	GameVersions []string       `json:"gameVersions"`
	Hashes       []cfHash       `json:"hashes"`
	Dependencies []cfDependency `json:"dependencies"`
}

func (f cfFile) toFileVersion() core.FileVersion {
	channel := "release"
	switch f.ReleaseType {
	case 2:
		channel = "beta"
	case 3:
		channel = "alpha"
	}

	// CurseForge mixes loader names into the game version list.
	var gameVersions, loaders []string
	for _, v := range f.GameVersions {
		if core.IsKnownLoader(v) {
			loaders = append(loaders, strings.ToLower(v))
		} else {
			gameVersions = append(gameVersions, v)
		}
	}

	format, hash := f.bestHash()
	return core.FileVersion{
		ID:           strconv.Itoa(f.ID),
		Name:         f.DisplayName,
		Channel:      channel,
		GameVersions: gameVersions,
		Loaders:      loaders,
		Published:    f.FileDate,
		FileName:     f.FileName,
		DownloadURL:  f.DownloadURL,
		HashFormat:   format,
		Hash:         hash,
		Dependencies: f.dependencyCandidates(),
	}
}

func (f cfFile) dependencyCandidates() []core.DependencyCandidate {
	var out []core.DependencyCandidate
	for _, dep := range f.Dependencies {
		if dep.RelationType != cfRelationRequired && dep.RelationType != cfRelationOptional {
			continue
		}
		out = append(out, core.DependencyCandidate{
			ID:       strconv.Itoa(dep.ModID),
			Source:   "curseforge",
			Required: dep.RelationType == cfRelationRequired,
		})
	}
	return out
}

func (f cfFile) bestHash() (format, hash string) {
	for _, h := range f.Hashes {
		switch h.Algo {
		case 1:
			if format != "sha1" {
				format, hash = "sha1", h.Value
			}
		case 2:
			if format == "" {
				format, hash = "md5", h.Value
			}
		}
	}
	return format, hash
}

type cfHash struct {
	Value string `json:"value"`
	Algo  int    `json:"algo"` // 1 sha1, 2 md5
}

type cfDependency struct {
	ModID        int `json:"modId"`
	RelationType int `json:"relationType"`
}

var snapshotVersionRegex = regexp.MustCompile(`(?:Snapshot )?(\d+)w0?(0|[1-9]\d*)([a-z])`)

var snapshotNames = [...]string{"-pre", " Pre-Release ", " Pre-release ", "-rc"}

// CurseforgeGameVersion maps a Minecraft version string onto the vocabulary
// CurseForge indexes by: pre-releases, release candidates and week-coded
// snapshots all collapse into "-Snapshot" pseudo versions. Week codes are
// only mapped for the versions this launcher targets (1.15 and newer).
func CurseforgeGameVersion(mcVersion string) string {
	for _, name := range snapshotNames {
		if index := strings.Index(mcVersion, name); index > -1 {
			return mcVersion[:index] + "-Snapshot"
		}
	}

	matches := snapshotVersionRegex.FindStringSubmatch(mcVersion)
	if matches == nil {
		return mcVersion
	}
	year, err := strconv.Atoi(matches[1])
	if err != nil {
		return mcVersion
	}
	week, err := strconv.Atoi(matches[2])
	if err != nil {
		return mcVersion
	}

	switch {
	case year >= 22 && week >= 11:
		return "1.19-Snapshot"
	case year == 21 && week >= 37 || year >= 22:
		return "1.18-Snapshot"
	case year == 20 && week >= 45 || year == 21 && week <= 20:
		return "1.17-Snapshot"
	case year == 20 && week >= 6:
		return "1.16-Snapshot"
	case year == 19 && week >= 34:
		return "1.15-Snapshot"
	}
	return mcVersion
}
