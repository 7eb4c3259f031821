package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lantern-mc/lantern/core"
	"github.com/lantern-mc/lantern/fetch"
)

const (
	ftbGraphQLEndpoint = "https://api.feed-the-beast.com/v1/graphql"
	ftbRESTBase        = "https://api.modpacks.ch"

	ftbSearchTTL = 30 * time.Second
	ftbPackTTL   = 5 * time.Minute
)

const ftbSearchQuery = `query ($query: String!, $limit: Int!) {
  packs: searchModpacks(query: $query, limit: $limit) {
    packs { id name slug synopsis installs updated art { url type } authors { name } tags { name } }
  }
}`

const ftbPackQuery = `query ($id: Int!) {
  pack: modpack(id: $id) {
    id name slug synopsis description installs updated
    art { url type } authors { name } tags { name }
    versions { id name type updated targets { name type version } }
  }
}`

// FTBProvider serves Feed The Beast modpacks. It speaks the GraphQL API
// first and silently falls back to the legacy modpacks.ch REST API when
// GraphQL is unreachable, since the two have drifted apart before.
//
// FTB packs carry no directly downloadable artifact: installation is driven
// file-by-file by the pack manifest, so Download always reports the artifact
// as unavailable.
type FTBProvider struct {
	fetcher *fetch.Client
	gqlURL  string
	restURL string
	log     *log.Logger
}

func NewFTBProvider(fetcher *fetch.Client, logger *log.Logger) *FTBProvider {
	if logger == nil {
		logger = log.Default()
	}
	return &FTBProvider{
		fetcher: fetcher,
		gqlURL:  ftbGraphQLEndpoint,
		restURL: ftbRESTBase,
		log:     logger,
	}
}

func (p *FTBProvider) Name() string {
	return "ftb"
}

func (p *FTBProvider) Search(ctx context.Context, filters core.CatalogFilters) (core.ProviderPage, error) {
	// FTB only hosts modpacks.
	if filters.Category != core.CategoryModpack {
		return core.ProviderPage{}, nil
	}

	items, err := p.searchGraphQL(ctx, filters)
	if err != nil {
		p.log.Debug("ftb graphql search failed, falling back to rest", "err", err)
		items, err = p.searchREST(ctx, filters)
		if err != nil {
			return core.ProviderPage{}, fmt.Errorf("ftb search: %w", err)
		}
	}

	// The FTB APIs have no server-side pagination; page locally.
	total := len(items)
	start := filters.Offset()
	if start > total {
		start = total
	}
	end := start + filters.PageSize
	if end > total {
		end = total
	}

	return core.ProviderPage{
		Items:   items[start:end],
		Total:   total,
		HasMore: end < total,
	}, nil
}

func (p *FTBProvider) searchGraphQL(ctx context.Context, filters core.CatalogFilters) ([]core.CatalogItem, error) {
	req := ftbGraphQLRequest{
		Query: ftbSearchQuery,
		Variables: map[string]any{
			"query": filters.Query,
			"limit": 50,
		},
	}
	var res ftbGraphQLSearchResponse
	if err := p.fetcher.PostJSON(ctx, p.gqlURL, ftbSearchTTL, req, &res); err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql: %s", res.Errors[0].Message)
	}
	if res.Data == nil {
		return nil, errors.New("graphql: response carried no data")
	}

	items := make([]core.CatalogItem, 0, len(res.Data.Packs.Packs))
	for _, pack := range res.Data.Packs.Packs {
		items = append(items, pack.toCatalogItem())
	}
	return items, nil
}

func (p *FTBProvider) searchREST(ctx context.Context, filters core.CatalogFilters) ([]core.CatalogItem, error) {
	u := p.restURL + "/public/modpack/search/50?term=" + url.QueryEscape(filters.Query)
	var res ftbRESTSearchResponse
	if err := p.fetcher.GetJSON(ctx, u, ftbSearchTTL, &res); err != nil {
		return nil, err
	}

	items := make([]core.CatalogItem, 0, len(res.Packs))
	for _, id := range res.Packs {
		var packRes ftbPack
		if err := p.fetcher.GetJSON(ctx, p.restURL+"/public/modpack/"+strconv.Itoa(id), ftbPackTTL, &packRes); err != nil {
			p.log.Debug("ftb pack lookup failed", "id", id, "err", err)
			continue
		}
		items = append(items, packRes.toCatalogItem())
	}
	return items, nil
}

func (p *FTBProvider) Details(ctx context.Context, item core.CatalogItem) (core.ItemDetails, error) {
	id, err := strconv.Atoi(item.ID)
	if err != nil {
		return core.ItemDetails{}, fmt.Errorf("ftb pack id %q: %w", item.ID, core.ErrNotFound)
	}

	pack, err := p.packGraphQL(ctx, id)
	if err != nil {
		p.log.Debug("ftb graphql pack failed, falling back to rest", "id", id, "err", err)
		var restPack ftbPack
		if err := p.fetcher.GetJSON(ctx, p.restURL+"/public/modpack/"+strconv.Itoa(id), ftbPackTTL, &restPack); err != nil {
			return core.ItemDetails{}, fmt.Errorf("ftb pack %d: %w", id, err)
		}
		pack = &restPack
	}

	details := core.ItemDetails{CatalogItem: pack.toCatalogItem()}
	details.Body = pack.Description
	for _, art := range pack.Art {
		if art.Type == "screenshot" {
			details.Gallery = append(details.Gallery, art.URL)
		}
	}
	for _, v := range pack.Versions {
		details.Versions = append(details.Versions, v.toFileVersion())
	}
	return details, nil
}

func (p *FTBProvider) packGraphQL(ctx context.Context, id int) (*ftbPack, error) {
	req := ftbGraphQLRequest{
		Query:     ftbPackQuery,
		Variables: map[string]any{"id": id},
	}
	var res ftbGraphQLPackResponse
	if err := p.fetcher.PostJSON(ctx, p.gqlURL, ftbPackTTL, req, &res); err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql: %s", res.Errors[0].Message)
	}
	if res.Data == nil || res.Data.Pack == nil {
		return nil, errors.New("graphql: response carried no data")
	}
	return res.Data.Pack, nil
}

func (p *FTBProvider) Resolve(ctx context.Context, id, versionID string) ([]core.DependencyCandidate, error) {
	// Pack contents are declared in the manifest the instance manager
	// consumes, not as catalog dependencies.
	return nil, nil
}

func (p *FTBProvider) Download(ctx context.Context, id, versionID string) (*core.DownloadedArtifact, error) {
	return nil, fmt.Errorf("ftb pack %s: packs install from their manifest: %w", id, core.ErrDownloadUnavailable)
}

type ftbGraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type ftbGraphQLError struct {
	Message string `json:"message"`
}

type ftbGraphQLSearchResponse struct {
	Data *struct {
		Packs struct {
			Packs []ftbPack `json:"packs"`
		} `json:"packs"`
	} `json:"data"`
	Errors []ftbGraphQLError `json:"errors"`
}

type ftbGraphQLPackResponse struct {
	Data *struct {
		Pack *ftbPack `json:"pack"`
	} `json:"data"`
	Errors []ftbGraphQLError `json:"errors"`
}

type ftbRESTSearchResponse struct {
	Packs []int `json:"packs"`
}

type ftbPack struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Synopsis    string           `json:"synopsis"`
	Description string           `json:"description"`
	Installs    uint64           `json:"installs"`
	Updated     int64            `json:"updated"`
	Art         []ftbArt         `json:"art"`
	Authors     []ftbAuthor      `json:"authors"`
	Tags        []ftbTag         `json:"tags"`
	Versions    []ftbPackVersion `json:"versions"`
}

func (p ftbPack) toCatalogItem() core.CatalogItem {
	name := p.Name
	if name == "" {
		name = core.PrettifyName(p.Slug)
	}
	author := ""
	if len(p.Authors) > 0 {
		author = p.Authors[0].Name
	}
	icon := ""
	for _, art := range p.Art {
		if art.Type == "square" {
			icon = art.URL
			break
		}
	}

	var gameVersions, loaders []string
	for _, v := range p.Versions {
		for _, t := range v.Targets {
			switch t.Type {
			case "game":
				gameVersions = appendUnique(gameVersions, t.Version)
			case "modloader":
				loaders = appendUnique(loaders, t.Name)
			}
		}
	}

	slug := p.Slug
	if slug == "" {
		slug = core.SlugifyName(name)
	}

	return core.CatalogItem{
		Source:       "ftb",
		ID:           strconv.Itoa(p.ID),
		Slug:         slug,
		Name:         name,
		Author:       author,
		Summary:      p.Synopsis,
		Category:     core.CategoryModpack,
		Downloads:    p.Installs,
		GameVersions: gameVersions,
		Loaders:      loaders,
		IconURL:      icon,
		PageURL:      "https://www.feed-the-beast.com/modpacks/" + strconv.Itoa(p.ID) + "-" + slug,
		Updated:      time.Unix(p.Updated, 0),
	}
}

type ftbArt struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

type ftbAuthor struct {
	Name string `json:"name"`
}

type ftbTag struct {
	Name string `json:"name"`
}

type ftbPackVersion struct {
	ID      int         `json:"id"`
	Name    string      `json:"name"`
	Type    string      `json:"type"`
	Updated int64       `json:"updated"`
	Targets []ftbTarget `json:"targets"`
}

func (v ftbPackVersion) toFileVersion() core.FileVersion {
	var gameVersions, loaders []string
	for _, t := range v.Targets {
		switch t.Type {
		case "game":
			gameVersions = appendUnique(gameVersions, t.Version)
		case "modloader":
			loaders = appendUnique(loaders, t.Name)
		}
	}
	return core.FileVersion{
		ID:           strconv.Itoa(v.ID),
		Name:         v.Name,
		Channel:      v.Type,
		GameVersions: gameVersions,
		Loaders:      loaders,
		Published:    time.Unix(v.Updated, 0),
	}
}

type ftbTarget struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Version string `json:"version"`
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
