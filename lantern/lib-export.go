// Package lantern is the embedding surface for UI layers: one constructor
// wiring the fetch client, the source registry, the aggregator and the
// installer, plus re-exports of the core types a frontend needs.
package lantern

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/vbauerster/mpb/v4"

	"github.com/lantern-mc/lantern/catalog"
	"github.com/lantern-mc/lantern/core"
	"github.com/lantern-mc/lantern/fetch"
	"github.com/lantern-mc/lantern/fileio"
	"github.com/lantern-mc/lantern/install"
	"github.com/lantern-mc/lantern/sources"
)

type (
	CatalogFilters = core.CatalogFilters
	CatalogItem    = core.CatalogItem
	CatalogPage    = core.CatalogPage
	ItemDetails    = core.ItemDetails
	InstalledDelta = core.InstalledDelta
)

var (
	NewCatalogFilters = core.NewCatalogFilters
	AllProviders      = core.AllProviders
)

// Options configure a Client.
type Options struct {
	CurseforgeAPIKey string
	LocalCatalogs    []string
	// Progress renders download bars during installs when set.
	Progress *mpb.Progress
	Logger   *log.Logger
}

// Client bundles the whole pipeline behind three calls.
type Client struct {
	fetcher    *fetch.Client
	aggregator *catalog.Aggregator
	installer  *install.Installer
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	fetcher := fetch.NewClient(fetch.NewCache(), fetch.Options{Logger: logger})
	sources.Register(fetcher, sources.Options{
		CurseforgeAPIKey: opts.CurseforgeAPIKey,
		LocalCatalogs:    opts.LocalCatalogs,
		Logger:           logger,
	})

	return &Client{
		fetcher:    fetcher,
		aggregator: catalog.New(logger),
		installer: install.New(fetcher, fileio.NewDirPlacer(), install.Options{
			Progress: opts.Progress,
			Logger:   logger,
		}),
	}
}

func (c *Client) Search(ctx context.Context, filters CatalogFilters) (CatalogPage, error) {
	return c.aggregator.Search(ctx, filters)
}

func (c *Client) Details(ctx context.Context, item CatalogItem) (ItemDetails, error) {
	return c.aggregator.Details(ctx, item)
}

func (c *Client) Install(ctx context.Context, req install.Request) (InstalledDelta, error) {
	return c.installer.Install(ctx, req)
}
