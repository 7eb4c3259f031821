package sources

import (
	"github.com/charmbracelet/log"

	"github.com/lantern-mc/lantern/core"
	"github.com/lantern-mc/lantern/fetch"
)

// Options selects which hosted sources to construct and carries their
// credentials. Local catalog paths are registered in addition to whatever
// hosted sources are enabled.
type Options struct {
	CurseforgeAPIKey string
	LocalCatalogs    []string
	Logger           *log.Logger
}

// Register constructs every available provider against the shared fetch
// client and adds them to the core registry. Local catalogs that fail to
// parse are skipped with a warning rather than taking the rest down.
func Register(fetcher *fetch.Client, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	core.AddProvider(NewModrinthProvider(fetcher))
	core.AddProvider(NewCurseforgeProvider(fetcher, opts.CurseforgeAPIKey))
	core.AddProvider(NewFTBProvider(fetcher, logger))

	for _, path := range opts.LocalCatalogs {
		provider, err := LoadLocalProvider(path)
		if err != nil {
			logger.Warn("skipping local catalog", "path", path, "err", err)
			continue
		}
		core.AddProvider(provider)
	}
}
