// Package install turns a catalog selection into files inside an instance
// directory, expanding required dependencies breadth-first across sources.
package install

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/unascribed/FlexVer/go/flexver"
	"github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"
	"golang.org/x/exp/slices"

	"github.com/lantern-mc/lantern/core"
	"github.com/lantern-mc/lantern/fetch"
)

// Request is one install batch: a root item plus the instance context it
// lands in.
type Request struct {
	Item        core.CatalogItem
	VersionID   string // empty selects by game version
	GameVersion string
	Loader      string
	// LoaderVersion is the user's pinned loader build, recorded into the
	// delta only when it parses as a plausible version.
	LoaderVersion string
	InstanceDir   string
}

// Options tune an Installer.
type Options struct {
	// Progress, when set, renders a download bar per file.
	Progress *mpb.Progress
	Logger   *log.Logger
}

// Installer downloads artifacts through the shared fetch client and hands
// the verified streams to the Placer. It never persists instance state; the
// caller merges the returned delta.
type Installer struct {
	fetcher  *fetch.Client
	placer   core.Placer
	progress *mpb.Progress
	log      *log.Logger
}

func New(fetcher *fetch.Client, placer core.Placer, opts Options) *Installer {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Installer{
		fetcher:  fetcher,
		placer:   placer,
		progress: opts.Progress,
		log:      logger,
	}
}

// task is one queued item. Dependencies enqueue with an empty name; it gets
// filled from the resolved artifact.
type task struct {
	key       core.ItemKey
	versionID string
	name      string
	required  bool
}

// Install processes the request and its required dependency closure. The
// queue grows while it is walked; an item is marked seen the moment it is
// enqueued, so dependency cycles and diamonds each install once.
//
// A missing download URL aborts the batch immediately. Files placed before
// the abort stay in the instance; the returned delta lists only them.
func (ins *Installer) Install(ctx context.Context, req Request) (core.InstalledDelta, error) {
	var delta core.InstalledDelta
	if core.IsKnownLoader(req.Loader) {
		delta.Loader = strings.ToLower(req.Loader)
	}
	if req.LoaderVersion != "" {
		if core.ValidLoaderVersion(req.LoaderVersion) {
			delta.LoaderVersion = req.LoaderVersion
		} else {
			ins.log.Warn("ignoring implausible loader version", "version", req.LoaderVersion)
		}
	}

	root := task{
		key:       req.Item.Key(),
		versionID: req.VersionID,
		name:      req.Item.Name,
		required:  true,
	}
	queue := []task{root}
	seen := map[core.ItemKey]bool{root.key: true}

	for i := 0; i < len(queue); i++ {
		t := queue[i]
		provider, ok := core.GetProvider(t.key.Source)
		if !ok {
			return delta, fmt.Errorf("install %s: unknown source %q", t.key, t.key.Source)
		}

		version, err := ins.selectVersion(ctx, provider, t, req)
		if err != nil {
			return delta, err
		}

		artifact, err := ins.artifactFor(ctx, provider, t, version)
		if err != nil {
			return delta, err
		}

		if err := ins.download(ctx, req.InstanceDir, artifact); err != nil {
			return delta, err
		}

		name := t.name
		if name == "" {
			name = core.PrettifyName(strings.TrimSuffix(artifact.FileName, ".jar"))
		}
		versionID := t.versionID
		if versionID == "" && version != nil {
			versionID = version.ID
		}
		delta.Mods = append(delta.Mods, core.InstalledMod{
			Key:       t.key,
			Name:      name,
			FileName:  artifact.FileName,
			VersionID: versionID,
			Required:  t.required,
		})
		if version != nil {
			if loader, ok := core.DetectLoader(version.Loaders); ok {
				delta.Loader = loader
			}
		}

		deps, err := provider.Resolve(ctx, t.key.ID, versionID)
		if err != nil {
			return delta, fmt.Errorf("resolve dependencies of %s: %w", t.key, err)
		}
		for _, dep := range deps {
			if !dep.Required {
				continue
			}
			key := core.ItemKey{Source: dep.Source, ID: dep.ID}
			if key.Source == "" {
				key.Source = t.key.Source
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			queue = append(queue, task{
				key:       key,
				versionID: dep.VersionID,
				required:  true,
			})
		}
	}

	return delta, nil
}

// selectVersion picks the version to install. An explicit version id wins;
// otherwise the provider's version list is filtered against the target game
// version (and loader) and the highest match is taken. With no match it
// falls back to the provider's first listed version rather than failing.
func (ins *Installer) selectVersion(ctx context.Context, provider core.Provider, t task, req Request) (*core.FileVersion, error) {
	if t.versionID != "" {
		return nil, nil
	}

	summary := core.CatalogItem{Source: t.key.Source, ID: t.key.ID, Name: t.name}
	details, err := provider.Details(ctx, summary)
	if err != nil {
		return nil, fmt.Errorf("versions of %s: %w", t.key, err)
	}
	if len(details.Versions) == 0 {
		// Some sources only reveal versions through Download.
		return nil, nil
	}

	v, exact := PickVersion(details.Versions, req.GameVersion, req.Loader)
	if !exact {
		ins.log.Warn("no version matches the instance, using latest",
			"item", t.key, "game-version", req.GameVersion)
	}
	return v, nil
}

// PickVersion filters versions against a game version and loader and ranks
// the survivors by FlexVer over the version name, newest last. The boolean
// reports whether anything matched; on false the first listed version is
// returned as the fallback.
func PickVersion(versions []core.FileVersion, gameVersion, loader string) (*core.FileVersion, bool) {
	loader = strings.ToLower(loader)

	var best *core.FileVersion
	for i := range versions {
		v := &versions[i]
		if gameVersion != "" && !slices.Contains(v.GameVersions, gameVersion) {
			continue
		}
		if loader != "" && len(v.Loaders) > 0 && !slices.Contains(v.Loaders, loader) {
			continue
		}
		if best == nil || flexver.Compare(v.Name, best.Name) > 0 {
			best = v
		}
	}
	if best != nil {
		return best, true
	}
	if len(versions) == 0 {
		return nil, false
	}
	return &versions[0], false
}

func (ins *Installer) artifactFor(ctx context.Context, provider core.Provider, t task, version *core.FileVersion) (*core.DownloadedArtifact, error) {
	if version != nil && version.DownloadURL != "" {
		return &core.DownloadedArtifact{
			FileName:   version.FileName,
			URL:        version.DownloadURL,
			HashFormat: version.HashFormat,
			Hash:       version.Hash,
		}, nil
	}

	versionID := t.versionID
	if versionID == "" && version != nil {
		versionID = version.ID
	}
	artifact, err := provider.Download(ctx, t.key.ID, versionID)
	if err != nil {
		name := t.name
		if name == "" {
			name = t.key.String()
		}
		return nil, fmt.Errorf("download of %s: %w", name, err)
	}
	return artifact, nil
}

// download streams the artifact into the instance, hashing in flight when
// the source published a checksum.
func (ins *Installer) download(ctx context.Context, instanceDir string, artifact *core.DownloadedArtifact) error {
	body, length, err := ins.fetcher.Open(ctx, artifact.URL)
	if err != nil {
		return fmt.Errorf("download of %s: %w", artifact.FileName, err)
	}
	defer body.Close()

	var r io.Reader = body
	if ins.progress != nil && length > 0 {
		bar := ins.progress.AddBar(length,
			mpb.PrependDecorators(decor.Name(artifact.FileName)),
			mpb.AppendDecorators(decor.CountersKibiByte("%.1f / %.1f")),
			mpb.BarRemoveOnComplete(),
		)
		r = bar.ProxyReader(r)
	}

	if artifact.HashFormat == "" {
		ins.log.Warn("source published no checksum", "file", artifact.FileName)
	} else {
		// The verifying reader surfaces a mismatch in place of io.EOF, so
		// the placer aborts before the file lands in the instance.
		vr, err := core.NewVerifyingReader(r, artifact.HashFormat, artifact.Hash)
		if err != nil {
			return fmt.Errorf("verify %s: %w", artifact.FileName, err)
		}
		r = vr
	}

	if err := ins.placer.Place(instanceDir, artifact.FileName, r); err != nil {
		return fmt.Errorf("place %s: %w", artifact.FileName, err)
	}
	return nil
}
