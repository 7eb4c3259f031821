package core

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/exp/slices"
)

// KnownLoaders are the modding loaders recognized in version tags, in
// preference order (later entries win when several match).
var KnownLoaders = []string{"forge", "fabric", "quilt", "neoforge"}

func IsKnownLoader(name string) bool {
	return slices.Contains(KnownLoaders, strings.ToLower(name))
}

// DetectLoader scans a version's loader tags and reports the last recognized
// modding loader, if any. Tags like "minecraft" or "iris" are ignored.
func DetectLoader(tags []string) (string, bool) {
	detected := ""
	for _, tag := range tags {
		if IsKnownLoader(tag) {
			detected = strings.ToLower(tag)
		}
	}
	return detected, detected != ""
}

// ValidLoaderVersion reports whether a loader version string is a plausible
// semver version. Loader releases (Fabric, Quilt, NeoForge) are semver;
// rejecting junk here keeps garbage out of persisted instance state.
func ValidLoaderVersion(version string) bool {
	if version == "" {
		return false
	}
	_, err := semver.NewVersion(version)
	return err == nil
}
