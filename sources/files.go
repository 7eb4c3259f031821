package sources

import "github.com/dlclark/regexp2"

// Matches release jars while excluding api/dev/sources classifier builds.
// Lookbehind needs regexp2; stdlib regexp has no support for it.
var releaseAssetRegex = regexp2.MustCompile(`^.+(?<!-api|-dev|-dev-preshadow|-sources)\.jar$`, 0)

// pickVersionFile chooses the file to install from a version's file list:
// the primary file when one is flagged, otherwise the first file that looks
// like a release asset, otherwise the first file.
func pickVersionFile(files []mrFile) (mrFile, bool) {
	if len(files) == 0 {
		return mrFile{}, false
	}
	for _, f := range files {
		if f.Primary {
			return f, true
		}
	}
	for _, f := range files {
		if ok, err := releaseAssetRegex.MatchString(f.Filename); err == nil && ok {
			return f, true
		}
	}
	return files[0], true
}
