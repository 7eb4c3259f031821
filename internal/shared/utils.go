package shared

import (
	"fmt"
	"os"
	"strings"
)

// GetRawLoaderVersion strips a leading mcVersion from combined
// "mcVersion-loaderVersion" inputs, so both "1.21.1-0.16.5" and "0.16.5"
// name the same loader build.
func GetRawLoaderVersion(version string) string {
	var wantedVersion string
	if strings.Contains(version, "-") {
		wantedVersion = strings.Split(version, "-")[1]
	} else {
		wantedVersion = version
	}
	return wantedVersion
}

func Exitf(format string, a ...interface{}) {
	fmt.Printf(format, a...)
	os.Exit(1)
}

func Exitln(a ...interface{}) {
	fmt.Println(a...)
	os.Exit(1)
}
