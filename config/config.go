package config

import (
	"encoding/base64"
	"fmt"
)

// Build-time values, injected via -ldflags by the release pipeline.
var (
	Version  string
	cfApiKey string
)

func SetVersion(version string) {
	Version = version
}

// SetCurseforgeApiKey stores the baked-in key, base64 encoded so the raw
// value never appears verbatim in the binary.
func SetCurseforgeApiKey(key string) {
	cfApiKey = key
}

func DecodeCfApiKey() (string, error) {
	k, err := base64.StdEncoding.DecodeString(cfApiKey)
	if err != nil || len(k) == 0 {
		return "", fmt.Errorf("failed to decode CF API key: %s", err)
	}
	return string(k), nil
}
