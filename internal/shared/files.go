package shared

import (
	"errors"
	"path/filepath"

	"github.com/spf13/viper"
)

// GetInstanceDir resolves the target instance directory from the --instance
// flag or the configured default, as an absolute path.
func GetInstanceDir() (string, error) {
	dir := viper.GetString("instance")
	if dir == "" {
		return "", errors.New("no instance directory; pass --instance or set instance-dir in the config")
	}
	return filepath.Abs(dir)
}
