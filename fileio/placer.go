// Package fileio writes downloaded artifacts into instance directories.
package fileio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DirPlacer writes artifacts under <instanceDir>/<subdir>/<fileName>. The
// stream goes to a temporary file first and is renamed into place, so a
// failed download never leaves a half-written jar behind.
type DirPlacer struct {
	// Subdir is the content directory inside the instance, "mods" by
	// default.
	Subdir string
}

func NewDirPlacer() DirPlacer {
	return DirPlacer{Subdir: "mods"}
}

func (p DirPlacer) Place(instanceDir, fileName string, r io.Reader) error {
	if instanceDir == "" {
		return fmt.Errorf("place %s: no instance directory", fileName)
	}
	cleaned := filepath.Base(filepath.Clean(fileName))
	if cleaned == "." || cleaned == string(filepath.Separator) || strings.TrimSpace(cleaned) == "" {
		return fmt.Errorf("place: invalid file name %q", fileName)
	}

	dir := filepath.Join(instanceDir, p.Subdir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, cleaned+".part-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	target := filepath.Join(dir, cleaned)
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
