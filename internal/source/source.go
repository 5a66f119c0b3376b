// Package source scans the project source directory for candidate
// binary-target files.
package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Discover finds source files with the given extension in dir, in
// sorted enumeration order. Hidden files and directories (names
// starting with ".") are skipped. When recursive is false only the
// immediate directory is scanned.
func Discover(dir, ext string, recursive bool) ([]string, error) {
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}

		var files []string
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if filepath.Ext(entry.Name()) != ext {
				continue
			}
			files = append(files, filepath.Join(dir, entry.Name()))
		}
		return files, nil
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() && filepath.Ext(path) == ext {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// BinName derives the binary-target name from a source file path: the
// base name without its extension.
func BinName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
