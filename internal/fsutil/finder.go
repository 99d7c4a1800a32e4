// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindConfigFiles returns all agent configuration files reachable from path.
// If path is a regular file it is returned as-is; if it is a directory, the
// directory is walked recursively for files with the given extension.
// Variable override files (*.var + extension, e.g. *.var.hcl) are skipped so
// they are only consumed through explicit -var-file flags. Results are sorted
// so that discovery order never depends on filesystem iteration order.
func FindConfigFiles(path string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	varSuffix := ".var" + extension

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(name, varSuffix) {
			return nil
		}
		if strings.HasSuffix(name, extension) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
