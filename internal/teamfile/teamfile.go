// Package teamfile finds the team files in a directory and reads them.
package teamfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// DefaultPattern is the substring a file name must contain to be a team file.
const DefaultPattern = "team"

type File struct {
	Name string // base name, e.g. "team.rival.txt"
	ID   string // publish key, e.g. "team.rival"
	Path string
}

// Matches reports whether a base file name looks like a team file.
// The match is case-sensitive.
func Matches(name, pattern string) bool {
	return strings.Contains(name, pattern)
}

// ID strips the last extension from a file name. Earlier dots are kept.
func ID(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// Discover lists the regular files in dir whose names contain pattern,
// sorted by name. An unreadable dir is an error; entries that cannot be
// stat'ed (e.g. removed mid-scan) are skipped.
func Discover(dir, pattern string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read team dir %s: %w", dir, err)
	}

	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if !Matches(e.Name(), pattern) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		// follow symlinks so a linked team file still counts as a file
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, File{Name: e.Name(), ID: ID(e.Name()), Path: path})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// readFile is swapped out in tests to simulate permission errors.
var readFile = os.ReadFile

// ReadSet discovers the team files in dir and returns their raw contents
// keyed by ID. A file that vanished since the scan is left out. When two
// files share an ID (team.txt and team.md) the first by name wins.
//
// If dir cannot be listed the map is nil. If some file exists but cannot
// be read, the map holds everything that could be read and the error
// names each failure.
func ReadSet(dir, pattern string) (map[string][]byte, error) {
	files, err := Discover(dir, pattern)
	if err != nil {
		return nil, err
	}

	var readErr error
	contents := make(map[string][]byte, len(files))
	for _, f := range files {
		if _, dup := contents[f.ID]; dup {
			continue
		}
		data, err := readFile(f.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			readErr = multierr.Append(readErr, fmt.Errorf("read %s: %w", f.Path, err))
			continue
		}
		contents[f.ID] = data
	}
	return contents, readErr
}
