// Package document enumerates the documents of a blog directory and reads and
// writes them on the local file system.
package document

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirSource lists the documents of a single, non-recursive directory.
type DirSource struct {
	Dir string
	Ext string
}

// NewDirSource creates a DirSource over dir that matches names ending in ext.
func NewDirSource(dir, ext string) *DirSource {
	return &DirSource{Dir: dir, Ext: ext}
}

// List returns the paths of regular files whose name ends with the extension,
// sorted lexically. Symlinks are followed. Subdirectories, links to
// directories, dangling links and non-matching files are ignored; they are
// never opened.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, newIOError("list", s.Dir, err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.Ext) {
			continue
		}
		path := filepath.Join(s.Dir, e.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return paths, nil
}
