// Package staging writes output files under temporary names and moves them into
// place only when every file of a run is complete.
package staging

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type file struct {
	tmp   string
	final string
}

// Stage set of files pending for one run. Not safe for concurrent use.
type Stage struct {
	files []file
}

// New creates an empty stage.
func New() *Stage {
	return &Stage{}
}

// Reserve creates an empty temporary file next to path and returns its name.
// The temporary name keeps the extension of path.
func (s *Stage) Reserve(path string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create directory %s", dir)
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	pattern := "." + strings.TrimSuffix(base, ext) + ".*" + ext

	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", errors.Wrapf(err, "reserve %s", path)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", errors.Wrapf(err, "reserve %s", path)
	}

	s.files = append(s.files, file{tmp: f.Name(), final: path})
	return f.Name(), nil
}

// Commit renames every reserved file to its final path and returns the final paths.
// If a rename fails, files already moved by this call are removed and the rest are discarded.
func (s *Stage) Commit() ([]string, error) {
	finals := make([]string, 0, len(s.files))
	for i, f := range s.files {
		if err := os.Rename(f.tmp, f.final); err != nil {
			for _, done := range finals {
				_ = os.Remove(done)
			}
			s.files = s.files[i:]
			s.Abort()
			return nil, errors.Wrapf(err, "move %s into place", f.final)
		}
		finals = append(finals, f.final)
	}

	s.files = nil
	return finals, nil
}

// Abort removes every reserved file that has not been committed.
func (s *Stage) Abort() {
	for _, f := range s.files {
		_ = os.Remove(f.tmp)
	}
	s.files = nil
}

// Len returns the number of pending files.
func (s *Stage) Len() int {
	return len(s.files)
}
