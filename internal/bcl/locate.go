package bcl

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Locator finds the file holding a content when its canonical path is
// missing. Content files are sometimes written under another extension than
// the one the format declares today, so a file sharing the canonical base
// name in the same directory is accepted as a substitute.
//
// The existence check and the directory listing are two separate calls; when
// the filestore changes during a run the answer is a best-effort snapshot.
type Locator struct {
	fsmgr FilesystemManager
}

// NewLocator creates a Locator on top of the given filesystem.
func NewLocator(fsmgr FilesystemManager) *Locator {
	return &Locator{fsmgr: fsmgr}
}

// Locate returns the path of the file to check for canonical and whether a
// file was found at all.
//
// When canonical does not exist, the files of its directory whose name minus
// extension equals the canonical name minus extension are candidates. A
// single candidate is returned as is; among several the most recently
// modified wins, the first one in listing order on ties.
//
// A missing directory is plain absence. Any other listing failure is
// returned as an error; found is then false and path is canonical, exactly
// as if no candidate existed.
func (l *Locator) Locate(canonical string) (path string, found bool, err error) {
	if _, err := l.fsmgr.Stat(canonical); err == nil {
		return canonical, true, nil
	}

	dir, name := filepath.Dir(canonical), filepath.Base(canonical)
	match := trimExtension(name)

	entries, err := l.fsmgr.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return canonical, false, nil
	}
	if err != nil {
		return canonical, false, fmt.Errorf("listing %s: %w", dir, err)
	}

	var best fs.FileInfo
	for _, e := range entries {
		if e.IsDir() || e.Name() == name {
			continue
		}
		if trimExtension(e.Name()) != match {
			continue
		}
		if best == nil || e.ModTime().After(best.ModTime()) {
			best = e
		}
	}

	if best == nil {
		return canonical, false, nil
	}
	return filepath.Join(dir, best.Name()), true, nil
}

// trimExtension removes the text after the last dot, dot included.
func trimExtension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}
