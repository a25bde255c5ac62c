package bcl

import "io/fs"

// FilesystemManager provides the filesystem operations the checker needs.
// It abstracts file access to enable testing without touching the real filesystem.
type FilesystemManager interface {
	// Stat returns fresh file info for a path, following symlinks.
	Stat(path string) (fs.FileInfo, error)

	// ReadDir lists the immediate entries of a directory, sorted by name.
	ReadDir(dir string) ([]fs.FileInfo, error)
}
