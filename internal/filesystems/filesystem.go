package filesystems

import (
	"errors"
	"io/fs"
	"iter"
	"time"
)

// FileSystem abstracts the file access the loader and validator need, so the
// same code runs against a checkout on disk or the bundled in-memory manifest.
type FileSystem interface {
	// ReadFile reads the named file and returns its contents
	ReadFile(name string) ([]byte, error)

	// ReadDir reads the named directory and returns an iterator over directory entries
	ReadDir(name string) iter.Seq2[DirEntry, error]

	// Stat returns file information for name
	Stat(name string) (FileInfo, error)

	// Walk walks the file tree rooted at root, calling fn for each file or directory
	Walk(root string, fn WalkFunc) error

	Join(elem ...string) string
	Base(path string) string
	Dir(path string) string
	Rel(basepath, targpath string) (string, error)
	IsAbs(path string) bool
}

// DirEntry provides information about a directory entry
type DirEntry interface {
	Name() string
	IsDir() bool
	Type() fs.FileMode
	Info() (FileInfo, error)
}

// FileInfo provides information about a file
type FileInfo interface {
	Name() string
	Size() int64
	Mode() fs.FileMode
	ModTime() time.Time
	IsDir() bool
	Sys() interface{}
}

// WalkFunc is the type of function called by Walk
type WalkFunc func(path string, info FileInfo, err error) error

// SkipDir is used as a return value from WalkFunc to indicate that
// the directory named in the call is to be skipped
var SkipDir = fs.SkipDir

// ErrNotExist is returned (possibly wrapped) when a path is missing.
var ErrNotExist = fs.ErrNotExist

// Exists reports whether name exists on filesystem.
func Exists(filesystem FileSystem, name string) bool {
	_, err := filesystem.Stat(name)
	return err == nil
}

// IsDir reports whether name exists and is a directory.
func IsDir(filesystem FileSystem, name string) bool {
	info, err := filesystem.Stat(name)
	return err == nil && info.IsDir()
}

// IsNotExist reports whether err means the path was missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
