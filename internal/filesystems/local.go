package filesystems

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// LocalFS reads a checkout on disk. Directory listings are sorted by name
// so walks match MemoryFS ordering.
type LocalFS struct{}

func NewLocalFS() *LocalFS {
	return &LocalFS{}
}

func (lfs *LocalFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (lfs *LocalFS) ReadDir(name string) iter.Seq2[DirEntry, error] {
	return func(yield func(DirEntry, error) bool) {
		entries, err := os.ReadDir(name)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, entry := range entries {
			if !yield(localDirEntry{entry}, nil) {
				return
			}
		}
	}
}

func (lfs *LocalFS) Stat(name string) (FileInfo, error) {
	info, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Walk visits root and everything below it in lexical order. Symlinked
// directories are not followed.
func (lfs *LocalFS) Walk(root string, fn WalkFunc) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fn(path, nil, err)
		}
		info, err := d.Info()
		if err != nil {
			return fn(path, nil, err)
		}
		return fn(path, info, nil)
	})
}

func (lfs *LocalFS) Join(elem ...string) string { return filepath.Join(elem...) }

func (lfs *LocalFS) Base(path string) string { return filepath.Base(path) }

func (lfs *LocalFS) Dir(path string) string { return filepath.Dir(path) }

func (lfs *LocalFS) Rel(basepath, targpath string) (string, error) {
	return filepath.Rel(basepath, targpath)
}

func (lfs *LocalFS) IsAbs(path string) bool { return filepath.IsAbs(path) }

type localDirEntry struct {
	fs.DirEntry
}

func (e localDirEntry) Info() (FileInfo, error) {
	return e.DirEntry.Info()
}
