// Package io provides the output file systems the emulator writes its
// memory and trace dumps to.
package io

import (
	"bytes"
	"io"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
)

// CreateFS defines a file system interface that supports creating files and directories.
type CreateFS interface {
	// Sub returns a filesystem for a subdirectory.
	Sub(name string) (sub CreateFS, err error)
	// Create creates a new file for writing.
	Create(name string) (file io.WriteCloser, err error)
	// Mkdir creates a new directory with the specified permissions.
	Mkdir(name string, filemode fs.FileMode) (err error)
}

// DirFS is a CreateFS rooted at an operating system directory.
type DirFS string

var _ CreateFS = DirFS("")

func (dir DirFS) join(name string) string {
	return filepath.Join(string(dir), filepath.FromSlash(name))
}

// Sub returns the subdirectory, or an fs.ErrNotExist error.
func (dir DirFS) Sub(name string) (sub CreateFS, err error) {
	full := dir.join(name)
	info, err := os.Stat(full)
	if err != nil {
		return
	}
	if !info.IsDir() {
		err = &fs.PathError{Op: "sub", Path: full, Err: fs.ErrNotExist}
		return
	}

	sub = DirFS(full)
	return
}

// Create creates or truncates a file.
func (dir DirFS) Create(name string) (file io.WriteCloser, err error) {
	return os.Create(dir.join(name))
}

// Mkdir creates a directory.
func (dir DirFS) Mkdir(name string, filemode fs.FileMode) (err error) {
	return os.Mkdir(dir.join(name), filemode)
}

// MemFS is an in-memory CreateFS.
type MemFS struct {
	ReadOnly bool // If set, Create and Mkdir fail with fs.ErrPermission.

	prefix string
	files  map[string]*bytes.Buffer
	dirs   map[string]fs.FileMode
}

var _ CreateFS = (*MemFS)(nil)

// NewMemFS creates an empty in-memory file system.
func NewMemFS() (mfs *MemFS) {
	mfs = &MemFS{
		prefix: ".",
		files:  map[string]*bytes.Buffer{},
		dirs:   map[string]fs.FileMode{".": fs.ModeDir | 0755},
	}

	return
}

func (mfs *MemFS) join(name string) string {
	return path.Join(mfs.prefix, name)
}

// Sub returns the subdirectory, or an fs.ErrNotExist error.
func (mfs *MemFS) Sub(name string) (sub CreateFS, err error) {
	full := mfs.join(name)
	if _, ok := mfs.dirs[full]; !ok {
		err = &fs.PathError{Op: "sub", Path: full, Err: fs.ErrNotExist}
		return
	}

	sub = &MemFS{
		ReadOnly: mfs.ReadOnly,
		prefix:   full,
		files:    mfs.files,
		dirs:     mfs.dirs,
	}
	return
}

// Create creates or truncates a file. The parent directory must exist.
func (mfs *MemFS) Create(name string) (file io.WriteCloser, err error) {
	full := mfs.join(name)
	if mfs.ReadOnly {
		err = &fs.PathError{Op: "create", Path: full, Err: fs.ErrPermission}
		return
	}
	if _, ok := mfs.dirs[path.Dir(full)]; !ok {
		err = &fs.PathError{Op: "create", Path: full, Err: fs.ErrNotExist}
		return
	}
	if _, ok := mfs.dirs[full]; ok {
		err = &fs.PathError{Op: "create", Path: full, Err: fs.ErrExist}
		return
	}

	buf := &bytes.Buffer{}
	mfs.files[full] = buf
	file = nopCloser{buf}
	return
}

// Mkdir creates a directory. The parent directory must exist.
func (mfs *MemFS) Mkdir(name string, filemode fs.FileMode) (err error) {
	full := mfs.join(name)
	if mfs.ReadOnly {
		err = &fs.PathError{Op: "mkdir", Path: full, Err: fs.ErrPermission}
		return
	}
	if _, ok := mfs.dirs[path.Dir(full)]; !ok {
		err = &fs.PathError{Op: "mkdir", Path: full, Err: fs.ErrNotExist}
		return
	}
	_, isDir := mfs.dirs[full]
	_, isFile := mfs.files[full]
	if isDir || isFile {
		err = &fs.PathError{Op: "mkdir", Path: full, Err: fs.ErrExist}
		return
	}

	mfs.dirs[full] = fs.ModeDir | filemode.Perm()
	return
}

// ReadFile returns the contents of a created file.
func (mfs *MemFS) ReadFile(name string) (data []byte, err error) {
	full := mfs.join(name)
	buf, ok := mfs.files[full]
	if !ok {
		err = &fs.PathError{Op: "read", Path: full, Err: fs.ErrNotExist}
		return
	}

	data = bytes.Clone(buf.Bytes())
	return
}

// Files returns the sorted names of every created file, relative to the root.
func (mfs *MemFS) Files() []string {
	return slices.Sorted(maps.Keys(mfs.files))
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
