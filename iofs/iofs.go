// Package iofs backs DataCode's read_file/list_files built-ins with an
// fs.FS, adapted from vippsas/sqlcode's go/mapfs.MapFS: instead of mapping
// a fixed set of embedded asset names to on-disk paths, VirtualFS maps
// uploaded-file names to in-memory content, for session-server
// virtual-environment mode (`--use-ve`).
package iofs

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// VirtualFS is an in-memory fs.FS keyed by filename, the interior used by
// a session's isolated working directory once upload_file has written
// into it. Outside virtual-environment mode, built-ins use os.DirFS
// directly and never touch this type.
type VirtualFS struct {
	files map[string][]byte
}

var _ fs.FS = (*VirtualFS)(nil)

func NewVirtualFS() *VirtualFS {
	return &VirtualFS{files: map[string][]byte{}}
}

// Put stores content under name, overwriting any prior upload of the same
// name.
func (v *VirtualFS) Put(name string, content []byte) {
	v.files[name] = content
}

func (v *VirtualFS) Open(name string) (fs.File, error) {
	if name == "." {
		entries := make([]fs.DirEntry, 0, len(v.files))
		for n, content := range v.files {
			entries = append(entries, fileEntry{name: n, size: int64(len(content))})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		return &virtualDir{entries: entries}, nil
	}
	content, ok := v.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &virtualFile{Reader: bytes.NewReader(content), name: name, size: int64(len(content))}, nil
}

type virtualFile struct {
	*bytes.Reader
	name string
	size int64
}

func (f *virtualFile) Stat() (fs.FileInfo, error) { return fileEntry{name: f.name, size: f.size}, nil }
func (f *virtualFile) Close() error                { return nil }

type fileEntry struct {
	name string
	size int64
}

func (e fileEntry) Name() string               { return e.name }
func (e fileEntry) IsDir() bool                { return false }
func (e fileEntry) Type() fs.FileMode          { return 0 }
func (e fileEntry) Info() (fs.FileInfo, error) { return e, nil }
func (e fileEntry) Size() int64                { return e.size }
func (e fileEntry) Mode() fs.FileMode          { return 0 }
func (e fileEntry) ModTime() time.Time         { return time.Time{} }
func (e fileEntry) Sys() interface{}           { return nil }

type virtualDir struct {
	entries []fs.DirEntry
	pos     int
}

func (d *virtualDir) Stat() (fs.FileInfo, error) { return fileEntry{name: "."}, nil }
func (d *virtualDir) Read([]byte) (int, error)   { return 0, io.EOF }
func (d *virtualDir) Close() error               { return nil }

func (d *virtualDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.pos >= len(d.entries) {
		return nil, io.EOF
	}
	if n <= 0 || d.pos+n > len(d.entries) {
		n = len(d.entries) - d.pos
	}
	out := d.entries[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}

// Host returns the real-filesystem FS rooted at dir, used whenever
// --use-ve is not set.
func Host(dir string) fs.FS {
	if dir == "" {
		dir = "."
	}
	return os.DirFS(dir)
}

// ListNames enumerates leaf names under root matching glob: list_files
// produces an Array of String leaf names, not Paths.
func ListNames(fsys fs.FS, root, glob string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if glob != "" {
			matched, err := filepath.Match(glob, e.Name())
			if err != nil {
				return nil, err
			}
			if !matched {
				continue
			}
		}
		names = append(names, e.Name())
	}
	return names, nil
}
