// Package vfs holds the in-memory project representation that is passed
// whole between the workspace and the generation endpoints.
//
// A Filesystem maps a path to the file stored under it. Directories are never
// stored; hierarchy is derived from "/"-separated path segments by consumers
// such as Tree.
package vfs

import (
	"fmt"
	"sort"
	"strings"
)

// FileType is the only entry type a Filesystem stores.
const FileType = "file"

// VirtualFile is one generated project file. Its Path always equals the key
// it is stored under.
type VirtualFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// Filesystem maps path -> file.
type Filesystem map[string]VirtualFile

// NewFile builds a file entry for path.
func NewFile(path, content string) VirtualFile {
	return VirtualFile{Path: path, Content: content, Type: FileType}
}

// FromContents builds a filesystem from a path -> content mapping, the shape
// the model returns for a fresh project.
func FromContents(files map[string]string) Filesystem {
	fs := make(Filesystem, len(files))
	for p, c := range files {
		fs.Put(p, c)
	}
	return fs
}

// Put replaces (or creates) the entry at path.
func (fs Filesystem) Put(path, content string) {
	fs[path] = NewFile(path, content)
}

// Get returns the content stored at path.
func (fs Filesystem) Get(path string) (string, bool) {
	f, ok := fs[path]
	if !ok {
		return "", false
	}
	return f.Content, true
}

// Paths returns every path in lexicographic order.
func (fs Filesystem) Paths() []string {
	paths := make([]string, 0, len(fs))
	for p := range fs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Listing is the newline-joined path list used as the "file tree" in prompts.
func (fs Filesystem) Listing() string {
	return strings.Join(fs.Paths(), "\n")
}

// Files returns the entries ordered by path.
func (fs Filesystem) Files() []VirtualFile {
	out := make([]VirtualFile, 0, len(fs))
	for _, p := range fs.Paths() {
		out = append(out, fs[p])
	}
	return out
}

// Clone returns a copy that can be edited without touching fs.
func (fs Filesystem) Clone() Filesystem {
	out := make(Filesystem, len(fs))
	for p, f := range fs {
		out[p] = f
	}
	return out
}

// Normalize fills missing path and type fields from the key.
func (fs Filesystem) Normalize() {
	for p, f := range fs {
		if f.Path == "" {
			f.Path = p
		}
		if f.Type == "" {
			f.Type = FileType
		}
		fs[p] = f
	}
}

// Validate checks that every entry is stored under its own path.
func (fs Filesystem) Validate() error {
	for _, p := range fs.Paths() {
		f := fs[p]
		if p == "" {
			return fmt.Errorf("virtual filesystem contains an empty path")
		}
		if f.Path != p {
			return fmt.Errorf("virtual filesystem entry %q declares path %q", p, f.Path)
		}
		if f.Type != FileType {
			return fmt.Errorf("virtual filesystem entry %q has unsupported type %q", p, f.Type)
		}
	}
	return nil
}

// Base returns the last path segment.
func Base(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
