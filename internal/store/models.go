package store

import (
	"path/filepath"
	"strings"
	"time"

	"duplitree/internal/hash"
)

// Scan is one scanning session rooted at BasePath.
type Scan struct {
	ID        int64
	BasePath  string
	Algorithm hash.Algorithm
	Created   time.Time
}

// Directory paths are relative to the scan base: "" for the root and
// parent.Path + "/" + Name below it.
type Directory struct {
	ID       int64
	ScanID   int64
	ParentID *int64
	Name     string
	Path     string
}

func (d Directory) Depth() int {
	return Depth(d.Path)
}

// AbsPath resolves the directory against the scan base path.
func (d Directory) AbsPath(basePath string) string {
	return absPath(basePath, d.Path)
}

// FileState tracks how far a file has progressed through the pipeline.
type FileState int

const (
	Structural FileState = iota
	Sized
	Hashed
)

func (s FileState) String() string {
	switch s {
	case Structural:
		return "structural"
	case Sized:
		return "sized"
	case Hashed:
		return "hashed"
	default:
		return "unknown"
	}
}

type File struct {
	ID            int64
	DirectoryID   int64
	DirectoryPath string
	Name          string
	Size          *int64
	Hash          *string
	Created       *time.Time
	Updated       *time.Time
}

func (f File) State() FileState {
	switch {
	case f.Size == nil:
		return Structural
	case f.Hash == nil:
		return Sized
	default:
		return Hashed
	}
}

// Path is the file path relative to the scan base.
func (f File) Path() string {
	return f.DirectoryPath + "/" + f.Name
}

func (f File) AbsPath(basePath string) string {
	return filepath.Join(absPath(basePath, f.DirectoryPath), f.Name)
}

// AnnotatedFile carries the per-scan group sizes for a file. Both counts
// include the file itself and are 0 while the field is unknown.
type AnnotatedFile struct {
	File
	SameSizeCount int
	SameHashCount int
}

// Duplicate reports whether another file in the scan has the same hash.
func (f AnnotatedFile) Duplicate() bool {
	return f.SameHashCount > 1
}

// DuplicateGroup is a set of byte-identical files within one scan.
type DuplicateGroup struct {
	Hash  string
	Size  int64
	Files []File
}

// Wasted is the space that would be reclaimed by keeping a single copy.
func (g DuplicateGroup) Wasted() int64 {
	return g.Size * int64(len(g.Files)-1)
}

// DirectoryNode is a directory annotated for tree browsing.
type DirectoryNode struct {
	Directory
	Depth int
	Open  bool
}

// ScanStats summarizes how far a scan has progressed.
type ScanStats struct {
	Directories int
	Files       int
	Sized       int
	Hashed      int
	TotalSize   int64
}

// Depth counts path separators; the root ("") is depth 0.
func Depth(path string) int {
	return strings.Count(path, "/")
}

// IsOpen reports whether the directory at dirPath is expanded when selected
// is the current selection: the root always is, as are selected itself and
// every ancestor of it. selected may omit the leading "/".
func IsOpen(dirPath, selected string) bool {
	if dirPath == "" {
		return true
	}
	selected = normalizePath(selected)
	return selected == dirPath || strings.HasPrefix(selected, dirPath+"/")
}

func normalizePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func absPath(basePath, rel string) string {
	return filepath.Join(basePath, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
}
