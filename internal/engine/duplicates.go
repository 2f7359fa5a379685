package engine

import (
	"context"

	"duplitree/internal/store"
	"duplitree/internal/tree"
)

// Duplicates annotates every file of the scan with same_size_count and
// same_hash_count. A file is a confirmed duplicate when same_hash_count > 1.
func (e *Engine) Duplicates(ctx context.Context, scan *store.Scan) ([]store.AnnotatedFile, error) {
	return e.store.Annotate(ctx, scan.ID, store.FileFilter{})
}

// DuplicateGroups returns byte-identical file sets, largest waste first.
func (e *Engine) DuplicateGroups(ctx context.Context, scan *store.Scan) ([]store.DuplicateGroup, error) {
	return e.store.DuplicateGroups(ctx, scan.ID)
}

// DuplicateDirectories returns directories whose whole subtree is identical
// to another directory of the same scan.
func (e *Engine) DuplicateDirectories(ctx context.Context, scan *store.Scan) ([]tree.Group, error) {
	nodes, err := e.store.Directories(ctx, scan.ID, "")
	if err != nil {
		return nil, err
	}
	dirs := make([]store.Directory, 0, len(nodes))
	for _, n := range nodes {
		dirs = append(dirs, n.Directory)
	}

	files, err := e.store.Files(ctx, scan.ID)
	if err != nil {
		return nil, err
	}

	return tree.DuplicateDirectories(dirs, files)
}

// Listing is one directory of a scan as a tree view shows it: every
// directory with its depth and expansion state, plus the files directly in
// the selected directory annotated with their duplicate counts.
type Listing struct {
	Selected    string
	Directories []store.DirectoryNode
	Files       []store.AnnotatedFile
}

func (e *Engine) List(ctx context.Context, scan *store.Scan, selected string) (*Listing, error) {
	selected = normalizeSelection(selected)

	dirs, err := e.store.Directories(ctx, scan.ID, selected)
	if err != nil {
		return nil, err
	}

	files, err := e.store.Annotate(ctx, scan.ID, store.FileFilter{DirectoryPath: &selected})
	if err != nil {
		return nil, err
	}

	return &Listing{Selected: selected, Directories: dirs, Files: files}, nil
}

func normalizeSelection(p string) string {
	for len(p) > 0 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	if p == "" {
		return ""
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return p
}
