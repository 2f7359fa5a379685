package tree

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/txaty/go-merkletree"

	"duplitree/internal/hash"
	"duplitree/internal/store"
)

// ErrEmpty is returned when fingerprinting a directory with no files.
var ErrEmpty = errors.New("no leaves to fingerprint")

// Fingerprint builds a Merkle root over the leaves, sorted by path so the
// result does not depend on input order. Leaves and inner nodes are hashed
// with xxHash; the file digests inside the leaves carry the real content
// identity, the tree only has to combine them.
func Fingerprint(leaves []Leaf) (string, error) {
	if len(leaves) == 0 {
		return "", ErrEmpty
	}

	sorted := make([]Leaf, len(leaves))
	copy(sorted, leaves)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	// go-merkletree needs at least two blocks
	if len(sorted) == 1 {
		data, _ := sorted[0].Serialize()
		sum, err := hash.XXHashFunc(data)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(sum), nil
	}

	blocks := make([]merkletree.DataBlock, len(sorted))
	for i := range sorted {
		blocks[i] = sorted[i]
	}

	mt, err := merkletree.New(&merkletree.Config{
		HashFunc: hash.XXHashFunc,
		Mode:     merkletree.ModeTreeBuild,
	}, blocks)
	if err != nil {
		return "", fmt.Errorf("failed to build merkle tree: %w", err)
	}
	return hex.EncodeToString(mt.Root), nil
}

// DuplicateDirectories fingerprints every non-empty directory whose whole
// subtree is hashed and groups directories sharing a fingerprint. A subtree
// holding an unhashed file is never fingerprinted; such a file either has a
// unique size, so no other directory can match, or has not been processed.
// Groups that only mirror a duplicated parent group are dropped.
func DuplicateDirectories(dirs []store.Directory, files []store.File) ([]Group, error) {
	subtrees := make(map[string]*subtree, len(dirs))
	for _, d := range dirs {
		subtrees[d.Path] = &subtree{complete: true}
	}

	for _, f := range files {
		filePath := f.Path()
		for dir := f.DirectoryPath; ; dir = parentOf(dir) {
			if st, ok := subtrees[dir]; ok {
				if f.Hash == nil || f.Size == nil {
					st.complete = false
				} else {
					st.leaves = append(st.leaves, Leaf{
						Path: strings.TrimPrefix(filePath, dir),
						Hash: *f.Hash,
					})
					st.size += *f.Size
				}
			}
			if dir == "" {
				break
			}
		}
	}

	byFingerprint := make(map[string]*Group)
	for _, d := range dirs {
		st := subtrees[d.Path]
		if !st.complete || len(st.leaves) == 0 {
			continue
		}

		fp, err := Fingerprint(st.leaves)
		if err != nil {
			return nil, fmt.Errorf("fingerprint %q: %w", d.Path, err)
		}

		group, ok := byFingerprint[fp]
		if !ok {
			group = &Group{Fingerprint: fp, Files: len(st.leaves), Size: st.size}
			byFingerprint[fp] = group
		}
		group.Directories = append(group.Directories, d.Path)
	}

	// Fingerprint of every directory that has at least one copy
	groupOf := make(map[string]string)
	for fp, g := range byFingerprint {
		if len(g.Directories) > 1 {
			for _, p := range g.Directories {
				groupOf[p] = fp
			}
		}
	}

	groups := make([]Group, 0)
	for _, g := range byFingerprint {
		if len(g.Directories) < 2 || impliedByParent(g, groupOf) {
			continue
		}
		sort.Strings(g.Directories)
		groups = append(groups, *g)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Wasted() != groups[j].Wasted() {
			return groups[i].Wasted() > groups[j].Wasted()
		}
		return groups[i].Directories[0] < groups[j].Directories[0]
	})
	return groups, nil
}

// impliedByParent reports whether every member of g sits in a distinct
// copy of one parent group. Such a group repeats what the parent group
// already says; any other arrangement is a match of its own.
func impliedByParent(g *Group, groupOf map[string]string) bool {
	var parentGroup string
	parents := make(map[string]bool, len(g.Directories))
	for i, p := range g.Directories {
		if p == "" {
			return false
		}
		parent := parentOf(p)
		fp, ok := groupOf[parent]
		if !ok || parents[parent] || (i > 0 && fp != parentGroup) {
			return false
		}
		parentGroup = fp
		parents[parent] = true
	}
	return true
}
