package tree

import "strings"

// Leaf is one hashed file inside a directory subtree. Path is relative to
// the directory being fingerprinted, so identical subtrees at different
// locations produce identical leaves.
type Leaf struct {
	Path string
	Hash string
}

// Serialize implements merkletree.DataBlock.
func (l Leaf) Serialize() ([]byte, error) {
	return []byte(l.Path + "\x00" + l.Hash), nil
}

// Group is a set of directories with identical contents.
type Group struct {
	Fingerprint string
	Directories []string
	Files       int   // files per directory
	Size        int64 // bytes per directory
}

// Wasted is the space held by every copy but one.
func (g Group) Wasted() int64 {
	return g.Size * int64(len(g.Directories)-1)
}

type subtree struct {
	leaves   []Leaf
	size     int64
	complete bool
}

func parentOf(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return ""
	}
	return path[:i]
}
