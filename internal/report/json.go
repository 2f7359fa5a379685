package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"duplitree/internal/store"
)

type serializedFile struct {
	Path    string     `json:"path"`
	Updated *time.Time `json:"updated,omitempty"`
}

type serializedGroup struct {
	Hash   string           `json:"hash"`
	Size   int64            `json:"size"`
	Wasted int64            `json:"wasted"`
	Files  []serializedFile `json:"files"`
}

type serializedReport struct {
	Generator string            `json:"generator"`
	Created   time.Time         `json:"created"`
	Scan      int64             `json:"scan"`
	Root      string            `json:"root"`
	Algorithm string            `json:"algorithm"`
	Groups    []serializedGroup `json:"groups"`
}

// WriteJSON writes the duplicate groups of a scan as indented JSON.
func WriteJSON(w io.Writer, scan *store.Scan, groups []store.DuplicateGroup) error {
	serialized := serializedReport{
		Generator: "duplitree",
		Created:   time.Now().UTC(),
		Scan:      scan.ID,
		Root:      scan.BasePath,
		Algorithm: scan.Algorithm.String(),
		Groups:    make([]serializedGroup, 0, len(groups)),
	}

	for _, g := range groups {
		sg := serializedGroup{
			Hash:   g.Hash,
			Size:   g.Size,
			Wasted: g.Wasted(),
			Files:  make([]serializedFile, 0, len(g.Files)),
		}
		for _, f := range g.Files {
			sg.Files = append(sg.Files, serializedFile{Path: f.Path(), Updated: f.Updated})
		}
		serialized.Groups = append(serialized.Groups, sg)
	}

	data, err := json.MarshalIndent(serialized, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
