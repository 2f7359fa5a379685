package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// SizeCollisions returns the files of a scan whose size is shared by at
// least one other file of the same scan. Files without a size never
// qualify. With onlyUnhashed set, files that already carry a hash are left
// out so a resumed batch only picks up the remaining work.
func (s *Store) SizeCollisions(ctx context.Context, scanID int64, onlyUnhashed bool) ([]File, error) {
	query := `SELECT ` + fileColumns + `
		FROM files f JOIN directories d ON d.id = f.directory_id
		WHERE d.scan_id = ? AND f.size IN (
			SELECT f2.size
			FROM files f2 JOIN directories d2 ON d2.id = f2.directory_id
			WHERE d2.scan_id = ? AND f2.size IS NOT NULL
			GROUP BY f2.size
			HAVING COUNT(*) > 1
		)`
	if onlyUnhashed {
		query += ` AND f.hash IS NULL`
	}
	query += ` ORDER BY f.size DESC, d.path, f.name`

	return s.queryFiles(ctx, query, scanID, scanID)
}

// FileFilter narrows Annotate's output. Counts are always computed over the
// whole scan, the filter only decides which annotated rows are returned.
type FileFilter struct {
	// DirectoryPath restricts the result to files directly inside one
	// directory ("" is the root).
	DirectoryPath *string
	// DuplicatesOnly keeps files whose same_hash_count is above 1.
	DuplicatesOnly bool
}

// Annotate returns the files of a scan with same_size_count and
// same_hash_count. Both counts are partitioned within the scan only.
func (s *Store) Annotate(ctx context.Context, scanID int64, filter FileFilter) ([]AnnotatedFile, error) {
	var (
		conds []string
		args  = []any{scanID}
	)
	if filter.DirectoryPath != nil {
		conds = append(conds, "dir_path = ?")
		args = append(args, *filter.DirectoryPath)
	}
	if filter.DuplicatesOnly {
		conds = append(conds, "same_hash_count > 1")
	}

	query := `SELECT id, directory_id, dir_path, name, size, hash, created, updated, same_size_count, same_hash_count
		FROM (
			SELECT f.id, f.directory_id, d.path AS dir_path, f.name, f.size, f.hash, f.created, f.updated,
				CASE WHEN f.size IS NULL THEN 0 ELSE COUNT(*) OVER (PARTITION BY f.size) END AS same_size_count,
				CASE WHEN f.hash IS NULL THEN 0 ELSE COUNT(*) OVER (PARTITION BY f.hash) END AS same_hash_count
			FROM files f JOIN directories d ON d.id = f.directory_id
			WHERE d.scan_id = ?
		) f`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY dir_path, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("annotate files: %w", err)
	}
	defer rows.Close()

	files := make([]AnnotatedFile, 0)
	for rows.Next() {
		var af AnnotatedFile
		f, err := scanFile(rows, &af.SameSizeCount, &af.SameHashCount)
		if err != nil {
			return nil, err
		}
		af.File = *f
		files = append(files, af)
	}
	return files, rows.Err()
}

// DuplicateGroups collects files sharing a hash into groups, largest waste
// first.
func (s *Store) DuplicateGroups(ctx context.Context, scanID int64) ([]DuplicateGroup, error) {
	files, err := s.Annotate(ctx, scanID, FileFilter{DuplicatesOnly: true})
	if err != nil {
		return nil, err
	}

	byHash := make(map[string]*DuplicateGroup)
	order := make([]string, 0)
	for _, af := range files {
		digest := *af.Hash
		group, ok := byHash[digest]
		if !ok {
			group = &DuplicateGroup{Hash: digest}
			if af.Size != nil {
				group.Size = *af.Size
			}
			byHash[digest] = group
			order = append(order, digest)
		}
		group.Files = append(group.Files, af.File)
	}

	groups := make([]DuplicateGroup, 0, len(order))
	for _, digest := range order {
		groups = append(groups, *byHash[digest])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Wasted() != groups[j].Wasted() {
			return groups[i].Wasted() > groups[j].Wasted()
		}
		return groups[i].Hash < groups[j].Hash
	})
	return groups, nil
}
