package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"duplitree/internal/metadata"
)

// EnsureDirectory creates the directory keyed by (scan, path) unless it
// already exists and returns the stored row. created reports whether this
// call inserted it.
func (s *Store) EnsureDirectory(ctx context.Context, scanID int64, parentID *int64, name, path string) (dir *Directory, created bool, err error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO directories (scan_id, parent_id, name, path) VALUES (?, ?, ?, ?)
		ON CONFLICT (scan_id, path) DO NOTHING`,
		scanID, nullableID(parentID), name, path)
	if err != nil {
		return nil, false, fmt.Errorf("insert directory %q: %w", path, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		created = true
	}

	var (
		d      Directory
		parent sql.NullInt64
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT id, scan_id, parent_id, name, path FROM directories WHERE scan_id = ? AND path = ?`,
		scanID, path).Scan(&d.ID, &d.ScanID, &parent, &d.Name, &d.Path)
	if err != nil {
		return nil, false, fmt.Errorf("load directory %q: %w", path, err)
	}
	if parent.Valid {
		d.ParentID = &parent.Int64
	}
	return &d, created, nil
}

// EnsureFile creates the file keyed by (directory, name) unless it exists.
func (s *Store) EnsureFile(ctx context.Context, directoryID int64, name string) (created bool, err error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO files (directory_id, name) VALUES (?, ?)
		ON CONFLICT (directory_id, name) DO NOTHING`,
		directoryID, name)
	if err != nil {
		return false, fmt.Errorf("insert file %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert file %q: %w", name, err)
	}
	return n > 0, nil
}

const fileColumns = `f.id, f.directory_id, d.path, f.name, f.size, f.hash, f.created, f.updated`

// File loads a single file by id.
func (s *Store) File(ctx context.Context, id int64) (*File, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+fileColumns+`
		FROM files f JOIN directories d ON d.id = f.directory_id
		WHERE f.id = ?`, id)

	f, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %d: %w", id, ErrNotFound)
	}
	return f, err
}

// Files lists every file of a scan ordered by path.
func (s *Store) Files(ctx context.Context, scanID int64) ([]File, error) {
	return s.queryFiles(ctx, `SELECT `+fileColumns+`
		FROM files f JOIN directories d ON d.id = f.directory_id
		WHERE d.scan_id = ?
		ORDER BY d.path, f.name`, scanID)
}

// Directories lists every directory of a scan annotated with its depth and
// whether it is expanded for the selected path.
func (s *Store) Directories(ctx context.Context, scanID int64, selected string) ([]DirectoryNode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scan_id, parent_id, name, path FROM directories WHERE scan_id = ? ORDER BY path`, scanID)
	if err != nil {
		return nil, fmt.Errorf("query directories: %w", err)
	}
	defer rows.Close()

	nodes := make([]DirectoryNode, 0)
	for rows.Next() {
		var (
			d      Directory
			parent sql.NullInt64
		)
		if err := rows.Scan(&d.ID, &d.ScanID, &parent, &d.Name, &d.Path); err != nil {
			return nil, fmt.Errorf("scan directory: %w", err)
		}
		if parent.Valid {
			id := parent.Int64
			d.ParentID = &id
		}
		nodes = append(nodes, DirectoryNode{
			Directory: d,
			Depth:     d.Depth(),
			Open:      IsOpen(d.Path, selected),
		})
	}
	return nodes, rows.Err()
}

// SetMetadata stores size and timestamps. When clearHash is set the stored
// digest is dropped in the same statement, so a changed file never keeps a
// hash computed over its old content.
func (s *Store) SetMetadata(ctx context.Context, fileID int64, info metadata.Info, clearHash bool) error {
	query := `UPDATE files SET size = ?, created = ?, updated = ? WHERE id = ?`
	if clearHash {
		query = `UPDATE files SET size = ?, created = ?, updated = ?, hash = NULL WHERE id = ?`
	}

	_, err := s.db.ExecContext(ctx, query,
		info.Size, info.Created.Format(timeLayout), info.Updated.Format(timeLayout), fileID)
	if err != nil {
		return fmt.Errorf("update metadata for file %d: %w", fileID, err)
	}
	return nil
}

// ClearMetadata resets a file to the structural state: size, timestamps and
// hash are dropped, which takes it out of every size and hash group.
func (s *Store) ClearMetadata(ctx context.Context, fileID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE files SET size = NULL, hash = NULL, created = NULL, updated = NULL WHERE id = ?`, fileID)
	if err != nil {
		return fmt.Errorf("clear metadata for file %d: %w", fileID, err)
	}
	return nil
}

// SetHash stores a completed digest.
func (s *Store) SetHash(ctx context.Context, fileID int64, digest string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE files SET hash = ? WHERE id = ?`, digest, fileID); err != nil {
		return fmt.Errorf("update hash for file %d: %w", fileID, err)
	}
	return nil
}

func (s *Store) queryFiles(ctx context.Context, query string, args ...any) ([]File, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	files := make([]File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

func scanFile(row rowScanner, extra ...any) (*File, error) {
	var (
		f                File
		size             sql.NullInt64
		digest           sql.NullString
		created, updated sql.NullString
	)
	dest := append([]any{&f.ID, &f.DirectoryID, &f.DirectoryPath, &f.Name, &size, &digest, &created, &updated}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if size.Valid {
		f.Size = &size.Int64
	}
	if digest.Valid {
		f.Hash = &digest.String
	}
	var err error
	if f.Created, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("file %d: %w", f.ID, err)
	}
	if f.Updated, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("file %d: %w", f.ID, err)
	}
	return &f, nil
}

func parseTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", s.String, err)
	}
	return &t, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
