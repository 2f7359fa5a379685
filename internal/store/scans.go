package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"duplitree/internal/hash"
)

const timeLayout = time.RFC3339Nano

// CreateScan records a new scan. basePath should already be absolute.
func (s *Store) CreateScan(ctx context.Context, basePath string, alg hash.Algorithm) (*Scan, error) {
	if !alg.Valid() {
		return nil, fmt.Errorf("unsupported hash algorithm: %s", alg)
	}

	created := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (base_path, algorithm, created) VALUES (?, ?, ?)`,
		basePath, alg.String(), created.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("insert scan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("scan id: %w", err)
	}

	return &Scan{ID: id, BasePath: basePath, Algorithm: alg, Created: created}, nil
}

// Scan loads a scan by id.
func (s *Store) Scan(ctx context.Context, id int64) (*Scan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, base_path, algorithm, created FROM scans WHERE id = ?`, id)

	scan, err := scanScan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scan %d: %w", id, ErrNotFound)
	}
	return scan, err
}

// Scans lists every scan, oldest first.
func (s *Store) Scans(ctx context.Context) ([]*Scan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, base_path, algorithm, created FROM scans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	scans := make([]*Scan, 0)
	for rows.Next() {
		scan, err := scanScan(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// Stats counts the entities of a scan and how many reached each phase.
func (s *Store) Stats(ctx context.Context, scanID int64) (*ScanStats, error) {
	stats := &ScanStats{}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM directories WHERE scan_id = ?`, scanID).Scan(&stats.Directories)
	if err != nil {
		return nil, fmt.Errorf("count directories: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(f.id), COUNT(f.size), COUNT(f.hash), COALESCE(SUM(f.size), 0)
		FROM files f JOIN directories d ON d.id = f.directory_id
		WHERE d.scan_id = ?`, scanID).Scan(&stats.Files, &stats.Sized, &stats.Hashed, &stats.TotalSize)
	if err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScan(row rowScanner) (*Scan, error) {
	var (
		scan    Scan
		alg     string
		created string
	)
	if err := row.Scan(&scan.ID, &scan.BasePath, &alg, &created); err != nil {
		return nil, err
	}

	var err error
	if scan.Algorithm, err = hash.ParseAlgorithm(alg); err != nil {
		return nil, fmt.Errorf("scan %d: %w", scan.ID, err)
	}
	if scan.Created, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("scan %d: bad created time: %w", scan.ID, err)
	}
	return &scan, nil
}
