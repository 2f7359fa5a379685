package engine

import (
	"context"
	"sync/atomic"

	"duplitree/internal/store"
)

// ReadMetadata stats one file and stores its size and timestamps. A stat
// failure is returned as *MetadataError and resets the file to unsized, so
// it drops out of candidacy until a later read succeeds. If the size or
// modification time changed since the last read, the stored hash is dropped
// so the file is hashed again.
func (e *Engine) ReadMetadata(ctx context.Context, scan *store.Scan, file *store.File) error {
	_, err := e.readMetadata(ctx, scan, file)
	return err
}

func (e *Engine) readMetadata(ctx context.Context, scan *store.Scan, file *store.File) (invalidated bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path := file.AbsPath(scan.BasePath)
	info, err := e.reader.Read(path)
	if err != nil {
		// Values from an earlier run would keep it in size and hash groups
		if file.Size != nil || file.Hash != nil {
			if clearErr := e.store.ClearMetadata(ctx, file.ID); clearErr != nil {
				return false, clearErr
			}
			file.Size, file.Hash, file.Created, file.Updated = nil, nil, nil, nil
			e.logger.Debug("metadata read failed, file reset", "path", path)
		}
		return false, &MetadataError{FileID: file.ID, Path: path, Err: err}
	}

	stale := file.Hash != nil && (file.Size == nil || *file.Size != info.Size ||
		file.Updated == nil || !file.Updated.Equal(info.Updated))

	if err := e.store.SetMetadata(ctx, file.ID, info, stale); err != nil {
		return false, err
	}

	size, created, updated := info.Size, info.Created, info.Updated
	file.Size, file.Created, file.Updated = &size, &created, &updated
	if stale {
		file.Hash = nil
		e.logger.Debug("content changed, hash dropped", "path", path)
	}
	return stale, nil
}

// ReadAllMetadata runs ReadMetadata over every file of the scan. Run it over
// the full file set before selecting candidates; unsized files are invisible
// to size grouping.
func (e *Engine) ReadAllMetadata(ctx context.Context, scan *store.Scan) (*BatchReport, error) {
	files, err := e.store.Files(ctx, scan.ID)
	if err != nil {
		return nil, err
	}

	e.logger.Info("reading metadata", "scan", scan.ID, "files", len(files))

	var invalidated atomic.Int64
	report, err := e.forEach(ctx, "metadata", files, func(ctx context.Context, file *store.File) error {
		stale, err := e.readMetadata(ctx, scan, file)
		if stale {
			invalidated.Add(1)
		}
		return err
	})
	report.Invalidated = int(invalidated.Load())

	e.logger.Info("metadata read",
		"scan", scan.ID,
		"succeeded", report.Succeeded,
		"skipped", len(report.Skipped),
		"invalidated", report.Invalidated)
	return report, err
}
