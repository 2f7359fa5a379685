package engine

import (
	"context"

	"duplitree/internal/hash"
	"duplitree/internal/store"
)

// SelectCandidates returns the files whose size is shared with at least one
// other file of the scan. Only these can have duplicates.
func (e *Engine) SelectCandidates(ctx context.Context, scan *store.Scan) ([]store.File, error) {
	return e.store.SizeCollisions(ctx, scan.ID, false)
}

// HashFile digests one file with the scan's algorithm and stores the result.
// Read failures come back as *HashError and nothing is stored.
func (e *Engine) HashFile(ctx context.Context, scan *store.Scan, file *store.File) (string, error) {
	path := file.AbsPath(scan.BasePath)
	if file.Size == nil {
		return "", &HashError{FileID: file.ID, Path: path, Err: ErrNotSized}
	}

	digest, err := hash.HashFile(ctx, path, scan.Algorithm)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &HashError{FileID: file.ID, Path: path, Err: err}
	}

	if err := e.store.SetHash(ctx, file.ID, digest); err != nil {
		return "", err
	}
	file.Hash = &digest
	return digest, nil
}

// HashCandidates hashes every size-collision candidate that has no hash yet.
// Already hashed files are skipped, so an interrupted batch resumes where it
// stopped.
func (e *Engine) HashCandidates(ctx context.Context, scan *store.Scan) (*BatchReport, error) {
	files, err := e.store.SizeCollisions(ctx, scan.ID, true)
	if err != nil {
		return nil, err
	}

	e.logger.Info("hashing candidates", "scan", scan.ID, "files", len(files), "algorithm", scan.Algorithm)

	report, err := e.forEach(ctx, "hashing", files, func(ctx context.Context, file *store.File) error {
		_, err := e.HashFile(ctx, scan, file)
		return err
	})

	e.logger.Info("hashing done", "scan", scan.ID, "succeeded", report.Succeeded, "skipped", len(report.Skipped))
	return report, err
}
