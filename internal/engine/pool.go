package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"duplitree/internal/store"
)

// BatchReport summarizes a per-file phase. Skipped holds *MetadataError or
// *HashError values; those files were left as they were.
type BatchReport struct {
	Phase       string
	Total       int
	Succeeded   int
	Invalidated int
	Skipped     []error
}

type fileFunc func(ctx context.Context, file *store.File) error

// forEach runs fn over files on a bounded pool. Per-file errors are
// collected into the report; any other error (store failure, cancellation)
// stops the batch and is returned alongside the partial report.
func (e *Engine) forEach(ctx context.Context, phase string, files []store.File, fn fileFunc) (*BatchReport, error) {
	report := &BatchReport{
		Phase:   phase,
		Total:   len(files),
		Skipped: make([]error, 0),
	}
	if len(files) == 0 {
		return report, nil
	}

	e.progress.Begin(phase, int64(len(files)))
	defer e.progress.End()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range files {
		file := &files[i]
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			err := fn(gctx, file)
			if err != nil && !perEntry(err) {
				return err
			}

			mu.Lock()
			if err != nil {
				report.Skipped = append(report.Skipped, err)
				e.logger.Debug("skipped file", "phase", phase, "err", err)
			} else {
				report.Succeeded++
			}
			mu.Unlock()

			e.progress.Step(file.Path())
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return report, err
}
