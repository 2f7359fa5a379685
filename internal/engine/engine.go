// Package engine drives a scan through its phases: walking the tree into the
// entity store, reading metadata, hashing size-collision candidates and
// querying duplicates.
package engine

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"duplitree/internal/hash"
	"duplitree/internal/metadata"
	"duplitree/internal/store"
)

// Progress receives per-file updates from the batch phases.
type Progress interface {
	Begin(phase string, total int64)
	Step(path string)
	End()
}

type noProgress struct{}

func (noProgress) Begin(string, int64) {}
func (noProgress) Step(string)         {}
func (noProgress) End()                {}

// Engine runs the scan phases of one store.
type Engine struct {
	store    *store.Store
	reader   *metadata.Reader
	logger   *log.Logger
	progress Progress
	workers  int
	exclude  []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger; output is discarded by default.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithWorkers bounds the number of files processed concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithExclude sets doublestar patterns the walk ignores.
func WithExclude(patterns []string) Option {
	return func(e *Engine) { e.exclude = patterns }
}

// WithLocation sets the time zone file timestamps are stored in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.reader = metadata.NewReader(loc) }
}

// WithProgress reports per-file progress of the batch phases to p.
func WithProgress(p Progress) Option {
	return func(e *Engine) {
		if p != nil {
			e.progress = p
		}
	}
}

// New returns an Engine over st with the given options applied.
func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		reader:   metadata.NewReader(time.UTC),
		logger:   log.New(io.Discard),
		progress: noProgress{},
		workers:  runtime.NumCPU() * 2,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the underlying entity store for read-only lookups.
func (e *Engine) Store() *store.Store {
	return e.store
}

// CreateScan records a scan of basePath hashed with alg. The path is made
// absolute but not checked; an unusable root fails RunScan instead.
func (e *Engine) CreateScan(ctx context.Context, basePath string, alg hash.Algorithm) (*store.Scan, error) {
	if !alg.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrAlgorithm, alg)
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	scan, err := e.store.CreateScan(ctx, filepath.Clean(abs), alg)
	if err != nil {
		return nil, err
	}
	e.logger.Info("created scan", "id", scan.ID, "path", scan.BasePath, "algorithm", scan.Algorithm)
	return scan, nil
}
