package engine

import (
	"context"

	"duplitree/internal/store"
)

// Report combines the outcome of every phase Process ran.
type Report struct {
	Scan     *ScanReport
	Metadata *BatchReport
	Hashing  *BatchReport
}

// Skipped lists every entry any phase had to leave out.
func (r *Report) Skipped() []error {
	var skipped []error
	if r.Scan != nil {
		for _, s := range r.Scan.Skipped {
			skipped = append(skipped, s)
		}
	}
	for _, b := range []*BatchReport{r.Metadata, r.Hashing} {
		if b != nil {
			skipped = append(skipped, b.Skipped...)
		}
	}
	return skipped
}

// Process runs the whole pipeline: walk the tree, read metadata for every
// file, then hash only the size-collision candidates. Each phase completes
// before the next starts, since grouping by size needs every size known.
// On error the report holds whatever phases finished.
func (e *Engine) Process(ctx context.Context, scan *store.Scan) (*Report, error) {
	report := &Report{}

	var err error
	if report.Scan, err = e.RunScan(ctx, scan); err != nil {
		return report, err
	}
	if report.Metadata, err = e.ReadAllMetadata(ctx, scan); err != nil {
		return report, err
	}
	if report.Hashing, err = e.HashCandidates(ctx, scan); err != nil {
		return report, err
	}
	return report, nil
}
