package engine

import (
	"context"
	"fmt"
	"os"

	"duplitree/internal/store"
	"duplitree/internal/walker"
)

// ScanReport summarizes one RunScan. Counts only include entities this run
// created; re-running over an unchanged tree reports zero.
type ScanReport struct {
	DirectoriesCreated int
	FilesCreated       int
	DirectoriesSeen    int
	FilesSeen          int
	Skipped            []*EntrySkipError
}

// RunScan walks the scan root and makes sure every directory and regular file
// has an entity. Existing entities are left untouched. Per-entry problems end
// up in the report; an unusable root returns *FatalScanError before anything
// is written. A cancelled walk returns the partial report with the context
// error, and whatever was created stays valid for a later run.
func (e *Engine) RunScan(ctx context.Context, scan *store.Scan) (*ScanReport, error) {
	if err := checkRoot(scan.BasePath); err != nil {
		return nil, &FatalScanError{Path: scan.BasePath, Err: err}
	}

	report := &ScanReport{
		Skipped: make([]*EntrySkipError, 0),
	}

	// Parents are always visited before their children, so one lookup table
	// per walk resolves every parent id without going back to the store.
	dirIDs := make(map[string]int64)

	visit := func(entry walker.Entry) error {
		if entry.IsDir {
			var parentID *int64
			if entry.Path != "" {
				id, ok := dirIDs[entry.Parent]
				if !ok {
					return fmt.Errorf("parent of %q was not recorded", entry.Path)
				}
				parentID = &id
			}

			dir, created, err := e.store.EnsureDirectory(ctx, scan.ID, parentID, entry.Name, entry.Path)
			if err != nil {
				return err
			}
			dirIDs[entry.Path] = dir.ID
			if created {
				report.DirectoriesCreated++
			}
			return nil
		}

		dirID, ok := dirIDs[entry.Parent]
		if !ok {
			return fmt.Errorf("directory of %q was not recorded", entry.Path)
		}
		created, err := e.store.EnsureFile(ctx, dirID, entry.Name)
		if err != nil {
			return err
		}
		if created {
			report.FilesCreated++
		}
		return nil
	}

	e.logger.Info("scanning", "scan", scan.ID, "path", scan.BasePath)

	result, err := walker.Walk(ctx, scan.BasePath, walker.Options{Exclude: e.exclude}, visit)
	if result == nil {
		return nil, &FatalScanError{Path: scan.BasePath, Err: err}
	}

	report.DirectoriesSeen = result.Directories
	report.FilesSeen = result.Files
	for _, skip := range result.Skipped {
		e.logger.Debug("skipped entry", "path", skip.Path, "reason", skip.Reason, "err", skip.Err)
		report.Skipped = append(report.Skipped, &EntrySkipError{Path: skip.Path, Reason: skip.Reason, Err: skip.Err})
	}

	if err != nil {
		e.logger.Warn("scan aborted", "scan", scan.ID, "err", err)
		return report, err
	}

	e.logger.Info("scan complete",
		"scan", scan.ID,
		"directories", report.DirectoriesSeen,
		"files", report.FilesSeen,
		"new_directories", report.DirectoriesCreated,
		"new_files", report.FilesCreated,
		"skipped", len(report.Skipped))

	return report, nil
}

func checkRoot(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	return nil
}
