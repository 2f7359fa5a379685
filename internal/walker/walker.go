package walker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Skip reasons reported for entries the walk could not or would not record.
const (
	ReasonUnreadable = "unreadable"
	ReasonSymlink    = "symlink"
	ReasonIrregular  = "not a regular file"
)

// Entry is one directory or regular file under the walk root. Paths are
// slash separated and relative to the root: the root itself is "", its
// children are "/name", grandchildren "/name/child" and so on.
type Entry struct {
	Path   string
	Name   string
	Parent string
	IsDir  bool
}

// Skip records an entry left out of the walk.
type Skip struct {
	Path   string
	Reason string
	Err    error
}

func (s Skip) Error() string {
	if s.Err != nil {
		return fmt.Sprintf("%s: %s: %v", s.Path, s.Reason, s.Err)
	}
	return fmt.Sprintf("%s: %s", s.Path, s.Reason)
}

func (s Skip) Unwrap() error {
	return s.Err
}

type Result struct {
	Directories int
	Files       int
	Skipped     []Skip
}

// Options tunes the walk. Exclude holds doublestar patterns: a pattern with a
// "/" is matched against the relative path, one without against the entry
// name, and a trailing "/" restricts the pattern to directories.
type Options struct {
	Exclude []string
}

// VisitFunc receives every entry. Returning an error aborts the walk.
type VisitFunc func(Entry) error

// Walk traverses rootPath, calling visit for the root and every directory and
// regular file below it. Symlinks are never followed. Per-entry failures are
// collected into Result.Skipped; only an unusable root, a cancelled context or
// a visit error stops the walk.
func Walk(ctx context.Context, rootPath string, opts Options, visit VisitFunc) (*Result, error) {
	root, err := openRoot(rootPath)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Skipped: make([]Skip, 0),
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := relative(root, p)
		if relErr != nil {
			result.Skipped = append(result.Skipped, Skip{Path: p, Reason: ReasonUnreadable, Err: relErr})
			return nil
		}

		if err != nil {
			// Listing a directory failed after it was visited, or the entry
			// vanished between listing and stat. Either way keep going.
			result.Skipped = append(result.Skipped, Skip{Path: rel, Reason: ReasonUnreadable, Err: err})
			return nil
		}

		entry := Entry{Path: rel, IsDir: d.IsDir()}
		if rel != "" {
			entry.Name = d.Name()
			entry.Parent = parentOf(rel)

			if opts.excluded(rel, entry.Name, entry.IsDir) {
				if entry.IsDir {
					return filepath.SkipDir
				}
				return nil
			}
		}

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			result.Skipped = append(result.Skipped, Skip{Path: rel, Reason: ReasonSymlink})
			return nil
		case !entry.IsDir && !d.Type().IsRegular():
			result.Skipped = append(result.Skipped, Skip{Path: rel, Reason: ReasonIrregular})
			return nil
		}

		if err := visit(entry); err != nil {
			return err
		}
		if entry.IsDir {
			result.Directories++
		} else {
			result.Files++
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("failed to walk directory: %w", err)
	}

	return result, nil
}

// openRoot resolves symlinks in the root and verifies it is a readable
// directory, so that a bad root fails before anything is visited.
func openRoot(rootPath string) (string, error) {
	root, err := filepath.EvalSymlinks(rootPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root: %w", err)
	}

	f, err := os.Open(root)
	if err != nil {
		return "", fmt.Errorf("failed to open root: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root is not a directory: %s", rootPath)
	}
	return root, nil
}

func relative(root, p string) (string, error) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", nil
	}
	return "/" + filepath.ToSlash(rel), nil
}

func parentOf(rel string) string {
	parent := path.Dir(rel)
	if parent == "/" {
		return ""
	}
	return parent
}

func (o Options) excluded(rel, name string, isDir bool) bool {
	trimmed := strings.TrimPrefix(rel, "/")
	for _, pattern := range o.Exclude {
		dirOnly := strings.HasSuffix(pattern, "/")
		if dirOnly {
			if !isDir {
				continue
			}
			pattern = strings.TrimSuffix(pattern, "/")
		}

		target := name
		if strings.Contains(pattern, "/") {
			target = trimmed
		}
		if matched, err := doublestar.Match(pattern, target); err == nil && matched {
			return true
		}
	}
	return false
}
