package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"duplitree/internal/engine"
	"duplitree/internal/store"
	"duplitree/internal/tree"
)

func size(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}

// FormatProcess renders the outcome of a full pipeline run.
func FormatProcess(r *engine.Report) string {
	var b strings.Builder
	if r.Scan != nil {
		b.WriteString(FormatScan(r.Scan))
	}
	for _, batch := range []*engine.BatchReport{r.Metadata, r.Hashing} {
		if batch != nil {
			b.WriteString(FormatBatch(batch))
		}
	}

	skipped := r.Skipped()
	if len(skipped) > 0 {
		fmt.Fprintf(&b, "\n⚠ Skipped %d entries:\n", len(skipped))
		for _, err := range skipped {
			fmt.Fprintf(&b, "  ! %v\n", err)
		}
	}
	return b.String()
}

func FormatScan(r *engine.ScanReport) string {
	return fmt.Sprintf("Scan: %d directories, %d files (%d new directories, %d new files, %d skipped)\n",
		r.DirectoriesSeen, r.FilesSeen, r.DirectoriesCreated, r.FilesCreated, len(r.Skipped))
}

func FormatBatch(r *engine.BatchReport) string {
	line := fmt.Sprintf("%s: %d/%d succeeded, %d skipped",
		strings.ToUpper(r.Phase[:1])+r.Phase[1:], r.Succeeded, r.Total, len(r.Skipped))
	if r.Invalidated > 0 {
		line += fmt.Sprintf(", %d changed since last hash", r.Invalidated)
	}
	return line + "\n"
}

// FormatDuplicates renders duplicate groups in the order given.
func FormatDuplicates(groups []store.DuplicateGroup) string {
	if len(groups) == 0 {
		return "No duplicates found.\n"
	}

	var (
		b      strings.Builder
		wasted int64
		copies int
	)
	for _, g := range groups {
		fmt.Fprintf(&b, "%s × %d (hash: %s)\n", size(g.Size), len(g.Files), g.Hash)
		for _, f := range g.Files {
			fmt.Fprintf(&b, "  = %s\n", f.Path())
		}
		b.WriteString("\n")
		wasted += g.Wasted()
		copies += len(g.Files) - 1
	}

	fmt.Fprintf(&b, "Summary: %d groups, %d redundant copies, %s reclaimable\n",
		len(groups), copies, size(wasted))
	return b.String()
}

func FormatDirectories(groups []tree.Group) string {
	if len(groups) == 0 {
		return "No duplicate directories found.\n"
	}

	var (
		b      strings.Builder
		wasted int64
	)
	for _, g := range groups {
		fmt.Fprintf(&b, "%d files, %s × %d (fingerprint: %s)\n", g.Files, size(g.Size), len(g.Directories), g.Fingerprint)
		for _, d := range g.Directories {
			if d == "" {
				d = "/"
			}
			fmt.Fprintf(&b, "  = %s\n", d)
		}
		b.WriteString("\n")
		wasted += g.Wasted()
	}

	fmt.Fprintf(&b, "Summary: %d groups, %s reclaimable\n", len(groups), size(wasted))
	return b.String()
}

// FormatListing draws the directory tree expanded along the selected path
// and the files of the selected directory.
func FormatListing(l *engine.Listing) string {
	var b strings.Builder

	selectedDepth := store.Depth(l.Selected)
	for _, d := range l.Directories {
		// Show a directory when its parent is expanded
		if d.Path != "" && !store.IsOpen(parentPath(d.Path), l.Selected) {
			continue
		}

		marker := "+"
		if d.Open {
			marker = "-"
		}
		name := d.Name
		if d.Path == "" {
			name = "/"
		}
		if d.Path == l.Selected {
			name += " *"
		}
		fmt.Fprintf(&b, "%s%s %s\n", strings.Repeat("  ", d.Depth), marker, name)
	}

	indent := strings.Repeat("  ", selectedDepth+1)
	for _, f := range l.Files {
		status := f.State().String()
		switch {
		case f.Duplicate():
			status = fmt.Sprintf("%d copies", f.SameHashCount)
		case f.SameSizeCount == 1:
			status = "unique size"
		}

		fileSize := "?"
		if f.Size != nil {
			fileSize = size(*f.Size)
		}
		fmt.Fprintf(&b, "%s%s (%s, %s)\n", indent, f.Name, fileSize, status)
	}
	return b.String()
}

// FormatScans renders one line per scan with its progress counters.
func FormatScans(scans []*store.Scan, stats map[int64]*store.ScanStats) string {
	if len(scans) == 0 {
		return "No scans recorded.\n"
	}

	var b strings.Builder
	for _, s := range scans {
		fmt.Fprintf(&b, "#%d  %s  [%s]  %s", s.ID, s.BasePath, s.Algorithm, s.Created.Format("2006-01-02 15:04"))
		if st, ok := stats[s.ID]; ok {
			fmt.Fprintf(&b, "  dirs=%d files=%d sized=%d hashed=%d total=%s",
				st.Directories, st.Files, st.Sized, st.Hashed, size(st.TotalSize))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func parentPath(p string) string {
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return ""
	}
	return p[:i]
}
