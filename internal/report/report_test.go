package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"duplitree/internal/engine"
	"duplitree/internal/hash"
	"duplitree/internal/store"
	"duplitree/internal/tree"
)

func ptr[T any](v T) *T { return &v }

func TestFormatDuplicates_NoGroups(t *testing.T) {
	out := FormatDuplicates(nil)
	if !strings.Contains(out, "No duplicates") {
		t.Errorf("Expected no duplicates message, got: %s", out)
	}
}

func TestFormatDuplicates_Groups(t *testing.T) {
	groups := []store.DuplicateGroup{
		{
			Hash: "abc",
			Size: 2048,
			Files: []store.File{
				{DirectoryPath: "/a", Name: "x.bin"},
				{DirectoryPath: "/b", Name: "x.bin"},
				{DirectoryPath: "", Name: "y.bin"},
			},
		},
	}

	out := FormatDuplicates(groups)

	for _, want := range []string{"2.0 KiB × 3", "/a/x.bin", "/b/x.bin", "/y.bin", "2 redundant copies", "4.0 KiB reclaimable"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatDirectories(t *testing.T) {
	if out := FormatDirectories(nil); !strings.Contains(out, "No duplicate directories") {
		t.Errorf("Expected empty message, got: %s", out)
	}

	out := FormatDirectories([]tree.Group{
		{Fingerprint: "ff00", Directories: []string{"/backup", "/photos"}, Files: 2, Size: 300},
	})
	for _, want := range []string{"2 files", "/backup", "/photos", "ff00", "1 groups"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatProcess(t *testing.T) {
	r := &engine.Report{
		Scan: &engine.ScanReport{
			DirectoriesSeen: 2, FilesSeen: 3, DirectoriesCreated: 2, FilesCreated: 3,
			Skipped: []*engine.EntrySkipError{{Path: "/link", Reason: "symlink"}},
		},
		Metadata: &engine.BatchReport{Phase: "metadata", Total: 3, Succeeded: 3},
		Hashing: &engine.BatchReport{
			Phase: "hashing", Total: 2, Succeeded: 1,
			Skipped: []error{&engine.HashError{Path: "/root/locked.bin", Err: errors.New("permission denied")}},
		},
	}

	out := FormatProcess(r)

	for _, want := range []string{
		"Scan: 2 directories, 3 files",
		"Metadata: 3/3 succeeded",
		"Hashing: 1/2 succeeded, 1 skipped",
		"Skipped 2 entries",
		"/link: skipped (symlink)",
		"permission denied",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatBatch_Invalidated(t *testing.T) {
	out := FormatBatch(&engine.BatchReport{Phase: "metadata", Total: 4, Succeeded: 4, Invalidated: 2})
	if !strings.Contains(out, "2 changed since last hash") {
		t.Errorf("Expected invalidation count, got: %s", out)
	}
}

func TestFormatListing(t *testing.T) {
	l := &engine.Listing{
		Selected: "/a",
		Directories: []store.DirectoryNode{
			{Directory: store.Directory{Path: ""}, Depth: 0, Open: true},
			{Directory: store.Directory{Path: "/a", Name: "a"}, Depth: 1, Open: true},
			{Directory: store.Directory{Path: "/a/deep", Name: "deep"}, Depth: 2},
			{Directory: store.Directory{Path: "/b", Name: "b"}, Depth: 1},
			{Directory: store.Directory{Path: "/b/hidden", Name: "hidden"}, Depth: 2},
		},
		Files: []store.AnnotatedFile{
			{File: store.File{DirectoryPath: "/a", Name: "dup.txt", Size: ptr(int64(10)), Hash: ptr("h")}, SameSizeCount: 2, SameHashCount: 2},
			{File: store.File{DirectoryPath: "/a", Name: "solo.txt", Size: ptr(int64(20))}, SameSizeCount: 1},
			{File: store.File{DirectoryPath: "/a", Name: "new.txt"}},
		},
	}

	out := FormatListing(l)

	for _, want := range []string{"- /", "  - a *", "    + deep", "  + b", "dup.txt (10 B, 2 copies)", "solo.txt (20 B, unique size)", "new.txt (?, structural)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("Children of a collapsed directory should not be shown:\n%s", out)
	}
}

func TestFormatScans(t *testing.T) {
	if out := FormatScans(nil, nil); !strings.Contains(out, "No scans") {
		t.Errorf("Expected empty message, got: %s", out)
	}

	scans := []*store.Scan{{ID: 7, BasePath: "/data", Algorithm: hash.SHA256, Created: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)}}
	stats := map[int64]*store.ScanStats{7: {Directories: 3, Files: 10, Sized: 10, Hashed: 4, TotalSize: 1024}}

	out := FormatScans(scans, stats)
	for _, want := range []string{"#7", "/data", "[sha256]", "2024-05-01 12:30", "files=10", "hashed=4", "1.0 KiB"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	scan := &store.Scan{ID: 1, BasePath: "/data", Algorithm: hash.MD5}
	groups := []store.DuplicateGroup{{
		Hash:  "abc",
		Size:  5,
		Files: []store.File{{DirectoryPath: "/a", Name: "f"}, {DirectoryPath: "/b", Name: "f"}},
	}}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, scan, groups); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded serializedReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.Root != "/data" || decoded.Algorithm != "md5" || decoded.Scan != 1 {
		t.Errorf("Unexpected header: %+v", decoded)
	}
	if len(decoded.Groups) != 1 || decoded.Groups[0].Wasted != 5 || len(decoded.Groups[0].Files) != 2 {
		t.Errorf("Unexpected groups: %+v", decoded.Groups)
	}
	if decoded.Groups[0].Files[1].Path != "/b/f" {
		t.Errorf("Unexpected path %q", decoded.Groups[0].Files[1].Path)
	}
}

func TestWriteJSON_EmptyGroups(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, &store.Scan{Algorithm: hash.MD5}, nil); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"groups": []`) {
		t.Errorf("Expected an empty groups array, got %s", buf.String())
	}
}
