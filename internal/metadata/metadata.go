// Package metadata reads size and timestamps for a single file.
package metadata

import "time"

// Info is the stat result the store persists for a file.
type Info struct {
	Size    int64
	Created time.Time
	Updated time.Time
}

// Reader stats files and normalizes timestamps into Location.
type Reader struct {
	Location *time.Location
}

// NewReader returns a Reader for loc, or UTC when loc is nil.
func NewReader(loc *time.Location) *Reader {
	if loc == nil {
		loc = time.UTC
	}
	return &Reader{Location: loc}
}

// Read stats path. Directories and other non-regular files are rejected
// because they carry no content to compare.
func (r *Reader) Read(path string) (Info, error) {
	info, err := statFile(path)
	if err != nil {
		return Info{}, err
	}

	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	info.Created = info.Created.In(loc)
	info.Updated = info.Updated.In(loc)
	return info, nil
}
