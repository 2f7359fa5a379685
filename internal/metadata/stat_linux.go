//go:build linux

package metadata

import (
	"fmt"
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// statFile takes size, change time and modification time from a single
// stat call. The change time is the closest Linux has to a creation
// timestamp without statx support on every filesystem.
func statFile(path string) (Info, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Info{}, fmt.Errorf("failed to stat file: %w", &fs.PathError{Op: "stat", Path: path, Err: err})
	}
	if st.Mode&unix.S_IFMT != unix.S_IFREG {
		return Info{}, fmt.Errorf("not a regular file: mode %#o", st.Mode&unix.S_IFMT)
	}

	return Info{
		Size:    st.Size,
		Created: time.Unix(st.Ctim.Unix()),
		Updated: time.Unix(st.Mtim.Unix()),
	}, nil
}
