//go:build !linux

package metadata

import (
	"fmt"
	"os"
)

// statFile has no portable change time, so Created repeats the
// modification time.
func statFile(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return Info{}, fmt.Errorf("not a regular file: %s", fi.Mode().Type())
	}
	return Info{Size: fi.Size(), Created: fi.ModTime(), Updated: fi.ModTime()}, nil
}
