package progress

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// Bar renders one progress line per batch phase. It is safe for concurrent
// use by the worker pool.
type Bar struct {
	writer     io.Writer
	width      int
	enabled    bool
	mu         sync.Mutex
	phase      string
	total      int64
	current    int64
	lastDir    string
	lastUpdate time.Time
}

// New returns a bar writing to w. Rendering is disabled unless enabled is
// set, so callers decide (usually via IsTerminal) whether output is wanted.
func New(w io.Writer, enabled bool) *Bar {
	return &Bar{
		writer:  w,
		width:   40,
		enabled: enabled,
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func (b *Bar) Begin(phase string, total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.phase = phase
	b.total = total
	b.current = 0
	b.lastDir = ""
	b.lastUpdate = time.Time{}
	if b.enabled {
		b.render()
	}
}

// Step marks one file of the current phase as done.
func (b *Bar) Step(filePath string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++
	b.lastDir = path.Dir(filePath)

	if !b.enabled {
		return
	}
	// Update at most every 100ms to reduce flickering
	now := time.Now()
	if now.Sub(b.lastUpdate) > 100*time.Millisecond || b.current == b.total {
		b.lastUpdate = now
		b.render()
	}
}

func (b *Bar) End() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled {
		return
	}
	b.render()
	fmt.Fprintf(b.writer, "\n")
}

// Current returns the phase and how many of its files are done.
func (b *Bar) Current() (phase string, done, total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase, b.current, b.total
}

// render must be called with mu already locked
func (b *Bar) render() {
	if b.total == 0 {
		return
	}

	percent := float64(b.current) / float64(b.total) * 100
	filledWidth := int(float64(b.width) * float64(b.current) / float64(b.total))
	if filledWidth > b.width {
		filledWidth = b.width
	}
	bar := strings.Repeat("█", filledWidth) + strings.Repeat("░", b.width-filledWidth)

	var dirDisplay string
	if b.lastDir != "" && b.lastDir != "/" {
		dirDisplay = " | " + path.Base(b.lastDir)
	}

	// Clear the line and write progress
	fmt.Fprintf(b.writer, "\r\033[K%-8s [%s] %3d%% (%s/%s)%s",
		b.phase, bar, int(percent), humanize.Comma(b.current), humanize.Comma(b.total), dirDisplay)
}
