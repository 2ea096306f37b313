// Package clipboard places caption text on the system clipboard.
package clipboard

import (
	"sync"

	"github.com/atotto/clipboard"
)

// Writer accepts text for the clipboard.
type Writer interface {
	WriteAll(text string) error
}

// System writes through to the platform clipboard (pbcopy, xclip/xsel/wl-copy, or the
// Windows API).
type System struct{}

func (System) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether the platform exposes a clipboard utility.
func Available() bool {
	return !clipboard.Unsupported
}

// Memory records clipboard writes in process; used when no system clipboard exists and
// in tests.
type Memory struct {
	mu   sync.Mutex
	last string
	err  error
}

// NewMemory returns a Memory writer that fails every write with err when err is non-nil.
func NewMemory(err error) *Memory {
	return &Memory{err: err}
}

func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.last = text
	return nil
}

// Last returns the most recent successful write.
func (m *Memory) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
