// Package filesystem routes every file access through afero so tests can run
// against an in-memory tree.
package filesystem

import (
	"sync"

	"github.com/spf13/afero"
)

var (
	mu      sync.RWMutex
	backend = afero.Afero{Fs: afero.NewOsFs()}
)

// API returns the active filesystem.
func API() afero.Afero {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Set replaces the active filesystem.
func Set(fs afero.Fs) {
	mu.Lock()
	defer mu.Unlock()
	backend = afero.Afero{Fs: fs}
}

// SetOsFs switches back to the real filesystem.
func SetOsFs() {
	Set(afero.NewOsFs())
}

// SetMemMapFs switches to a fresh, empty in-memory filesystem.
func SetMemMapFs() {
	Set(afero.NewMemMapFs())
}
