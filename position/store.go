// Package position persists watch positions and decides when to resume, save or clear them.
package position

import (
	"fmt"
	"time"
)

// Store is a key-value table mapping a video id to its last position.
// Upsert replaces any existing entry.
type Store interface {
	Get(videoID string) (time.Duration, bool, error)
	Upsert(videoID string, pos time.Duration) error
	Remove(videoID string) error
	All() (map[string]time.Duration, error)
	Clear() error
	Close() error
}

// Storage backends selectable through configuration.
const (
	BackendJSON = "json"
	BackendBolt = "bolt"
)

// Open returns the store for the named backend at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewFileStore(path), nil
	case BackendBolt:
		return OpenBoltStore(path)
	default:
		return nil, fmt.Errorf("unknown positions backend %q", backend)
	}
}
