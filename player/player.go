// Package player defines the playback engine abstraction the session drives.
// The primary implementation targets mpv via its JSON-IPC interface.
package player

import (
	"fmt"
	"time"

	"github.com/playctl/playctl/stream"
)

// EventKind enumerates the engine notifications a session reacts to.
type EventKind int

const (
	// EventPlaying fires when playback starts or resumes.
	EventPlaying EventKind = iota
	// EventPaused fires when playback is suspended by the user or the engine.
	EventPaused
	// EventEnded fires when the loaded media played to its end.
	EventEnded
	// EventVideoSize fires when the decoded video dimensions change.
	EventVideoSize
	// EventFailed fires when the engine gave up on the media, either while
	// opening it or during playback.
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventEnded:
		return "ended"
	case EventVideoSize:
		return "video-size"
	case EventFailed:
		return "failed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a typed engine notification. Width and Height are set for EventVideoSize.
type Event struct {
	Kind   EventKind
	Width  int
	Height int
}

// Player is the engine a playback session drives.
type Player interface {
	// Load replaces the current media with the given source plan.
	Load(plan stream.Plan, title string) error

	// Play resumes playback.
	Play() error

	// Pause suspends playback.
	Pause() error

	// SeekTo moves to an absolute position. A seek issued before the media
	// is loaded is applied once it is.
	SeekTo(pos time.Duration) error

	// SetSpeed changes the playback rate.
	SetSpeed(speed float64) error

	// SetSubtitle attaches and selects a subtitle track. nil disables subtitles.
	SetSubtitle(sub *stream.Subtitle) error

	// Position returns the current playback position.
	Position() (time.Duration, error)

	// Duration returns the length of the loaded media. Live streams report the
	// length of the seekable window.
	Duration() (time.Duration, error)

	// IsPlaying reports whether media is loaded and advancing.
	IsPlaying() bool

	// Events delivers engine notifications in the order they happened.
	Events() <-chan Event

	// Close terminates the engine and releases its resources.
	Close() error
}
