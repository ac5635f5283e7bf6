package session

import (
	"time"

	"github.com/samber/mo"
)

// Event is emitted on the controller's event stream. The concrete types below
// are the only implementations.
type Event interface {
	event()
}

// SessionStarted is emitted once a session has a source loaded.
type SessionStarted struct {
	SessionID string
	VideoID   string
	Title     string
	Label     string
	Live      bool
	ResumeAt  mo.Option[time.Duration]
}

// SegmentSkipped is emitted after a sponsor segment was skipped, when
// skip notifications are enabled.
type SegmentSkipped struct {
	VideoID  string
	Category string
	From     time.Duration
	To       time.Duration
}

// ChapterChanged is emitted when the active chapter title changes.
type ChapterChanged struct {
	Index int
	Title string
}

// LiveDrift is emitted when the distance from the live edge changes its display.
type LiveDrift struct {
	Drift  time.Duration
	Text   string
	AtEdge bool
}

// SessionEnded is emitted when playback of a session reached its end. Next is
// the id autoplay chained into, if it fired.
type SessionEnded struct {
	VideoID string
	Next    mo.Option[string]
}

// QualityChanged is emitted when the active resolution label changes.
type QualityChanged struct {
	Label string
}

// VideoSize is emitted when the player reports new video dimensions.
type VideoSize struct {
	Width       int
	Height      int
	AspectRatio float64
}

// Advisory reports a non-fatal failure. The session keeps its prior state.
type Advisory struct {
	VideoID string
	Err     error
}

func (SessionStarted) event() {}
func (SegmentSkipped) event() {}
func (ChapterChanged) event() {}
func (LiveDrift) event()      {}
func (SessionEnded) event()   {}
func (QualityChanged) event() {}
func (VideoSize) event()      {}
func (Advisory) event()       {}
