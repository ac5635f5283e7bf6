// Package session drives one playback session at a time: it resolves a source,
// resumes the watch position, skips sponsor segments, tracks chapters and the
// live edge, and chains into the next video when playback ends.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playctl/playctl/autoplay"
	"github.com/playctl/playctl/chapter"
	"github.com/playctl/playctl/live"
	"github.com/playctl/playctl/log"
	"github.com/playctl/playctl/poll"
	"github.com/playctl/playctl/sponsorblock"
	"github.com/playctl/playctl/stream"
	"github.com/samber/mo"
	"github.com/sourcegraph/conc"
)

type segmentState int

const (
	segmentsPending segmentState = iota
	segmentsReady
	segmentsEmpty
)

// Session is the state of one video. Its context is the liveness token of
// every goroutine it owns; teardown cancels it and waits for them.
type Session struct {
	id         string
	videoID    string
	log        log.Entry
	playlistID mo.Option[string]
	timestamp  time.Duration

	// lifeMu orders goroutine starts against stop, so nothing is added to
	// wg once stop has canceled ctx.
	lifeMu sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	segmentPoll *poll.Task
	livePoll    *poll.Task
	chapterPoll *poll.Task

	// owned by their pollers
	chapters *chapter.Tracker
	live     live.Tracker

	mu       sync.Mutex
	manifest *stream.Manifest
	catalog  *stream.Catalog
	label    string
	subtitle string
	segments segmentState
	skipper  *sponsorblock.Skipper
	next     autoplay.NextItem
	finished bool
	resumeAt mo.Option[time.Duration]
}

func newSession(parent context.Context, videoID string, opts startOptions) *Session {
	ctx, cancel := context.WithCancel(parent)
	id := uuid.NewString()
	return &Session{
		id:         id,
		videoID:    videoID,
		log:        log.With(log.Fields{"session": id, "video": videoID}),
		playlistID: opts.playlist,
		timestamp:  opts.timestamp,
		ctx:        ctx,
		cancel:     cancel,
		chapters:   chapter.NewTracker(nil),
	}
}

// ID returns the unique id of the session.
func (s *Session) ID() string {
	return s.id
}

// VideoID returns the id of the video the session plays.
func (s *Session) VideoID() string {
	return s.videoID
}

func (s *Session) alive() bool {
	return s.ctx.Err() == nil
}

// spawn runs fn on the session's wait group. It reports false, running
// nothing, once the session is stopped.
func (s *Session) spawn(fn func()) bool {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if !s.alive() {
		return false
	}
	s.wg.Go(fn)
	return true
}

func (s *Session) startPoll(t *poll.Task) bool {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	return t.Start(s.ctx, &s.wg)
}

// stop cancels every goroutine of the session and waits for them.
func (s *Session) stop() {
	s.lifeMu.Lock()
	s.cancel()
	s.lifeMu.Unlock()
	s.wg.Wait()
}

func (s *Session) setManifest(m *stream.Manifest, c *stream.Catalog, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manifest = m
	s.catalog = c
	s.label = label
	s.next.Related = mo.TupleToOption(m.FirstRelated())
}

func (s *Session) state() (*stream.Manifest, *stream.Catalog, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manifest, s.catalog, s.label
}

func (s *Session) setLabel(label string) {
	s.mu.Lock()
	s.label = label
	s.mu.Unlock()
}

func (s *Session) setSubtitle(code string) {
	s.mu.Lock()
	s.subtitle = code
	s.mu.Unlock()
}

func (s *Session) setSegments(segments sponsorblock.Segments) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(segments) == 0 {
		s.segments = segmentsEmpty
		s.skipper = nil
		return
	}
	s.segments = segmentsReady
	s.skipper = sponsorblock.NewSkipper(segments)
}

func (s *Session) segmentState() (segmentState, *sponsorblock.Skipper) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments, s.skipper
}

func (s *Session) setPlaylistSuccessor(next mo.Option[string]) {
	s.mu.Lock()
	s.next.PlaylistSuccessor = next
	s.mu.Unlock()
}

func (s *Session) nextItem() autoplay.NextItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// markFinished records that playback reached the end. It returns false if
// this was already recorded since the last time playback started.
func (s *Session) markFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return false
	}
	s.finished = true
	return true
}

func (s *Session) markPlaying() {
	s.mu.Lock()
	s.finished = false
	s.mu.Unlock()
}

func (s *Session) isFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

func (s *Session) handle() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := &Handle{
		ID:         s.id,
		VideoID:    s.videoID,
		PlaylistID: s.playlistID,
		Label:      s.label,
		Subtitle:   s.subtitle,
		ResumeAt:   s.resumeAt,
	}
	if s.manifest != nil {
		h.Title = s.manifest.Title
		h.Uploader = s.manifest.Uploader
		h.Duration = s.manifest.Duration
		h.Live = s.manifest.Live()
		h.Chapters = s.manifest.Chapters
	}
	if s.catalog != nil {
		h.Labels = s.catalog.Labels()
		h.Subtitles = s.catalog.Subtitles
	}
	return h
}

// Handle is a snapshot of a session as seen by callers.
type Handle struct {
	ID         string
	VideoID    string
	PlaylistID mo.Option[string]
	Title      string
	Uploader   string
	Duration   time.Duration
	Live       bool

	// Label is the active resolution; Labels lists every selectable one.
	Label  string
	Labels []string

	Subtitle  string
	Subtitles []stream.SubtitleOption
	Chapters  []stream.Chapter

	ResumeAt mo.Option[time.Duration]
}

type startOptions struct {
	playlist  mo.Option[string]
	timestamp time.Duration
}

// StartOption configures StartSession.
type StartOption func(*startOptions)

// WithPlaylist plays the video as part of a playlist, whose successor
// becomes the autoplay candidate.
func WithPlaylist(id string) StartOption {
	return func(o *startOptions) {
		if id != "" {
			o.playlist = mo.Some(id)
		}
	}
}

// WithTimestamp starts at an explicit position, overriding any stored one.
func WithTimestamp(ts time.Duration) StartOption {
	return func(o *startOptions) {
		o.timestamp = ts
	}
}
