package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playctl/playctl/autoplay"
	"github.com/playctl/playctl/chapter"
	"github.com/playctl/playctl/log"
	"github.com/playctl/playctl/player"
	"github.com/playctl/playctl/poll"
	"github.com/playctl/playctl/position"
	"github.com/playctl/playctl/sponsorblock"
	"github.com/playctl/playctl/stream"
	"github.com/playctl/playctl/util"
	"github.com/samber/mo"
	"github.com/sourcegraph/conc"
)

var (
	// ErrSuperseded is returned when a result arrived after its session was replaced.
	ErrSuperseded = errors.New("session superseded")

	// ErrNoSession is returned by controls issued while no session is active.
	ErrNoSession = errors.New("no active session")

	// ErrUnknownResolution is returned for a label that is not in the catalog.
	ErrUnknownResolution = errors.New("unknown resolution")

	// ErrUnknownSubtitle is returned for a code that matches no subtitle track.
	ErrUnknownSubtitle = errors.New("unknown subtitle")

	// ErrNotLive is returned when a live-only control is used on a regular video.
	ErrNotLive = errors.New("not a live stream")

	// ErrClosed is returned once the controller has been closed.
	ErrClosed = errors.New("controller closed")

	// ErrPlaybackFailed is reported when the player could not open or play a source.
	ErrPlaybackFailed = errors.New("playback failed")

	errStaleSeek = errors.New("seek superseded by a newer one")
)

// liveEdgeMargin is how far behind the reported end SeekToLiveEdge lands.
const liveEdgeMargin = time.Second

const eventBuffer = 64

// Backend is the source of manifests, segments and playlist pages.
type Backend interface {
	FetchManifest(ctx context.Context, videoID string) (*stream.Manifest, error)
	FetchSegments(ctx context.Context, videoID string, categories []string) (sponsorblock.Segments, error)
	FetchPlaylistSuccessor(ctx context.Context, playlistID, videoID string) (mo.Option[string], error)
}

// Deps are the collaborators a controller drives.
type Deps struct {
	Backend Backend
	Player  player.Player

	// Store may be nil, which disables position persistence.
	Store position.Store

	// PickAudio defaults to stream.BestAudio.
	PickAudio stream.AudioPicker
}

// Controller owns the player and the single active session.
type Controller struct {
	backend  Backend
	player   player.Player
	store    position.Store
	pick     stream.AudioPicker
	settings Settings
	autoplay *autoplay.Orchestrator

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	// playerMu serializes every mutation of the player.
	playerMu sync.Mutex

	// seekGen advances on every user seek and source swap. A skip computed
	// under an older generation is dropped.
	seekGen atomic.Uint64

	mu     sync.Mutex
	active *Session
	closed bool

	// pending is the session being fetched. It is published as active only
	// once its source is selected.
	pending *Session

	evMu     sync.RWMutex
	evClosed bool
	events   chan Event
}

// New creates a controller. Call Run to start consuming player events.
func New(deps Deps, settings Settings) *Controller {
	if deps.PickAudio == nil {
		deps.PickAudio = stream.BestAudio
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		backend:  deps.Backend,
		player:   deps.Player,
		store:    deps.Store,
		pick:     deps.PickAudio,
		settings: settings,
		autoplay: autoplay.New(),
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, eventBuffer),
	}
}

// Events returns the event stream. It is closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Active returns a snapshot of the active session.
func (c *Controller) Active() (*Handle, bool) {
	s := c.current()
	if s == nil {
		return nil, false
	}
	return s.handle(), true
}

// Transitioning reports whether an autoplay transition is in flight.
func (c *Controller) Transitioning() bool {
	return c.autoplay.Transitioning()
}

// Run dispatches player events until ctx is done or the player closes its
// event stream.
func (c *Controller) Run(ctx context.Context) error {
	events := c.player.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.handle(ev)
		}
	}
}

// StartSession makes videoID the active session. The previous session stays
// active until the new manifest is fetched and a source selected, and is torn
// down only then. While an autoplay transition is in flight, starting the
// video that is already active or already being started is a no-op returning
// that session.
//
// Fetch and selection failures are reported as an Advisory and returned; the
// previous session, if any, is left untouched. A start overtaken by a newer
// one returns ErrSuperseded.
func (c *Controller) StartSession(ctx context.Context, videoID string, opts ...StartOption) (*Handle, error) {
	var o startOptions
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.autoplay.Transitioning() {
		for _, same := range []*Session{c.active, c.pending} {
			if same != nil && same.videoID == videoID {
				c.mu.Unlock()
				log.Infof("session: %s already starting or active while transitioning, ignoring start", videoID)
				return same.handle(), nil
			}
		}
	}
	s := newSession(c.ctx, videoID, o)
	s.segmentPoll = poll.New("segments", c.settings.interval(), c.segmentTick(s))
	s.livePoll = poll.New("live", c.settings.interval(), c.liveTick(s))
	s.chapterPoll = poll.New("chapters", c.settings.interval(), c.chapterTick(s))
	if overtaken := c.pending; overtaken != nil {
		overtaken.cancel()
	}
	c.pending = s
	c.mu.Unlock()

	s.log.Infof("starting")

	selection, err := c.prepare(ctx, s)

	c.mu.Lock()
	if c.pending != s || c.closed || !s.alive() {
		c.mu.Unlock()
		s.cancel()
		s.log.Debugf("discarding manifest of superseded session")
		return nil, ErrSuperseded
	}
	c.pending = nil
	if err != nil {
		c.mu.Unlock()
		s.cancel()
		c.emit(Advisory{VideoID: videoID, Err: err})
		return nil, err
	}
	prev := c.active
	c.active = s
	c.mu.Unlock()

	if prev != nil {
		c.teardown(prev)
	}

	if err := c.load(s, selection); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return nil, err
		}
		c.emit(Advisory{VideoID: videoID, Err: err})
		return s.handle(), err
	}

	c.fetchSegments(s)
	c.fetchPlaylistSuccessor(s)

	if !s.chapters.Empty() {
		s.startPoll(s.chapterPoll)
	}

	h := s.handle()
	c.emit(SessionStarted{
		SessionID: s.id,
		VideoID:   videoID,
		Title:     h.Title,
		Label:     h.Label,
		Live:      h.Live,
		ResumeAt:  h.ResumeAt,
	})
	return h, nil
}

// prepare fetches the manifest of the unpublished session s and selects its
// source. The fetch ends early when ctx is done or s is overtaken.
func (c *Controller) prepare(ctx context.Context, s *Session) (stream.Selection, error) {
	fetchCtx, cancelFetch := context.WithCancel(s.ctx)
	defer cancelFetch()
	stop := context.AfterFunc(ctx, cancelFetch)
	defer stop()

	m, err := c.backend.FetchManifest(fetchCtx, s.videoID)
	if err != nil {
		return stream.Selection{}, fmt.Errorf("fetch manifest %s: %w", s.videoID, err)
	}

	catalog := stream.NewCatalog(m, c.settings.VideoFormat)
	selection, err := stream.Select(catalog, m, c.settings.DefaultResolution, c.pick)
	if err != nil {
		return stream.Selection{}, fmt.Errorf("select source for %s: %w", m.VideoID, err)
	}
	s.log.Infof("selected %q (merged=%t)", selection.Label, selection.Plan.IsMerged())

	s.setManifest(m, catalog, selection.Label)
	s.chapters = chapter.NewTracker(m.Chapters)
	return selection, nil
}

// load hands the selected source of s to the player, applying the default
// subtitle and the resume position.
func (c *Controller) load(s *Session, selection stream.Selection) error {
	m, catalog, _ := s.state()

	var resume mo.Option[time.Duration]
	if !m.Live() {
		resume = position.ResumeAt(c.positionStore(), m.VideoID, m.Duration, s.timestamp)
	}

	c.playerMu.Lock()
	defer c.playerMu.Unlock()

	if !c.isActive(s) {
		return ErrSuperseded
	}

	c.seekGen.Add(1)
	if err := c.player.Load(selection.Plan, m.Title); err != nil {
		return fmt.Errorf("load %s: %w", m.VideoID, err)
	}

	if sub, ok := catalog.DefaultSubtitle(c.settings.DefaultSubtitle); ok {
		if err := c.player.SetSubtitle(sub); err != nil {
			s.log.Warnf("default subtitle %s: %v", sub.Code, err)
		} else {
			s.setSubtitle(sub.Code)
		}
	}

	if at, ok := resume.Get(); ok {
		s.log.Infof("resuming at %v", at)
		if err := c.player.SeekTo(at); err != nil {
			s.log.Warnf("resume seek: %v", err)
		}
		s.mu.Lock()
		s.resumeAt = resume
		s.mu.Unlock()
	}

	return c.player.Play()
}

// fetchSegments loads the segment set off the calling path. Disabled skipping
// or an empty category set never touches the backend.
func (c *Controller) fetchSegments(s *Session) {
	if !c.settings.SponsorBlock || len(c.settings.Categories) == 0 {
		s.setSegments(nil)
		return
	}

	categories := append([]string(nil), c.settings.Categories...)
	s.spawn(func() {
		segments, err := c.backend.FetchSegments(s.ctx, s.videoID, categories)
		if !c.isActive(s) {
			s.log.Debugf("discarding segments of superseded session")
			return
		}
		if err != nil {
			s.setSegments(nil)
			c.emit(Advisory{VideoID: s.videoID, Err: fmt.Errorf("fetch segments %s: %w", s.videoID, err)})
			return
		}

		s.setSegments(segments)
		s.log.Infof("%d segments to skip", len(segments))
		if len(segments) > 0 && c.player.IsPlaying() {
			s.startPoll(s.segmentPoll)
		}
	})
}

// fetchPlaylistSuccessor resolves the playlist successor in the background.
// Failures leave the related-stream fallback in place.
func (c *Controller) fetchPlaylistSuccessor(s *Session) {
	playlist, ok := s.playlistID.Get()
	if !ok {
		return
	}

	s.spawn(func() {
		next, err := c.backend.FetchPlaylistSuccessor(s.ctx, playlist, s.videoID)
		if !c.isActive(s) {
			return
		}
		if err != nil {
			s.log.Warnf("playlist %s successor lookup: %v", playlist, err)
			return
		}
		if next.IsPresent() {
			s.setPlaylistSuccessor(next)
		}
	})
}

// ChangeResolution swaps the source to the candidate labelled label and
// returns to the position playback was at.
func (c *Controller) ChangeResolution(label string) error {
	s := c.current()
	if s == nil {
		return ErrNoSession
	}

	m, catalog, _ := s.state()
	if catalog == nil {
		return ErrNoSession
	}

	candidate, ok := catalog.Video(label)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownResolution, label)
	}
	plan := stream.PlanFor(candidate, m.Audio, c.pick)

	c.playerMu.Lock()
	defer c.playerMu.Unlock()

	if !c.isActive(s) {
		return ErrSuperseded
	}

	pos, err := c.player.Position()
	if err != nil {
		s.log.Warnf("position before quality change: %v", err)
	}

	c.seekGen.Add(1)
	if err := c.player.Load(plan, m.Title); err != nil {
		return fmt.Errorf("load %s: %w", label, err)
	}
	if pos > 0 {
		if err := c.player.SeekTo(pos); err != nil {
			return fmt.Errorf("restore position: %w", err)
		}
	}

	s.setLabel(candidate.Label)
	s.log.Infof("quality changed to %q at %v", candidate.Label, pos)
	c.emit(QualityChanged{Label: candidate.Label})
	return nil
}

// ChangeSubtitle selects the subtitle with the given code. An empty code or
// "None" disables subtitles for this session.
func (c *Controller) ChangeSubtitle(code string) error {
	s := c.current()
	if s == nil {
		return ErrNoSession
	}

	_, catalog, _ := s.state()
	if catalog == nil {
		return ErrNoSession
	}

	var sub *stream.Subtitle
	if code != "" && code != stream.LabelNone {
		var ok bool
		if sub, ok = catalog.Subtitle(code); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSubtitle, code)
		}
	}

	c.playerMu.Lock()
	defer c.playerMu.Unlock()

	if err := c.player.SetSubtitle(sub); err != nil {
		return err
	}

	if sub == nil {
		s.setSubtitle("")
	} else {
		s.setSubtitle(sub.Code)
	}
	return nil
}

// SeekTo moves playback to pos. An engine skip computed from a position read
// before this call will not undo it.
func (c *Controller) SeekTo(pos time.Duration) error {
	s := c.current()
	if s == nil {
		return ErrNoSession
	}
	if m, _, _ := s.state(); m != nil && !m.Live() {
		pos = util.Clamp(pos, 0, m.Duration)
	}

	c.playerMu.Lock()
	defer c.playerMu.Unlock()

	c.seekGen.Add(1)
	return c.player.SeekTo(pos)
}

// SeekToLiveEdge jumps close to the newest position of a live stream.
func (c *Controller) SeekToLiveEdge() error {
	s := c.current()
	if s == nil {
		return ErrNoSession
	}
	if m, _, _ := s.state(); m == nil || !m.Live() {
		return ErrNotLive
	}

	c.playerMu.Lock()
	defer c.playerMu.Unlock()

	dur, err := c.player.Duration()
	if err != nil {
		return err
	}

	c.seekGen.Add(1)
	return c.player.SeekTo(util.Clamp(dur-liveEdgeMargin, 0, dur))
}

// Teardown ends the active session: its position is persisted, and its
// pollers and fetches are canceled and waited for. A start still fetching its
// manifest is abandoned.
func (c *Controller) Teardown() {
	c.mu.Lock()
	s := c.active
	c.active = nil
	if c.pending != nil {
		c.pending.cancel()
		c.pending = nil
	}
	c.mu.Unlock()

	if s != nil {
		c.teardown(s)
	}
}

// Close tears down the active session, stops Run and closes the event stream.
// The player itself is not closed.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.Teardown()
	c.cancel()
	c.wg.Wait()

	c.evMu.Lock()
	c.evClosed = true
	close(c.events)
	c.evMu.Unlock()
	return nil
}

func (c *Controller) teardown(s *Session) {
	if !s.isFinished() {
		c.persist(s)
	}
	s.stop()
	s.log.Infof("torn down")
}

func (c *Controller) current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) isActive(s *Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active == s && s.alive()
}

func (c *Controller) positionStore() position.Store {
	if !c.settings.SavePositions {
		return nil
	}
	return c.store
}

// persist saves the current position of s. Live streams are never saved.
// Failures are logged and otherwise ignored.
func (c *Controller) persist(s *Session) {
	store := c.positionStore()
	m, _, _ := s.state()
	if store == nil || m == nil || m.Live() {
		return
	}

	c.playerMu.Lock()
	pos, err := c.player.Position()
	c.playerMu.Unlock()
	if err != nil {
		s.log.Debugf("no position to save: %v", err)
		return
	}

	c.save(s, pos, m.Duration)
}

func (c *Controller) save(s *Session, pos, duration time.Duration) {
	if err := position.Save(c.positionStore(), s.videoID, pos, duration); err != nil {
		s.log.Warnf("save position: %v", err)
	}
}

// emit delivers ev without blocking; events are advisory and dropped when
// nobody keeps up with the stream.
func (c *Controller) emit(ev Event) {
	c.evMu.RLock()
	defer c.evMu.RUnlock()

	if c.evClosed {
		return
	}

	select {
	case c.events <- ev:
	default:
		log.Warnf("session: event stream full, dropping %T", ev)
	}
}
