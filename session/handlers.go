package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playctl/playctl/log"
	"github.com/playctl/playctl/player"
	"github.com/playctl/playctl/stream"
	"github.com/samber/mo"
)

func (c *Controller) handle(ev player.Event) {
	s := c.current()
	if s == nil {
		return
	}

	switch ev.Kind {
	case player.EventPlaying:
		c.onPlaying(s)
	case player.EventPaused:
		c.persist(s)
	case player.EventEnded:
		c.onEnded(s)
	case player.EventVideoSize:
		c.onVideoSize(s, ev.Width, ev.Height)
	case player.EventFailed:
		c.onFailed(s)
	}
}

func (c *Controller) onPlaying(s *Session) {
	if m, _, _ := s.state(); m == nil {
		return
	}

	s.markPlaying()
	if c.autoplay.Transitioning() {
		s.log.Infof("successor ready")
		c.autoplay.Ready()
	}

	if c.settings.SponsorBlock {
		if state, _ := s.segmentState(); state != segmentsEmpty {
			s.startPoll(s.segmentPoll)
		}
	}

	if m, _, _ := s.state(); m.Live() {
		s.startPoll(s.livePoll)
	}
}

func (c *Controller) onEnded(s *Session) {
	m, _, _ := s.state()
	if m == nil || !s.markFinished() {
		return
	}

	if !m.Live() {
		c.save(s, m.Duration, m.Duration)
	}

	decision, fired := c.autoplay.OnEnded(c.settings.Autoplay, s.videoID, s.nextItem())

	ended := SessionEnded{VideoID: s.videoID}
	if fired {
		ended.Next = mo.Some(decision.Next)
	}
	c.emit(ended)

	if !fired || !decision.StartNew {
		return
	}

	var opts []StartOption
	if playlist, ok := s.playlistID.Get(); ok {
		opts = append(opts, WithPlaylist(playlist))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.autoplay.Ready()
		return
	}
	c.wg.Go(func() {
		if _, err := c.StartSession(c.ctx, decision.Next, opts...); err != nil {
			if !errors.Is(err, ErrSuperseded) && !errors.Is(err, ErrClosed) {
				log.Warnf("autoplay: start %s: %v", decision.Next, err)
			}
			c.autoplay.Ready()
		}
	})
}

// onFailed reports a source the engine could not play. A transition waiting
// for that source to start playing is abandoned.
func (c *Controller) onFailed(s *Session) {
	s.log.Warnf("engine failed to play the source")
	c.emit(Advisory{VideoID: s.videoID, Err: ErrPlaybackFailed})

	if c.autoplay.Transitioning() {
		s.log.Infof("abandoning autoplay transition")
		c.autoplay.Ready()
	}
}

func (c *Controller) onVideoSize(s *Session, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	c.emit(VideoSize{
		Width:       width,
		Height:      height,
		AspectRatio: stream.AspectRatio(width, height),
	})

	if _, _, label := s.state(); label == stream.LabelHLS || isHLSSizeLabel(label) {
		sized := fmt.Sprintf("%s (%dp)", stream.LabelHLS, height)
		if sized != label {
			s.setLabel(sized)
			c.emit(QualityChanged{Label: sized})
		}
	}
}

func isHLSSizeLabel(label string) bool {
	var height int
	_, err := fmt.Sscanf(label, stream.LabelHLS+" (%dp)", &height)
	return err == nil
}

// segmentTick skips at most one segment per tick. It keeps polling while the
// segment set is still being fetched and stops when playback stops or there
// is nothing to skip.
func (c *Controller) segmentTick(s *Session) func(context.Context) bool {
	return func(ctx context.Context) bool {
		state, skipper := s.segmentState()
		if state == segmentsEmpty || !c.player.IsPlaying() {
			return false
		}
		if state == segmentsPending {
			return true
		}

		gen := c.seekGen.Load()
		pos, err := c.player.Position()
		if err != nil {
			return true
		}

		seg, skipped, err := skipper.Check(pos, c.engineSeek(s, gen))
		switch {
		case errors.Is(err, errStaleSeek):
			s.log.Debugf("dropping stale skip of %s", seg.Category)
		case err != nil:
			s.log.Warnf("segment skip: %v", err)
		case skipped && c.settings.SkipNotifications:
			c.emit(SegmentSkipped{VideoID: s.videoID, Category: seg.Category, From: pos, To: seg.End})
		}
		return true
	}
}

// engineSeek seeks only if s is still active and no user seek or source swap
// happened since gen was read.
func (c *Controller) engineSeek(s *Session, gen uint64) func(to time.Duration) error {
	return func(to time.Duration) error {
		c.playerMu.Lock()
		defer c.playerMu.Unlock()

		if !c.isActive(s) || c.seekGen.Load() != gen {
			return errStaleSeek
		}
		return c.player.SeekTo(to)
	}
}

// liveTick keeps playback at normal speed on the live edge and reports drift.
func (c *Controller) liveTick(s *Session) func(context.Context) bool {
	return func(ctx context.Context) bool {
		if !c.player.IsPlaying() {
			return false
		}

		duration, err := c.player.Duration()
		if err != nil {
			return true
		}
		pos, err := c.player.Position()
		if err != nil {
			return true
		}

		reading, changed := s.live.Observe(duration, pos)
		if reading.AtEdge {
			c.playerMu.Lock()
			if c.isActive(s) {
				if err := c.player.SetSpeed(1); err != nil {
					s.log.Debugf("reset speed: %v", err)
				}
			}
			c.playerMu.Unlock()
		}

		if changed {
			c.emit(LiveDrift{Drift: reading.Drift, Text: reading.Text, AtEdge: reading.AtEdge})
		}
		return true
	}
}

// chapterTick reports the active chapter whenever its title changes.
func (c *Controller) chapterTick(s *Session) func(context.Context) bool {
	return func(ctx context.Context) bool {
		if s.chapters.Empty() {
			return false
		}

		pos, err := c.player.Position()
		if err != nil {
			return true
		}

		if index, title, changed := s.chapters.Update(pos); changed {
			c.emit(ChapterChanged{Index: index, Title: title})
		}
		return true
	}
}
