package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/playctl/playctl/filesystem"
	"github.com/playctl/playctl/player"
	"github.com/playctl/playctl/position"
	"github.com/playctl/playctl/sponsorblock"
	"github.com/playctl/playctl/stream"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func init() {
	filesystem.SetMemMapFs()
}

type harness struct {
	c     *Controller
	p     *fakePlayer
	b     *fakeBackend
	store position.Store
	stop  func()
}

func testSettings() Settings {
	s := DefaultSettings()
	s.PollInterval = time.Millisecond
	return s
}

func newHarness(settings Settings) *harness {
	p := newFakePlayer()
	b := newFakeBackend()
	store := position.NewFileStore(filepath.Join("positions", uuid.NewString()+".json"))
	c := New(Deps{Backend: b, Player: p, Store: store}, settings)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = c.Run(ctx)
		close(done)
	}()

	return &harness{c: c, p: p, b: b, store: store, stop: func() {
		_ = c.Close()
		cancel()
		<-done
	}}
}

// send delivers a player event and waits until the controller handled it.
func (h *harness) send(kind player.EventKind) {
	h.p.events <- player.Event{Kind: kind}
	h.p.events <- player.Event{Kind: player.EventVideoSize}
}

func waitFor[T Event](c *Controller) (T, bool) {
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-c.Events():
			if !ok {
				var zero T
				return zero, false
			}
			if found, ok := ev.(T); ok {
				return found, true
			}
		case <-timeout:
			var zero T
			return zero, false
		}
	}
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestStartSession(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given a controller", t, func() {
		h := newHarness(testSettings())
		Reset(h.stop)
		ctx := context.Background()

		Convey("Starting a video without HLS merges the first candidate with the best audio", func() {
			h.b.manifests["a"] = videoManifest("a")

			handle, err := h.c.StartSession(ctx, "a")
			So(err, ShouldBeNil)
			So(handle.Label, ShouldEqual, "720p")
			So(handle.Labels, ShouldResemble, []string{"720p", "1080p"})

			loads, _, _, _ := h.p.snapshot()
			So(loads, ShouldResemble, []stream.Plan{stream.Merged("https://v/a/720", "https://a/a/hi")})

			started, ok := waitFor[SessionStarted](h.c)
			So(ok, ShouldBeTrue)
			So(started.VideoID, ShouldEqual, "a")
		})

		Convey("A stored position far from the end is resumed", func() {
			h.b.manifests["a"] = videoManifest("a")
			So(h.store.Upsert("a", 590*time.Second), ShouldBeNil)

			handle, err := h.c.StartSession(ctx, "a")
			So(err, ShouldBeNil)
			So(handle.ResumeAt.OrEmpty(), ShouldEqual, 590*time.Second)

			_, seeks, _, _ := h.p.snapshot()
			So(seeks, ShouldResemble, []time.Duration{590 * time.Second})
		})

		Convey("A stored position within two seconds of the end is ignored", func() {
			h.b.manifests["a"] = videoManifest("a")
			So(h.store.Upsert("a", 598_500*time.Millisecond), ShouldBeNil)

			_, err := h.c.StartSession(ctx, "a")
			So(err, ShouldBeNil)

			_, seeks, _, _ := h.p.snapshot()
			So(seeks, ShouldBeEmpty)
		})

		Convey("A timestamp overrides the stored position", func() {
			h.b.manifests["a"] = videoManifest("a")
			So(h.store.Upsert("a", 590*time.Second), ShouldBeNil)

			_, err := h.c.StartSession(ctx, "a", WithTimestamp(42*time.Second))
			So(err, ShouldBeNil)

			_, seeks, _, _ := h.p.snapshot()
			So(seeks, ShouldResemble, []time.Duration{42 * time.Second})
		})

		Convey("The default subtitle is applied by base language", func() {
			settings := testSettings()
			settings.DefaultSubtitle = "en"
			h2 := newHarness(settings)
			defer h2.stop()
			h2.b.manifests["a"] = videoManifest("a")

			handle, err := h2.c.StartSession(ctx, "a")
			So(err, ShouldBeNil)
			So(handle.Subtitle, ShouldEqual, "en-US")

			_, _, _, sub := h2.p.snapshot()
			So(sub, ShouldNotBeNil)
			So(sub.URL, ShouldEqual, "https://s/a/en")
		})

		Convey("A failed manifest fetch is an advisory and leaves nothing loaded", func() {
			h.b.failManifests(errors.New("offline"))

			handle, err := h.c.StartSession(ctx, "a")
			So(err, ShouldNotBeNil)
			So(handle, ShouldBeNil)

			advisory, ok := waitFor[Advisory](h.c)
			So(ok, ShouldBeTrue)
			So(advisory.VideoID, ShouldEqual, "a")

			loads, _, _, _ := h.p.snapshot()
			So(loads, ShouldBeEmpty)

			_, ok = h.c.Active()
			So(ok, ShouldBeFalse)
		})

		Convey("A failed start keeps the previous session playing", func() {
			h.b.manifests["a"] = videoManifest("a")
			_, err := h.c.StartSession(ctx, "a")
			So(err, ShouldBeNil)
			h.p.at(100*time.Second, 600*time.Second)

			h.b.failManifests(errors.New("offline"))
			handle, err := h.c.StartSession(ctx, "b")
			So(err, ShouldNotBeNil)
			So(handle, ShouldBeNil)

			advisory, ok := waitFor[Advisory](h.c)
			So(ok, ShouldBeTrue)
			So(advisory.VideoID, ShouldEqual, "b")

			h.p.at(200*time.Second, 600*time.Second)
			h.send(player.EventPaused)

			active, ok := h.c.Active()
			So(ok, ShouldBeTrue)
			So(active.VideoID, ShouldEqual, "a")
			So(active.Title, ShouldEqual, "Video a")

			pos, ok, err := h.store.Get("a")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(pos, ShouldEqual, 200*time.Second)

			loads, _, _, _ := h.p.snapshot()
			So(loads, ShouldHaveLength, 1)
		})

		Convey("A session without a playable source is never published", func() {
			m := videoManifest("a")
			m.Video = nil
			h.b.manifests["a"] = m

			_, err := h.c.StartSession(ctx, "a")
			So(errors.Is(err, stream.ErrNoPlayableSource), ShouldBeTrue)

			_, ok := h.c.Active()
			So(ok, ShouldBeFalse)
		})

		Convey("A superseded start discards its manifest", func() {
			h.b.manifests["a"] = videoManifest("a")
			h.b.manifests["b"] = videoManifest("b")
			gate := h.b.gate("a")
			defer close(gate)

			errs := make(chan error, 1)
			go func() {
				_, err := h.c.StartSession(ctx, "a")
				errs <- err
			}()
			So(eventually(func() bool { return h.b.calls("a") == 1 }), ShouldBeTrue)

			_, err := h.c.StartSession(ctx, "b")
			So(err, ShouldBeNil)
			So(errors.Is(<-errs, ErrSuperseded), ShouldBeTrue)

			loads, _, _, _ := h.p.snapshot()
			So(loads, ShouldHaveLength, 1)
			So(loads[0].VideoURL, ShouldEqual, "https://v/b/720")
		})
	})
}

func TestSegmentSkipping(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given a session with a sponsor segment", t, func() {
		h := newHarness(testSettings())
		Reset(h.stop)

		h.b.manifests["a"] = videoManifest("a")
		h.b.segments["a"] = sponsorblock.Segments{{Start: 10 * time.Second, End: 20 * time.Second, Category: "sponsor"}}

		_, err := h.c.StartSession(context.Background(), "a")
		So(err, ShouldBeNil)

		Convey("Playing inside the segment skips to its end exactly once", func() {
			h.p.at(15*time.Second, 600*time.Second)
			h.send(player.EventPlaying)

			skipped, ok := waitFor[SegmentSkipped](h.c)
			So(ok, ShouldBeTrue)
			So(skipped.Category, ShouldEqual, "sponsor")
			So(skipped.To, ShouldEqual, 20*time.Second)

			time.Sleep(20 * time.Millisecond)
			_, seeks, _, _ := h.p.snapshot()
			So(seeks, ShouldResemble, []time.Duration{20 * time.Second})
		})

		Convey("A skip computed before a user seek is dropped", func() {
			s := h.c.current()
			gen := h.c.seekGen.Load()
			So(h.c.SeekTo(5*time.Second), ShouldBeNil)

			err := h.c.engineSeek(s, gen)(20 * time.Second)
			So(errors.Is(err, errStaleSeek), ShouldBeTrue)

			_, seeks, _, _ := h.p.snapshot()
			So(seeks, ShouldResemble, []time.Duration{5 * time.Second})
		})

		Convey("Pausing stops the poller", func() {
			h.p.at(0, 600*time.Second)
			h.send(player.EventPlaying)
			So(eventually(func() bool { return h.c.current().segmentPoll.Running() }), ShouldBeTrue)

			So(h.p.Pause(), ShouldBeNil)
			So(eventually(func() bool { return !h.c.current().segmentPoll.Running() }), ShouldBeTrue)
		})
	})

	Convey("Given sponsor skipping is disabled", t, func() {
		settings := testSettings()
		settings.SponsorBlock = false
		h := newHarness(settings)
		Reset(h.stop)
		h.b.manifests["a"] = videoManifest("a")

		Convey("Segments are never fetched", func() {
			_, err := h.c.StartSession(context.Background(), "a")
			So(err, ShouldBeNil)
			So(h.b.segmentCalls, ShouldEqual, 0)
		})
	})
}

func TestAutoplay(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given autoplay is enabled", t, func() {
		settings := testSettings()
		settings.Autoplay = true
		h := newHarness(settings)
		Reset(h.stop)
		ctx := context.Background()

		Convey("Two ended events start the successor once", func() {
			h.b.manifests["a"] = videoManifest("a", "b")
			h.b.manifests["b"] = videoManifest("b")
			gate := h.b.gate("b")

			_, err := h.c.StartSession(ctx, "a")
			So(err, ShouldBeNil)

			h.send(player.EventEnded)
			h.send(player.EventEnded)
			So(h.c.Transitioning(), ShouldBeTrue)
			close(gate)

			ended, ok := waitFor[SessionEnded](h.c)
			So(ok, ShouldBeTrue)
			So(ended.VideoID, ShouldEqual, "a")
			So(ended.Next.OrEmpty(), ShouldEqual, "b")

			started, ok := waitFor[SessionStarted](h.c)
			So(ok, ShouldBeTrue)
			So(started.VideoID, ShouldEqual, "b")
			So(h.b.calls("b"), ShouldEqual, 1)

			h.send(player.EventPlaying)
			So(h.c.Transitioning(), ShouldBeFalse)
		})

		Convey("Starting the ended or incoming video while transitioning is a no-op", func() {
			h.b.manifests["a"] = videoManifest("a", "b")
			h.b.manifests["b"] = videoManifest("b")
			gate := h.b.gate("b")

			_, err := h.c.StartSession(ctx, "a")
			So(err, ShouldBeNil)
			h.send(player.EventEnded)
			So(h.c.Transitioning(), ShouldBeTrue)
			So(eventually(func() bool { return h.b.calls("b") == 1 }), ShouldBeTrue)

			handle, err := h.c.StartSession(ctx, "a")
			So(err, ShouldBeNil)
			So(handle.VideoID, ShouldEqual, "a")
			So(h.b.calls("a"), ShouldEqual, 1)

			handle, err = h.c.StartSession(ctx, "b")
			So(err, ShouldBeNil)
			So(handle.VideoID, ShouldEqual, "b")
			So(h.b.calls("b"), ShouldEqual, 1)

			close(gate)
			_, ok := waitFor[SessionEnded](h.c)
			So(ok, ShouldBeTrue)
			started, ok := waitFor[SessionStarted](h.c)
			So(ok, ShouldBeTrue)
			So(started.VideoID, ShouldEqual, "b")

			loads, _, _, _ := h.p.snapshot()
			So(loads, ShouldHaveLength, 2)
		})

		Convey("Ending before the playlist lookup completes falls back to the related stream", func() {
			h.b.manifests["a"] = videoManifest("a", "rel")
			h.b.manifests["rel"] = videoManifest("rel")
			h.b.manifests["p2"] = videoManifest("p2")
			h.b.successors["PL"] = "p2"
			gate := h.b.gateSuccessor()
			defer close(gate)

			_, err := h.c.StartSession(ctx, "a", WithPlaylist("PL"))
			So(err, ShouldBeNil)
			h.send(player.EventEnded)

			ended, ok := waitFor[SessionEnded](h.c)
			So(ok, ShouldBeTrue)
			So(ended.Next.OrEmpty(), ShouldEqual, "rel")

			started, ok := waitFor[SessionStarted](h.c)
			So(ok, ShouldBeTrue)
			So(started.VideoID, ShouldEqual, "rel")
			So(h.b.calls("p2"), ShouldEqual, 0)
		})

		Convey("A successor the player cannot open ends the transition", func() {
			h.b.manifests["a"] = videoManifest("a", "b")
			h.b.manifests["b"] = videoManifest("b")

			_, err := h.c.StartSession(ctx, "a")
			So(err, ShouldBeNil)
			h.send(player.EventEnded)
			So(eventually(func() bool {
				active, ok := h.c.Active()
				return ok && active.VideoID == "b"
			}), ShouldBeTrue)
			So(h.c.Transitioning(), ShouldBeTrue)

			h.send(player.EventFailed)
			So(h.c.Transitioning(), ShouldBeFalse)

			advisory, ok := waitFor[Advisory](h.c)
			So(ok, ShouldBeTrue)
			So(advisory.VideoID, ShouldEqual, "b")
			So(errors.Is(advisory.Err, ErrPlaybackFailed), ShouldBeTrue)
		})

		Convey("The playlist successor wins over the related stream", func() {
			h.b.manifests["a"] = videoManifest("a", "rel")
			h.b.manifests["p2"] = videoManifest("p2")
			h.b.successors["PL"] = "p2"

			_, err := h.c.StartSession(ctx, "a", WithPlaylist("PL"))
			So(err, ShouldBeNil)
			So(eventually(func() bool {
				return h.c.current().nextItem().PlaylistSuccessor.IsPresent()
			}), ShouldBeTrue)

			h.send(player.EventEnded)
			So(eventually(func() bool { return h.b.calls("p2") == 1 }), ShouldBeTrue)
			So(h.b.calls("rel"), ShouldEqual, 0)

			So(eventually(func() bool {
				active, ok := h.c.Active()
				return ok && active.VideoID == "p2" && active.PlaylistID.OrEmpty() == "PL"
			}), ShouldBeTrue)
		})

		Convey("A video related to itself does not chain", func() {
			h.b.manifests["a"] = videoManifest("a", "a")

			_, err := h.c.StartSession(ctx, "a")
			So(err, ShouldBeNil)
			h.send(player.EventEnded)

			ended, ok := waitFor[SessionEnded](h.c)
			So(ok, ShouldBeTrue)
			So(ended.Next.OrEmpty(), ShouldEqual, "a")
			So(h.c.Transitioning(), ShouldBeFalse)
			So(h.b.calls("a"), ShouldEqual, 1)
		})

		Convey("Ending removes the stored position", func() {
			h.b.manifests["a"] = videoManifest("a")
			So(h.store.Upsert("a", 100*time.Second), ShouldBeNil)

			_, err := h.c.StartSession(ctx, "a")
			So(err, ShouldBeNil)
			h.send(player.EventEnded)

			_, ok, err := h.store.Get("a")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given autoplay is disabled", t, func() {
		h := newHarness(testSettings())
		Reset(h.stop)

		Convey("Ending reports no successor", func() {
			h.b.manifests["a"] = videoManifest("a", "b")
			_, err := h.c.StartSession(context.Background(), "a")
			So(err, ShouldBeNil)

			h.send(player.EventEnded)
			ended, ok := waitFor[SessionEnded](h.c)
			So(ok, ShouldBeTrue)
			So(ended.Next.IsAbsent(), ShouldBeTrue)
			So(h.b.calls("b"), ShouldEqual, 0)
		})
	})
}

func TestControls(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given an active session", t, func() {
		h := newHarness(testSettings())
		Reset(h.stop)

		m := videoManifest("a")
		m.HLS = "https://hls/a.m3u8"
		m.Chapters = []stream.Chapter{{Title: "Intro", Start: 0}, {Title: "Main", Start: 30}, {Title: "Outro", Start: 90}}
		h.b.manifests["a"] = m

		handle, err := h.c.StartSession(context.Background(), "a")
		So(err, ShouldBeNil)
		So(handle.Label, ShouldEqual, stream.LabelHLS)

		Convey("Changing resolution reloads and returns to the prior position", func() {
			h.p.at(42*time.Second, 600*time.Second)
			So(h.c.ChangeResolution("1080p"), ShouldBeNil)

			loads, seeks, _, _ := h.p.snapshot()
			So(loads[len(loads)-1], ShouldResemble, stream.Merged("https://v/a/1080", "https://a/a/hi"))
			So(seeks, ShouldResemble, []time.Duration{42 * time.Second})

			changed, ok := waitFor[QualityChanged](h.c)
			So(ok, ShouldBeTrue)
			So(changed.Label, ShouldEqual, "1080p")
		})

		Convey("User seeks stay within the video", func() {
			So(h.c.SeekTo(time.Hour), ShouldBeNil)
			So(h.c.SeekTo(-time.Second), ShouldBeNil)

			_, seeks, _, _ := h.p.snapshot()
			So(seeks, ShouldResemble, []time.Duration{m.Duration, 0})
		})

		Convey("An unknown resolution is rejected", func() {
			So(errors.Is(h.c.ChangeResolution("4320p"), ErrUnknownResolution), ShouldBeTrue)
		})

		Convey("Subtitles can be selected and cleared", func() {
			So(h.c.ChangeSubtitle("de"), ShouldBeNil)
			_, _, _, sub := h.p.snapshot()
			So(sub.Code, ShouldEqual, "de")

			So(h.c.ChangeSubtitle(stream.LabelNone), ShouldBeNil)
			_, _, _, sub = h.p.snapshot()
			So(sub, ShouldBeNil)

			So(errors.Is(h.c.ChangeSubtitle("fr"), ErrUnknownSubtitle), ShouldBeTrue)
		})

		Convey("The HLS label picks up the reported height", func() {
			h.p.events <- player.Event{Kind: player.EventVideoSize, Width: 1920, Height: 1080}

			size, ok := waitFor[VideoSize](h.c)
			So(ok, ShouldBeTrue)
			So(size.AspectRatio, ShouldAlmostEqual, 0.5625)

			changed, ok := waitFor[QualityChanged](h.c)
			So(ok, ShouldBeTrue)
			So(changed.Label, ShouldEqual, "HLS (1080p)")
		})

		Convey("Chapter changes are reported", func() {
			h.p.at(45*time.Second, 600*time.Second)

			var last ChapterChanged
			So(eventually(func() bool {
				ev, ok := waitFor[ChapterChanged](h.c)
				last = ev
				return ok && ev.Index == 1
			}), ShouldBeTrue)
			So(last.Title, ShouldEqual, "Main")
		})

		Convey("Pausing saves the position", func() {
			h.p.at(123*time.Second, 600*time.Second)
			h.send(player.EventPaused)

			pos, ok, err := h.store.Get("a")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(pos, ShouldEqual, 123*time.Second)
		})

		Convey("Teardown saves the position and stops every poller", func() {
			h.p.at(77*time.Second, 600*time.Second)
			h.send(player.EventPlaying)
			s := h.c.current()

			h.c.Teardown()
			So(s.alive(), ShouldBeFalse)
			So(s.chapterPoll.Running(), ShouldBeFalse)
			So(s.segmentPoll.Running(), ShouldBeFalse)

			pos, ok, err := h.store.Get("a")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(pos, ShouldEqual, 77*time.Second)

			_, active := h.c.Active()
			So(active, ShouldBeFalse)
			So(h.c.SeekTo(time.Second), ShouldEqual, ErrNoSession)
		})
	})
}

func TestLive(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given a live session", t, func() {
		h := newHarness(testSettings())
		Reset(h.stop)

		m := videoManifest("live")
		m.Duration = 0
		m.HLS = "https://hls/live.m3u8"
		h.b.manifests["live"] = m
		So(h.store.Upsert("live", 30*time.Second), ShouldBeNil)

		handle, err := h.c.StartSession(context.Background(), "live")
		So(err, ShouldBeNil)
		So(handle.Live, ShouldBeTrue)

		Convey("No stored position is resumed", func() {
			_, seeks, _, _ := h.p.snapshot()
			So(seeks, ShouldBeEmpty)
		})

		Convey("Drift behind the edge is reported", func() {
			h.p.at(90*time.Second, 100*time.Second)
			h.send(player.EventPlaying)

			drift, ok := waitFor[LiveDrift](h.c)
			So(ok, ShouldBeTrue)
			So(drift.AtEdge, ShouldBeFalse)
			So(drift.Text, ShouldEqual, "-0:10")

			_, _, speeds, _ := h.p.snapshot()
			So(speeds, ShouldBeEmpty)
		})

		Convey("Playing at the edge resets the speed", func() {
			h.p.at(94*time.Second, 100*time.Second)
			h.send(player.EventPlaying)

			So(eventually(func() bool {
				_, _, speeds, _ := h.p.snapshot()
				return len(speeds) > 0 && speeds[0] == 1
			}), ShouldBeTrue)
		})

		Convey("Seeking to the live edge lands one second behind it", func() {
			h.p.at(50*time.Second, 100*time.Second)
			So(h.c.SeekToLiveEdge(), ShouldBeNil)
			_, seeks, _, _ := h.p.snapshot()
			So(seeks, ShouldResemble, []time.Duration{99 * time.Second})
		})
	})
}
