package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/playctl/playctl/player"
	"github.com/playctl/playctl/sponsorblock"
	"github.com/playctl/playctl/stream"
	"github.com/samber/mo"
)

type fakePlayer struct {
	mu       sync.Mutex
	loads    []stream.Plan
	seeks    []time.Duration
	speeds   []float64
	subtitle *stream.Subtitle
	pos      time.Duration
	dur      time.Duration
	playing  bool
	events   chan player.Event
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{events: make(chan player.Event)}
}

func (p *fakePlayer) Load(plan stream.Plan, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads = append(p.loads, plan)
	return nil
}

func (p *fakePlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
	return nil
}

func (p *fakePlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	return nil
}

func (p *fakePlayer) SeekTo(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seeks = append(p.seeks, pos)
	p.pos = pos
	return nil
}

func (p *fakePlayer) SetSpeed(speed float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speeds = append(p.speeds, speed)
	return nil
}

func (p *fakePlayer) SetSubtitle(sub *stream.Subtitle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subtitle = sub
	return nil
}

func (p *fakePlayer) Position() (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos, nil
}

func (p *fakePlayer) Duration() (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dur, nil
}

func (p *fakePlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *fakePlayer) Events() <-chan player.Event {
	return p.events
}

func (p *fakePlayer) Close() error {
	return nil
}

// at moves the playhead without recording a seek.
func (p *fakePlayer) at(pos, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = pos
	p.dur = dur
}

func (p *fakePlayer) snapshot() (loads []stream.Plan, seeks []time.Duration, speeds []float64, sub *stream.Subtitle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]stream.Plan(nil), p.loads...),
		append([]time.Duration(nil), p.seeks...),
		append([]float64(nil), p.speeds...),
		p.subtitle
}

var errManifestMissing = errors.New("manifest missing")

type fakeBackend struct {
	mu            sync.Mutex
	manifests     map[string]*stream.Manifest
	segments      map[string]sponsorblock.Segments
	successors    map[string]string
	gates         map[string]chan struct{}
	successorGate chan struct{}
	manifestCalls map[string]int
	segmentCalls  int
	manifestErr   error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		manifests:     make(map[string]*stream.Manifest),
		segments:      make(map[string]sponsorblock.Segments),
		successors:    make(map[string]string),
		gates:         make(map[string]chan struct{}),
		manifestCalls: make(map[string]int),
	}
}

// gate makes manifest fetches of id block until the returned channel is closed.
func (b *fakeBackend) gate(id string) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{})
	b.gates[id] = ch
	return ch
}

// gateSuccessor makes playlist successor lookups block until the returned
// channel is closed.
func (b *fakeBackend) gateSuccessor() chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.successorGate = make(chan struct{})
	return b.successorGate
}

func (b *fakeBackend) failManifests(err error) {
	b.mu.Lock()
	b.manifestErr = err
	b.mu.Unlock()
}

func (b *fakeBackend) FetchManifest(ctx context.Context, videoID string) (*stream.Manifest, error) {
	b.mu.Lock()
	b.manifestCalls[videoID]++
	gate := b.gates[videoID]
	m, ok := b.manifests[videoID]
	err := b.manifestErr
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errManifestMissing
	}
	return m, nil
}

func (b *fakeBackend) FetchSegments(_ context.Context, videoID string, _ []string) (sponsorblock.Segments, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.segmentCalls++
	return b.segments[videoID], nil
}

func (b *fakeBackend) FetchPlaylistSuccessor(ctx context.Context, playlistID, _ string) (mo.Option[string], error) {
	b.mu.Lock()
	gate := b.successorGate
	next, ok := b.successors[playlistID]
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return mo.None[string](), ctx.Err()
		}
	}

	if ok {
		return mo.Some(next), nil
	}
	return mo.None[string](), nil
}

func (b *fakeBackend) calls(videoID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.manifestCalls[videoID]
}

func videoManifest(id string, related ...string) *stream.Manifest {
	return &stream.Manifest{
		VideoID:  id,
		Title:    "Video " + id,
		Duration: 600 * time.Second,
		Video: []stream.VideoStream{
			{URL: "https://v/" + id + "/720", MimeType: "video/webm", Quality: "720p"},
			{URL: "https://v/" + id + "/1080", MimeType: "video/webm", Quality: "1080p"},
		},
		Audio: []stream.AudioStream{
			{URL: "https://a/" + id + "/lo", Bitrate: 64},
			{URL: "https://a/" + id + "/hi", Bitrate: 160},
		},
		Subtitles: []stream.Subtitle{
			{URL: "https://s/" + id + "/en", Name: "English", Code: "en-US"},
			{URL: "https://s/" + id + "/de", Name: "Deutsch", Code: "de"},
		},
		Related: related,
	}
}
