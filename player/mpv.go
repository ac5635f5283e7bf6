package player

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/playctl/playctl/constant"
	"github.com/playctl/playctl/log"
	"github.com/playctl/playctl/stream"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	eventBuffer       = 32
)

// MPV implements Player using mpv's JSON-IPC protocol. The process is started
// idle on the first Load and reused for every later one.
type MPV struct {
	bin        string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	mu         sync.Mutex    // Protects socket writes

	startMu  sync.Mutex
	started  bool
	closed   bool
	listener *listener
	state    *tracker
	events   chan Event

	seekMu      sync.Mutex
	pendingSeek *time.Duration
}

// NewMPV creates a new MPV player that launches bin (does not start it yet).
func NewMPV(bin string) *MPV {
	if bin == "" {
		bin = "mpv"
	}
	return &MPV{
		bin:    bin,
		exited: make(chan struct{}),
		state:  &tracker{},
		events: make(chan Event, eventBuffer),
	}
}

// Available reports whether the mpv executable can be found.
func Available(bin string) (string, error) {
	return exec.LookPath(bin)
}

// start launches mpv idle and attaches the event listener.
func (m *MPV) start() error {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	if m.closed {
		return errors.New("mpv: player closed")
	}
	if m.started {
		return nil
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.Playctl, randomBytes))

	// Only the socket and window behaviour are forced, the user's mpv.conf applies otherwise.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--force-window=yes",
		"--idle=yes",
		fmt.Sprintf("--user-agent=%s", constant.UserAgent),
	}

	m.cmd = exec.Command(m.bin, args...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// Reap the process to prevent zombies
	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = newListener(m.socketPath, m.state, m.events, m.applyPendingSeek)
	if err := m.listener.start(); err != nil {
		_ = killProcess(m.cmd)
		return err
	}

	m.started = true
	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// Exited returns a channel that is closed when the mpv process exits.
func (m *MPV) Exited() <-chan struct{} {
	return m.exited
}

// Load implements Player. Merged plans attach the audio url as an external
// audio file of the video.
func (m *MPV) Load(plan stream.Plan, title string) error {
	video, err := sanitizeMediaTarget(plan.VideoURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	var audio string
	if plan.IsMerged() {
		if audio, err = sanitizeMediaTarget(plan.AudioURL); err != nil {
			return fmt.Errorf("invalid audio target: %w", err)
		}
	}

	if err := m.start(); err != nil {
		return err
	}

	m.state.unload()

	if _, err := m.sendCommand("set_property", "force-media-title", sanitizeTitle(title)); err != nil {
		return err
	}

	if audio != "" {
		_, err = m.sendCommand("change-list", "audio-files", "set", audio)
	} else {
		_, err = m.sendCommand("change-list", "audio-files", "clr", "")
	}
	if err != nil {
		return err
	}

	_, err = m.sendCommand("loadfile", video, "replace")
	return err
}

// Play implements Player.
func (m *MPV) Play() error {
	return m.set("pause", false)
}

// Pause implements Player.
func (m *MPV) Pause() error {
	return m.set("pause", true)
}

// SeekTo implements Player.
func (m *MPV) SeekTo(pos time.Duration) error {
	if !m.state.isLoaded() {
		m.deferSeek(pos)
		return nil
	}

	_, err := m.sendCommand("seek", pos.Seconds(), "absolute")
	var mpvErr *MPVError
	if errors.As(err, &mpvErr) && mpvErr.Reason == errPropertyUnavailable {
		m.deferSeek(pos)
		return nil
	}
	return err
}

func (m *MPV) deferSeek(pos time.Duration) {
	m.seekMu.Lock()
	m.pendingSeek = &pos
	m.seekMu.Unlock()
}

func (m *MPV) applyPendingSeek() {
	m.seekMu.Lock()
	pending := m.pendingSeek
	m.pendingSeek = nil
	m.seekMu.Unlock()

	if pending == nil {
		return
	}
	if _, err := m.sendCommand("seek", pending.Seconds(), "absolute"); err != nil {
		log.Warnf("deferred seek to %v failed: %v", *pending, err)
	}
}

// SetSpeed implements Player.
func (m *MPV) SetSpeed(speed float64) error {
	return m.set("speed", speed)
}

// SetSubtitle implements Player.
func (m *MPV) SetSubtitle(sub *stream.Subtitle) error {
	if sub == nil {
		return m.set("sid", "no")
	}

	target, err := sanitizeMediaTarget(sub.URL)
	if err != nil {
		return fmt.Errorf("invalid subtitle target: %w", err)
	}

	_, err = m.sendCommand("sub-add", target, "select", sub.Name, sub.Code)
	return err
}

// Position implements Player. Once mpv is unreachable, for example after the
// user quit it, the last observed position is returned.
func (m *MPV) Position() (time.Duration, error) {
	return m.observedProperty("time-pos", m.state.position)
}

// Duration implements Player.
func (m *MPV) Duration() (time.Duration, error) {
	return m.observedProperty("duration", m.state.duration)
}

func (m *MPV) observedProperty(name string, last func() (time.Duration, bool)) (time.Duration, error) {
	d, err := m.durationProperty(name)
	if err == nil {
		return d, nil
	}

	var mpvErr *MPVError
	if errors.As(err, &mpvErr) {
		return 0, err
	}
	if d, ok := last(); ok {
		log.Debugf("mpv unreachable, using last observed %s %v: %v", name, d, err)
		return d, nil
	}
	return 0, err
}

// IsPlaying implements Player.
func (m *MPV) IsPlaying() bool {
	return m.state.playing()
}

// Events implements Player. The channel is closed when the player is closed.
func (m *MPV) Events() <-chan Event {
	return m.events
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if !m.started {
		close(m.events)
		return nil
	}

	// Try graceful quit via IPC
	_, _ = m.sendCommand("quit")

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(m.cmd)
	}

	m.listener.stop()
	_ = os.Remove(m.socketPath)

	return nil
}

func (m *MPV) set(property string, value interface{}) error {
	_, err := m.sendCommand("set_property", property, value)
	return err
}

// durationProperty retrieves a seconds-valued float property.
func (m *MPV) durationProperty(name string) (time.Duration, error) {
	data, err := m.sendCommand("get_property", name)
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return time.Duration(val * float64(time.Second)), nil
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// Prevent flag injection
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

// sanitizeTitle cleans up the title for mpv
func sanitizeTitle(title string) string {
	t := strings.ReplaceAll(title, "\n", " ")
	t = strings.ReplaceAll(t, "\r", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	t = strings.ReplaceAll(t, "\x00", "")
	return strings.TrimSpace(t)
}
