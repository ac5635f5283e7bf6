package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/playctl/playctl/log"
)

// observed lists the properties the listener subscribes to.
var observed = []string{"pause", "width", "height", "time-pos", "duration"}

// tracker folds raw mpv notifications into playback state and typed events.
// It also keeps the last reported position and duration, which stay readable
// after mpv has gone away.
type tracker struct {
	mu     sync.Mutex
	loaded bool
	paused bool
	width  int
	height int

	pos, dur       time.Duration
	hasPos, hasDur bool
}

func (t *tracker) playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded && !t.paused
}

func (t *tracker) isLoaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

// unload forgets the current file, including its last position.
func (t *tracker) unload() {
	t.mu.Lock()
	t.loaded = false
	t.hasPos, t.hasDur = false, false
	t.mu.Unlock()
}

func (t *tracker) position() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos, t.hasPos
}

func (t *tracker) duration() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dur, t.hasDur
}

// apply updates state from msg and returns the events it produced.
func (t *tracker) apply(msg ipcMessage) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch msg.Event {
	case "file-loaded":
		t.loaded = true
	case "playback-restart":
		if t.loaded && !t.paused {
			return []Event{{Kind: EventPlaying}}
		}
	case "end-file":
		wasLoaded := t.loaded
		t.loaded = false
		switch {
		case msg.Reason == "eof" && wasLoaded:
			return []Event{{Kind: EventEnded}}
		case msg.Reason == "error":
			return []Event{{Kind: EventFailed}}
		}
	case "property-change":
		return t.property(msg.Name, msg.Data)
	}
	return nil
}

func (t *tracker) property(name string, data interface{}) []Event {
	switch name {
	case "pause":
		paused, ok := data.(bool)
		if !ok || paused == t.paused {
			return nil
		}
		t.paused = paused
		if !t.loaded {
			return nil
		}
		if paused {
			return []Event{{Kind: EventPaused}}
		}
		return []Event{{Kind: EventPlaying}}
	case "width", "height":
		v, _ := data.(float64)
		prevW, prevH := t.width, t.height
		if name == "width" {
			t.width = int(v)
		} else {
			t.height = int(v)
		}
		if t.width > 0 && t.height > 0 && (t.width != prevW || t.height != prevH) {
			return []Event{{Kind: EventVideoSize, Width: t.width, Height: t.height}}
		}
	case "time-pos", "duration":
		// mpv reports null once the file is gone; the last value is kept.
		v, ok := data.(float64)
		if !ok {
			return nil
		}
		d := time.Duration(v * float64(time.Second))
		if name == "time-pos" {
			t.pos, t.hasPos = d, true
		} else {
			t.dur, t.hasDur = d, true
		}
	}
	return nil
}

// listener keeps a persistent connection to mpv and forwards translated events.
type listener struct {
	socketPath string
	conn       net.Conn
	state      *tracker
	out        chan<- Event
	onLoaded   func()
	stopCh     chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
}

func newListener(socketPath string, state *tracker, out chan<- Event, onLoaded func()) *listener {
	return &listener{
		socketPath: socketPath,
		state:      state,
		out:        out,
		onLoaded:   onLoaded,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// start subscribes to the observed properties and begins the read loop.
// The out channel is closed when the loop exits.
func (l *listener) start() error {
	conn, err := net.Dial("unix", l.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	l.conn = conn

	for i, name := range observed {
		payload, _ := json.Marshal(ipcCommand{
			Command:   []interface{}{"observe_property", i + 1, name},
			RequestID: requestIDs.Add(1),
		})
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	go l.readLoop()

	log.Infof("mpv event listener started on %s", l.socketPath)
	return nil
}

func (l *listener) stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		if l.conn != nil {
			l.conn.Close()
		}
	})
	<-l.done
}

func (l *listener) readLoop() {
	defer close(l.done)
	defer close(l.out)

	reader := bufio.NewReader(l.conn)
	var partial []byte
	for {
		select {
		case <-l.stopCh:
			return
		default:
		}

		if err := l.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		line, err := reader.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				partial = append(partial, line...)
				continue
			}
			select {
			case <-l.stopCh:
			default:
				log.Warnf("event listener read error: %v", err)
			}
			return
		}
		if len(partial) > 0 {
			line = append(partial, line...)
			partial = nil
		}

		var msg ipcMessage
		if err := json.Unmarshal(line, &msg); err != nil || msg.Event == "" {
			continue
		}

		events := l.state.apply(msg)
		if msg.Event == "file-loaded" && l.onLoaded != nil {
			l.onLoaded()
		}

		for _, ev := range events {
			select {
			case l.out <- ev:
			case <-l.stopCh:
				return
			}
		}
	}
}
