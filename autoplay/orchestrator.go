// Package autoplay decides whether playback chains into a successor video.
package autoplay

import (
	"sync"

	"github.com/playctl/playctl/log"
	"github.com/samber/mo"
)

// State of the orchestrator.
type State int

const (
	Idle State = iota
	Transitioning
)

func (s State) String() string {
	if s == Transitioning {
		return "transitioning"
	}
	return "idle"
}

// NextItem merges the two sources of a successor id. It is resolved only at
// the moment autoplay fires.
type NextItem struct {
	// Related is the first related stream of the current manifest.
	Related mo.Option[string]

	// PlaylistSuccessor is set once the asynchronous playlist lookup completes.
	PlaylistSuccessor mo.Option[string]
}

// Resolve prefers the playlist successor and falls back to the related stream.
func (n NextItem) Resolve() mo.Option[string] {
	if n.PlaylistSuccessor.IsPresent() {
		return n.PlaylistSuccessor
	}
	return n.Related
}

// Decision is the outcome of a fired transition.
type Decision struct {
	Next string

	// StartNew is false when Next equals the current id.
	StartNew bool
}

// Orchestrator is the idle/transitioning state machine.
type Orchestrator struct {
	mu    sync.Mutex
	state State
}

// New returns an idle orchestrator.
func New() *Orchestrator {
	return &Orchestrator{}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Transitioning reports whether an autoplay decision is in flight.
func (o *Orchestrator) Transitioning() bool {
	return o.State() == Transitioning
}

// OnEnded is called when playback of current ends. It fires, moving to
// Transitioning, only when autoplay is enabled, a next id is known and no
// transition is already in flight. A decision that does not start a new
// session returns the orchestrator to Idle immediately.
func (o *Orchestrator) OnEnded(enabled bool, current string, next NextItem) (Decision, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !enabled || o.state == Transitioning {
		return Decision{}, false
	}

	id, ok := next.Resolve().Get()
	if !ok || id == "" {
		return Decision{}, false
	}

	if id == current {
		log.Infof("autoplay: next id equals current %s, not chaining", current)
		return Decision{Next: id}, true
	}

	o.state = Transitioning
	log.Infof("autoplay: %s ended, chaining into %s", current, id)
	return Decision{Next: id, StartNew: true}, true
}

// Ready returns the orchestrator to Idle once the successor session is playing
// or the transition was abandoned.
func (o *Orchestrator) Ready() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = Idle
}
