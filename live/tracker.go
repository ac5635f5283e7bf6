// Package live tracks how far playback of a live stream lags behind the live edge.
package live

import (
	"time"

	"github.com/playctl/playctl/util"
)

// EdgeThreshold is the drift under which playback counts as being at the live edge.
const EdgeThreshold = 7 * time.Second

// Reading is the classification of one position sample.
type Reading struct {
	AtEdge bool
	Drift  time.Duration

	// Text is the display form of the drift ("-0:10"), empty at the edge.
	Text string
}

// Classify computes the drift of position from duration. Duration grows while
// a stream is live, so callers pass a fresh value for every sample.
func Classify(duration, position time.Duration) Reading {
	drift := duration - position
	if drift < EdgeThreshold {
		return Reading{AtEdge: true, Drift: drift}
	}
	return Reading{Drift: drift, Text: "-" + util.FormatElapsed(drift)}
}

// Tracker remembers the last reported reading so repeated identical drift
// texts are not reported again.
type Tracker struct {
	last     string
	reported bool
}

// Observe classifies a sample and reports whether its display text changed.
func (t *Tracker) Observe(duration, position time.Duration) (Reading, bool) {
	r := Classify(duration, position)
	changed := !t.reported || r.Text != t.last
	t.last = r.Text
	t.reported = true
	return r, changed
}
