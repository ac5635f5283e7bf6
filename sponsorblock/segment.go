// Package sponsorblock skips crowd-sourced sponsor segments during playback.
package sponsorblock

import (
	"fmt"
	"time"
)

// Segment is a skippable range [Start, End).
type Segment struct {
	Start    time.Duration
	End      time.Duration
	Category string
}

// Contains reports whether pos falls inside the half-open range.
func (s Segment) Contains(pos time.Duration) bool {
	return pos >= s.Start && pos < s.End
}

func (s Segment) String() string {
	return fmt.Sprintf("%s [%v, %v)", s.Category, s.Start, s.End)
}

// Segments is the ordered segment set of one video.
type Segments []Segment

// Match returns the earliest-listed segment containing pos.
func (s Segments) Match(pos time.Duration) (Segment, bool) {
	for _, seg := range s {
		if seg.Contains(pos) {
			return seg, true
		}
	}
	return Segment{}, false
}

// FromSeconds converts a [start, end] pair in fractional seconds, as served by
// the SponsorBlock API, into a segment. Fractions below a millisecond are truncated.
func FromSeconds(start, end float64, category string) Segment {
	return Segment{
		Start:    time.Duration(start*1000) * time.Millisecond,
		End:      time.Duration(end*1000) * time.Millisecond,
		Category: category,
	}
}
