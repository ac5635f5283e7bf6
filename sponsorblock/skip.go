package sponsorblock

import (
	"fmt"
	"time"

	"github.com/playctl/playctl/log"
)

// Skipper handles auto-skipping of sponsor segments.
type Skipper struct {
	segments Segments
}

// NewSkipper creates a new Skipper instance.
func NewSkipper(segments Segments) *Skipper {
	return &Skipper{segments: segments}
}

// Empty reports whether there is nothing to skip.
func (s *Skipper) Empty() bool {
	return s == nil || len(s.segments) == 0
}

// Check inspects a playback position and, if it lies inside a segment, seeks
// to the segment end. At most one segment is acted on per call. Because the
// range is half-open, the position after a skip never matches the same
// segment again.
func (s *Skipper) Check(pos time.Duration, seek func(time.Duration) error) (Segment, bool, error) {
	if s.Empty() {
		return Segment{}, false, nil
	}

	seg, ok := s.segments.Match(pos)
	if !ok {
		return Segment{}, false, nil
	}

	log.Infof("Skipping %s segment: %v -> %v", seg.Category, pos, seg.End)
	if err := seek(seg.End); err != nil {
		return seg, false, fmt.Errorf("skip %s seek: %w", seg.Category, err)
	}
	return seg, true, nil
}
