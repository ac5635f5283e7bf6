// Package chapter maps a playback position to the active chapter.
package chapter

import (
	"time"

	"github.com/playctl/playctl/stream"
)

// Index returns the active chapter: the last chapter in list order whose
// start is at or before pos. The scan never stops early, so a later chapter
// with an equal or earlier start overrides an earlier one even when the list
// is unsorted. Index 0 is the default before any start is reached.
func Index(chapters []stream.Chapter, pos time.Duration) int {
	active := 0
	for i, c := range chapters {
		if time.Duration(c.Start)*time.Second <= pos {
			active = i
		}
	}
	return active
}

// Tracker reports chapter changes, suppressing repeats of the same title.
type Tracker struct {
	chapters []stream.Chapter
	last     string
	reported bool
}

// NewTracker returns a tracker over chapters. The slice is copied.
func NewTracker(chapters []stream.Chapter) *Tracker {
	return &Tracker{chapters: append([]stream.Chapter(nil), chapters...)}
}

// Empty reports whether there are no chapters to track.
func (t *Tracker) Empty() bool {
	return t == nil || len(t.chapters) == 0
}

// Update computes the active chapter for pos. changed is true only when the
// title differs from the previously reported one.
func (t *Tracker) Update(pos time.Duration) (index int, title string, changed bool) {
	if t.Empty() {
		return 0, "", false
	}

	index = Index(t.chapters, pos)
	title = t.chapters[index].Title
	if t.reported && title == t.last {
		return index, title, false
	}

	t.last = title
	t.reported = true
	return index, title, true
}
