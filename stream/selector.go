package stream

import (
	"errors"
	"strings"

	"github.com/samber/lo"
)

// ErrNoPlayableSource is returned when a manifest yields no candidate at all.
var ErrNoPlayableSource = errors.New("no playable source")

// Plan is a resolved instruction for what to load into the player: either a
// single self-contained stream, or separate video and audio streams merged
// into one logical source.
type Plan struct {
	VideoURL string
	AudioURL string
}

// Single returns a self-contained plan.
func Single(url string) Plan {
	return Plan{VideoURL: url}
}

// Merged returns a plan combining a video and an audio stream.
func Merged(videoURL, audioURL string) Plan {
	return Plan{VideoURL: videoURL, AudioURL: audioURL}
}

// IsMerged reports whether the plan needs a separate audio track.
func (p Plan) IsMerged() bool {
	return p.AudioURL != ""
}

// AudioPicker chooses the audio url to merge with a video-only rendition.
type AudioPicker func(candidates []AudioStream) string

// Selection is the outcome of source selection.
type Selection struct {
	Plan  Plan
	Label string
}

// Select resolves the initial source. The first matching rule wins:
//  1. a candidate whose label contains preferredLabel
//  2. the HLS url as a single-source plan
//  3. the first video candidate merged with audio
func Select(c *Catalog, m *Manifest, preferredLabel string, pick AudioPicker) (Selection, error) {
	if preferredLabel != "" {
		if candidate, ok := lo.Find(c.Videos, func(v Candidate) bool {
			return strings.Contains(v.Label, preferredLabel)
		}); ok {
			return Selection{Plan: PlanFor(candidate, m.Audio, pick), Label: candidate.Label}, nil
		}
	}

	if m.HLS != "" {
		return Selection{Plan: Single(m.HLS), Label: LabelHLS}, nil
	}

	if len(c.Videos) == 0 {
		return Selection{}, ErrNoPlayableSource
	}

	first := c.Videos[0]
	return Selection{Plan: PlanFor(first, m.Audio, pick), Label: first.Label}, nil
}

// PlanFor builds the plan for a specific candidate, as used when the user
// switches quality.
func PlanFor(candidate Candidate, audio []AudioStream, pick AudioPicker) Plan {
	if candidate.SelfContained || candidate.Label == LabelHLS || candidate.Label == LabelLBRYHLS {
		return Single(candidate.URL)
	}

	if pick == nil {
		pick = BestAudio
	}
	return Merged(candidate.URL, pick(audio))
}
