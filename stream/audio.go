package stream

import "github.com/samber/lo"

// BestAudio is the default AudioPicker: the highest bitrate rendition with a
// url, earliest listed on ties. It returns "" when nothing is usable.
func BestAudio(candidates []AudioStream) string {
	usable := lo.Filter(candidates, func(a AudioStream, _ int) bool {
		return a.URL != ""
	})
	if len(usable) == 0 {
		return ""
	}

	best := lo.MaxBy(usable, func(a, b AudioStream) bool {
		return a.Bitrate > b.Bitrate
	})
	return best.URL
}
