// Package stream models a backend stream manifest and turns it into playable sources.
package stream

import (
	"strings"
	"time"
)

// VideoStream is a single video rendition offered by the backend.
type VideoStream struct {
	URL       string
	Format    string
	Quality   string
	MimeType  string
	VideoOnly bool
	Bitrate   int
	Width     int
	Height    int
}

// IsLBRYMP4 reports whether the rendition is an LBRY-hosted MP4, which is
// listed regardless of the preferred container.
func (v VideoStream) IsLBRYMP4() bool {
	return strings.EqualFold(v.Quality, "LBRY") && strings.EqualFold(v.Format, "MP4")
}

// AudioStream is a single audio rendition offered by the backend.
type AudioStream struct {
	URL      string
	Format   string
	Quality  string
	MimeType string
	Bitrate  int
}

// Subtitle is a text track. Code is a language tag, possibly region-qualified (en-US).
type Subtitle struct {
	URL           string
	MimeType      string
	Name          string
	Code          string
	AutoGenerated bool
}

// BaseCode returns the language tag without its region suffix.
func (s Subtitle) BaseCode() string {
	return BaseLanguage(s.Code)
}

// Chapter marks a titled position. Start is in whole seconds.
type Chapter struct {
	Title string
	Start int64
}

// Manifest is the backend description of one video. It is immutable once fetched.
type Manifest struct {
	VideoID   string
	Title     string
	Uploader  string
	Duration  time.Duration
	Video     []VideoStream
	Audio     []AudioStream
	Subtitles []Subtitle
	HLS       string
	Related   []string
	Chapters  []Chapter
}

// Live reports whether the manifest describes a live stream.
func (m *Manifest) Live() bool {
	return m.Duration <= 0
}

// FirstRelated returns the first related stream id, if any.
func (m *Manifest) FirstRelated() (string, bool) {
	if len(m.Related) == 0 {
		return "", false
	}
	return m.Related[0], true
}

// BaseLanguage strips a region suffix from a language tag: "en-US" becomes "en".
func BaseLanguage(code string) string {
	base, _, _ := strings.Cut(code, "-")
	return base
}
