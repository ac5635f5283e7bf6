package stream

import "fmt"

// Candidate labels that do not come from a rendition's quality field.
const (
	LabelHLS     = "HLS"
	LabelLBRYMP4 = "LBRY MP4"
	LabelLBRYHLS = "LBRY HLS"
	LabelNone    = "None"
)

// DefaultVideoFormat is the container used when no preference is configured.
const DefaultVideoFormat = "webm"

// Candidate is a selectable video source.
type Candidate struct {
	Label string
	URL   string

	// FormatMatchesPreference is false only for renditions listed through the LBRY MP4 exception.
	FormatMatchesPreference bool

	// SelfContained candidates carry their own audio and never need a merge.
	SelfContained bool
}

// SubtitleOption is a selectable subtitle entry. The option at index 0 is the
// synthetic "no subtitle" entry and has a nil Track.
type SubtitleOption struct {
	Label string
	Code  string
	Track *Subtitle
}

// Catalog holds the ordered candidate lists derived from a manifest.
type Catalog struct {
	Videos    []Candidate
	Subtitles []SubtitleOption
}

// NewCatalog normalizes a manifest. The HLS url, when present, is always the
// first candidate; renditions follow in manifest order and are only listed
// when their MIME type is video/<preferredFormat> or they are LBRY MP4.
func NewCatalog(m *Manifest, preferredFormat string) *Catalog {
	if preferredFormat == "" {
		preferredFormat = DefaultVideoFormat
	}
	mime := fmt.Sprintf("video/%s", preferredFormat)

	c := &Catalog{}

	if m.HLS != "" {
		c.Videos = append(c.Videos, Candidate{
			Label:                   LabelHLS,
			URL:                     m.HLS,
			FormatMatchesPreference: true,
			SelfContained:           true,
		})
	}

	for _, v := range m.Video {
		if v.URL == "" {
			continue
		}

		switch {
		case v.MimeType == mime:
			c.Videos = append(c.Videos, Candidate{
				Label:                   v.Quality,
				URL:                     v.URL,
				FormatMatchesPreference: true,
			})
		case v.IsLBRYMP4():
			c.Videos = append(c.Videos, Candidate{
				Label: LabelLBRYMP4,
				URL:   v.URL,
			})
		}
	}

	c.Subtitles = append(c.Subtitles, SubtitleOption{Label: LabelNone})
	for i := range m.Subtitles {
		sub := m.Subtitles[i]
		c.Subtitles = append(c.Subtitles, SubtitleOption{
			Label: sub.Name,
			Code:  sub.Code,
			Track: &sub,
		})
	}

	return c
}

// Labels returns the video candidate labels in catalog order.
func (c *Catalog) Labels() []string {
	labels := make([]string, len(c.Videos))
	for i, v := range c.Videos {
		labels[i] = v.Label
	}
	return labels
}

// Video returns the candidate with exactly the given label.
func (c *Catalog) Video(label string) (Candidate, bool) {
	for _, v := range c.Videos {
		if v.Label == label {
			return v, true
		}
	}
	return Candidate{}, false
}
