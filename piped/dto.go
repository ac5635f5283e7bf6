package piped

import (
	"net/url"
	"strings"
	"time"

	"github.com/playctl/playctl/sponsorblock"
	"github.com/playctl/playctl/stream"
	"github.com/samber/lo"
)

type streamsResponse struct {
	Title          string          `json:"title"`
	Uploader       string          `json:"uploader"`
	Duration       int64           `json:"duration"`
	HLS            string          `json:"hls"`
	VideoStreams   []videoStream   `json:"videoStreams"`
	AudioStreams   []audioStream   `json:"audioStreams"`
	Subtitles      []subtitle      `json:"subtitles"`
	RelatedStreams []relatedStream `json:"relatedStreams"`
	Chapters       []chapter       `json:"chapters"`
}

type videoStream struct {
	URL       string `json:"url"`
	Format    string `json:"format"`
	Quality   string `json:"quality"`
	MimeType  string `json:"mimeType"`
	VideoOnly bool   `json:"videoOnly"`
	Bitrate   int    `json:"bitrate"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type audioStream struct {
	URL      string `json:"url"`
	Format   string `json:"format"`
	Quality  string `json:"quality"`
	MimeType string `json:"mimeType"`
	Bitrate  int    `json:"bitrate"`
}

type subtitle struct {
	URL           string `json:"url"`
	MimeType      string `json:"mimeType"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	AutoGenerated bool   `json:"autoGenerated"`
}

type relatedStream struct {
	URL   string `json:"url"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

type chapter struct {
	Title string `json:"title"`
	Start int64  `json:"start"`
}

type segmentsResponse struct {
	Segments []segmentEntry `json:"segments"`
}

type segmentEntry struct {
	Category string    `json:"category"`
	Segment  []float64 `json:"segment"`
}

type playlistPage struct {
	NextPage       *string         `json:"nextpage"`
	RelatedStreams []relatedStream `json:"relatedStreams"`
}

// videoID extracts the id from a "/watch?v=ID" link.
func videoID(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	id := u.Query().Get("v")
	return id, id != ""
}

// streamIDs keeps the ids of entries that are playable streams, in order.
func streamIDs(entries []relatedStream) []string {
	return lo.FilterMap(entries, func(e relatedStream, _ int) (string, bool) {
		if e.Type != "" && !strings.EqualFold(e.Type, "stream") {
			return "", false
		}
		return videoID(e.URL)
	})
}

func (r *streamsResponse) manifest(id string) *stream.Manifest {
	return &stream.Manifest{
		VideoID:  id,
		Title:    r.Title,
		Uploader: r.Uploader,
		Duration: time.Duration(r.Duration) * time.Second,
		HLS:      r.HLS,
		Video: lo.Map(r.VideoStreams, func(v videoStream, _ int) stream.VideoStream {
			return stream.VideoStream(v)
		}),
		Audio: lo.Map(r.AudioStreams, func(a audioStream, _ int) stream.AudioStream {
			return stream.AudioStream(a)
		}),
		Subtitles: lo.Map(r.Subtitles, func(s subtitle, _ int) stream.Subtitle {
			return stream.Subtitle(s)
		}),
		Related: streamIDs(r.RelatedStreams),
		Chapters: lo.Map(r.Chapters, func(c chapter, _ int) stream.Chapter {
			return stream.Chapter(c)
		}),
	}
}

func (r *segmentsResponse) segments() sponsorblock.Segments {
	return lo.FilterMap(r.Segments, func(s segmentEntry, _ int) (sponsorblock.Segment, bool) {
		if len(s.Segment) != 2 || s.Segment[1] <= s.Segment[0] {
			return sponsorblock.Segment{}, false
		}
		return sponsorblock.FromSeconds(s.Segment[0], s.Segment[1], s.Category), true
	})
}
