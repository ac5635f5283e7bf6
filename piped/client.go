// Package piped is a client for the Piped API: stream manifests, SponsorBlock
// segments and playlist pages.
package piped

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/playctl/playctl/constant"
	"github.com/playctl/playctl/log"
	"github.com/playctl/playctl/network"
	"github.com/playctl/playctl/sponsorblock"
	"github.com/playctl/playctl/stream"
	"github.com/samber/mo"
)

// maxPlaylistPages bounds the playlist walk when looking for a successor.
const maxPlaylistPages = 20

// Client talks to a single Piped instance.
type Client struct {
	instance string
	http     *http.Client
}

// New creates a client for instance. A nil httpClient uses network.Client.
func New(instance string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = network.Client
	}
	return &Client{
		instance: strings.TrimRight(instance, "/"),
		http:     httpClient,
	}
}

// FetchManifest retrieves the manifest of videoID.
func (c *Client) FetchManifest(ctx context.Context, videoID string) (*stream.Manifest, error) {
	var resp streamsResponse
	status, err := c.get(ctx, "streams", "/streams/"+url.PathEscape(videoID), &resp)
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("streams %s: %w", videoID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	m := resp.manifest(videoID)
	log.Debugf("piped: manifest %s: %d video, %d audio, %d subtitles, hls=%t",
		videoID, len(m.Video), len(m.Audio), len(m.Subtitles), m.HLS != "")
	return m, nil
}

// FetchSegments retrieves the SponsorBlock segments of videoID in the given
// categories. No categories means no request. A 404 means the video has none.
func (c *Client) FetchSegments(ctx context.Context, videoID string, categories []string) (sponsorblock.Segments, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	encoded, err := json.Marshal(categories)
	if err != nil {
		return nil, err
	}

	path := "/sponsors/" + url.PathEscape(videoID) + "?category=" + url.QueryEscape(string(encoded))

	var resp segmentsResponse
	status, err := c.get(ctx, "sponsors", path, &resp)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return resp.segments(), nil
}

// FetchPlaylistSuccessor returns the entry following videoID in the playlist.
// The last entry, or a video absent from the playlist, has no successor.
func (c *Client) FetchPlaylistSuccessor(ctx context.Context, playlistID, videoID string) (mo.Option[string], error) {
	var (
		page playlistPage
		path = "/playlists/" + url.PathEscape(playlistID)
		prev string
		seen bool
	)

	for i := 0; i < maxPlaylistPages; i++ {
		page = playlistPage{}
		if _, err := c.get(ctx, "playlists", path, &page); err != nil {
			return mo.None[string](), err
		}

		for _, id := range streamIDs(page.RelatedStreams) {
			if seen {
				return mo.Some(id), nil
			}
			if id == videoID {
				seen = true
			}
			prev = id
		}

		if page.NextPage == nil || *page.NextPage == "" {
			break
		}
		path = "/nextpage/playlists/" + url.PathEscape(playlistID) + "?nextpage=" + url.QueryEscape(*page.NextPage)
	}

	log.Debugf("piped: no successor of %s in playlist %s (last entry %q)", videoID, playlistID, prev)
	return mo.None[string](), nil
}

// get decodes a JSON response into v. The status is returned whenever a
// response arrived, so callers can map it before looking at the error.
func (c *Client) get(ctx context.Context, op, path string, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.instance+path, nil)
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, &ServerError{Op: op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return resp.StatusCode, &TransportError{Op: op, Err: err}
		}
		return resp.StatusCode, &ServerError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return resp.StatusCode, nil
}
