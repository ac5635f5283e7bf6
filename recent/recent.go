// Package recent keeps a ranked record of watched videos and suggests them for completion.
package recent

import (
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/playctl/playctl/filesystem"
	"github.com/playctl/playctl/key"
	"github.com/playctl/playctl/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

type record struct {
	Rank    int    `json:"rank"`
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
}

// Suggestion is a previously watched video.
type Suggestion struct {
	VideoID string
	Title   string
}

var (
	mu              sync.Mutex
	cacher          = newCacher(where.Recent())
	suggestionCache = make(map[string][]*record)
)

func newCacher(path string) *gache.Cache[map[string]*record] {
	return gache.New[map[string]*record](
		&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		},
	)
}

func load() map[string]*record {
	cached, expired, err := cacher.Get()
	if err != nil || expired || cached == nil {
		return make(map[string]*record)
	}
	return cached
}

// Remember records a watched video or raises its rank by weight.
// An empty title keeps the one already known.
func Remember(videoID, title string, weight int) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	cached := load()
	if r, ok := cached[videoID]; ok {
		r.Rank += weight
		if title != "" {
			r.Title = title
		}
	} else {
		cached[videoID] = &record{Rank: weight, VideoID: videoID, Title: title}
	}

	suggestionCache = make(map[string][]*record)
	return cacher.Set(cached)
}

// Title returns the last known title of a watched video.
func Title(videoID string) mo.Option[string] {
	mu.Lock()
	defer mu.Unlock()

	if r, ok := load()[videoID]; ok && r.Title != "" {
		return mo.Some(r.Title)
	}
	return mo.None[string]()
}

// Suggest returns the most relevant watched video for a partial input.
func Suggest(q string) mo.Option[Suggestion] {
	return mo.TupleToOption(lo.First(SuggestMany(q)))
}

// SuggestMany returns watched videos whose id or title fuzzily matches q, highest rank first.
func SuggestMany(q string) []Suggestion {
	if !viper.GetBool(key.RecentSuggestions) {
		return nil
	}

	q = sanitize(q)

	mu.Lock()
	defer mu.Unlock()

	records, ok := suggestionCache[q]
	if !ok {
		for _, r := range load() {
			if fuzzy.MatchFold(q, r.VideoID) || fuzzy.MatchFold(q, r.Title) {
				records = append(records, r)
			}
		}

		slices.SortFunc(records, func(a, b *record) int {
			if a.Rank != b.Rank {
				return b.Rank - a.Rank
			}
			return strings.Compare(a.VideoID, b.VideoID)
		})

		suggestionCache[q] = records
	}

	return lo.Map(records, func(r *record, _ int) Suggestion {
		return Suggestion{VideoID: r.VideoID, Title: r.Title}
	})
}

// Clear forgets every watched video.
func Clear() error {
	mu.Lock()
	defer mu.Unlock()

	suggestionCache = make(map[string][]*record)
	return cacher.Set(make(map[string]*record))
}

func sanitize(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}
