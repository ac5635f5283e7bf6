package session

import (
	"time"

	"github.com/playctl/playctl/stream"
)

// DefaultPollInterval is the delay between two ticks of a poller.
const DefaultPollInterval = 100 * time.Millisecond

// Settings are the user preferences a controller runs with. They are passed
// in explicitly so the controller never reads global configuration.
type Settings struct {
	// VideoFormat is the preferred container, e.g. "webm".
	VideoFormat string

	// DefaultResolution is matched as a substring against candidate labels.
	DefaultResolution string

	// DefaultSubtitle is a language code applied at session start when present.
	DefaultSubtitle string

	Autoplay bool

	SponsorBlock bool

	// SkipNotifications controls whether SegmentSkipped events are emitted.
	// It does not affect skipping itself.
	SkipNotifications bool

	Categories []string

	SavePositions bool

	PollInterval time.Duration
}

// DefaultSettings mirrors the shipped configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		VideoFormat:       stream.DefaultVideoFormat,
		SponsorBlock:      true,
		SkipNotifications: true,
		Categories:        []string{"sponsor"},
		SavePositions:     true,
		PollInterval:      DefaultPollInterval,
	}
}

func (s Settings) interval() time.Duration {
	if s.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return s.PollInterval
}
