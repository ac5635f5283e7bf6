package position

import (
	"time"

	"github.com/playctl/playctl/log"
	"github.com/samber/mo"
)

// EndGuard is how close to the end a stored position may be before it is
// ignored. Resuming there would immediately end the video again.
const EndGuard = 2 * time.Second

// ResumeAt decides where a non-live session starts. A non-zero timestamp
// (deep link) always wins. Otherwise the stored position is used unless it is
// within EndGuard of duration. Lookup failures resume nowhere.
func ResumeAt(store Store, videoID string, duration, timestamp time.Duration) mo.Option[time.Duration] {
	if timestamp != 0 {
		return mo.Some(timestamp)
	}

	if store == nil {
		return mo.None[time.Duration]()
	}

	stored, ok, err := store.Get(videoID)
	if err != nil {
		log.Warnf("watch position lookup for %s failed: %v", videoID, err)
		return mo.None[time.Duration]()
	}
	if !ok || duration-stored <= EndGuard {
		return mo.None[time.Duration]()
	}
	return mo.Some(stored)
}

// Save records the position reached in videoID. A finished video, where pos
// equals duration, has its entry removed instead.
func Save(store Store, videoID string, pos, duration time.Duration) error {
	if store == nil {
		return nil
	}

	if pos == duration {
		log.Debugf("watch position: %s finished, removing entry", videoID)
		return store.Remove(videoID)
	}

	log.Debugf("watch position: %s at %v", videoID, pos)
	return store.Upsert(videoID, pos)
}
