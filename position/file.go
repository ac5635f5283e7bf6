package position

import (
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/playctl/playctl/filesystem"
)

// FileStore keeps all positions in one JSON document on the virtual filesystem.
// Values are stored in milliseconds.
type FileStore struct {
	mu     sync.Mutex
	cacher *gache.Cache[map[string]int64]
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		cacher: gache.New[map[string]int64](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

func (s *FileStore) load() (map[string]int64, error) {
	cached, expired, err := s.cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]int64), nil
	}
	return cached, nil
}

// Get returns the stored position for videoID.
func (s *FileStore) Get(videoID string) (time.Duration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return 0, false, err
	}

	ms, ok := saved[videoID]
	return time.Duration(ms) * time.Millisecond, ok, nil
}

// Upsert stores pos for videoID.
func (s *FileStore) Upsert(videoID string, pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return err
	}

	saved[videoID] = pos.Milliseconds()
	return s.cacher.Set(saved)
}

// Remove deletes the entry for videoID.
func (s *FileStore) Remove(videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := saved[videoID]; !ok {
		return nil
	}

	delete(saved, videoID)
	return s.cacher.Set(saved)
}

// All returns every stored position.
func (s *FileStore) All() (map[string]time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return nil, err
	}

	all := make(map[string]time.Duration, len(saved))
	for id, ms := range saved {
		all[id] = time.Duration(ms) * time.Millisecond
	}
	return all, nil
}

// Clear removes every entry.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cacher.Set(make(map[string]int64))
}

// Close is a no-op; every write is flushed immediately.
func (s *FileStore) Close() error {
	return nil
}
