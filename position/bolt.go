package position

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketPositions = []byte("positions")

// BoltStore implements Store using BoltDB. Values are big-endian milliseconds.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPositions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func encodeMillis(pos time.Duration) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(pos.Milliseconds()))
	return buf
}

func decodeMillis(v []byte) time.Duration {
	return time.Duration(int64(binary.BigEndian.Uint64(v))) * time.Millisecond
}

// Get returns the stored position of videoID and whether one exists.
func (s *BoltStore) Get(videoID string) (time.Duration, bool, error) {
	var (
		pos   time.Duration
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketPositions).Get([]byte(videoID)); len(v) == 8 {
			pos = decodeMillis(v)
			found = true
		}
		return nil
	})
	return pos, found, err
}

// Upsert stores pos for videoID, replacing any earlier position.
func (s *BoltStore) Upsert(videoID string, pos time.Duration) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPositions).Put([]byte(videoID), encodeMillis(pos))
	})
}

// Remove forgets the position of videoID.
func (s *BoltStore) Remove(videoID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPositions).Delete([]byte(videoID))
	})
}

// All returns every stored position keyed by video id.
func (s *BoltStore) All() (map[string]time.Duration, error) {
	all := make(map[string]time.Duration)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPositions).ForEach(func(k, v []byte) error {
			if len(v) == 8 {
				all[string(k)] = decodeMillis(v)
			}
			return nil
		})
	})
	return all, err
}

// Clear removes every stored position.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketPositions); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketPositions)
		return err
	})
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
