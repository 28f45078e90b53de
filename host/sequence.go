package host

import (
	"encoding/binary"
	"sync"

	"github.com/boltdb/bolt"
)

// Sequence hands out the per-call sequence number mixed into kitty seeds.
type Sequence interface {
	Next() (uint64, error)
}

type memorySequence struct {
	mu   sync.Mutex
	last uint64
}

func NewMemorySequence() Sequence {
	return &memorySequence{}
}

func (s *memorySequence) Next() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last++
	return s.last, nil
}

var (
	hostBucket  = []byte("host")
	sequenceKey = []byte("sequence")
	genesisKey  = []byte("genesis")
)

type boltSequence struct {
	db *bolt.DB
}

// NewBoltSequence keeps the sequence in db so it keeps increasing across
// restarts.
func NewBoltSequence(db *bolt.DB) (Sequence, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(hostBucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &boltSequence{db: db}, nil
}

func (s *boltSequence) Next() (uint64, error) {
	var next uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(hostBucket)
		if val := b.Get(sequenceKey); len(val) == 8 {
			next = binary.BigEndian.Uint64(val)
		}
		next++

		var val [8]byte
		binary.BigEndian.PutUint64(val[:], next)
		return b.Put(sequenceKey, val[:])
	})
	return next, err
}
