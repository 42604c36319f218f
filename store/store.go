// Package store caches computed validity masks in a bolt database keyed by a
// content checksum of the source span. A btree mirrors the key set in memory
// for ordered scans without touching the database.
package store

import (
	"encoding/binary"
	"sync"

	"github.com/google/btree"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.etcd.io/bbolt"

	"github.com/gernest/validity/bitset"
	"github.com/gernest/validity/checksum"
	"github.com/gernest/validity/codec"
	"github.com/gernest/validity/compute"
)

var masks = []byte("masks")

type Store struct {
	db *bbolt.DB

	mu  sync.Mutex
	idx *btree.BTreeG[uint64]

	hits   prometheus.Counter
	misses prometheus.Counter
}

// Open opens or creates the mask cache at path. reg may be nil.
func Open(path string, reg prometheus.Registerer) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening mask store")
	}
	s := &Store{
		db:  db,
		idx: btree.NewOrderedG[uint64](2),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "validity_mask_store_hits_total",
			Help: "Mask cache lookups that found a frame.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "validity_mask_store_misses_total",
			Help: "Mask cache lookups that found nothing.",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.hits, s.misses)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(masks)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, _ []byte) error {
			s.idx.ReplaceOrInsert(binary.BigEndian.Uint64(k))
			return nil
		})
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initializing mask store")
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Key derives the cache key for a span: the checksum of the bitmap bytes the
// span covers plus its offset and length. Spans without a bitmap key on
// offset and length alone.
func Key(arr *compute.ArraySpan) uint64 {
	var data []byte
	if arr.Validity != nil {
		data = arr.Validity.Bytes()[:bitset.BytesForBits(arr.Offset+arr.Length)]
	}
	return checksum.Span(data, arr.Offset, arr.Length)
}

// Put encodes m and stores it under the key of arr.
func (s *Store) Put(arr *compute.ArraySpan, m compute.Mask) error {
	frame, err := codec.Encode(m)
	if err != nil {
		return err
	}
	key := Key(arr)
	var kb [8]byte
	binary.BigEndian.PutUint64(kb[:], key)
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(masks).Put(kb[:], frame)
	})
	if err != nil {
		return errors.Wrap(err, "storing mask frame")
	}
	s.mu.Lock()
	s.idx.ReplaceOrInsert(key)
	s.mu.Unlock()
	return nil
}

// Get returns the cached mask for arr, if any.
func (s *Store) Get(arr *compute.ArraySpan) (compute.Mask, bool, error) {
	key := Key(arr)
	s.mu.Lock()
	known := s.idx.Has(key)
	s.mu.Unlock()
	if !known {
		s.misses.Inc()
		return compute.Mask{}, false, nil
	}
	var kb [8]byte
	binary.BigEndian.PutUint64(kb[:], key)
	var frame []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(masks).Get(kb[:])
		frame = append(frame, v...)
		return nil
	})
	if err != nil {
		return compute.Mask{}, false, errors.Wrap(err, "reading mask frame")
	}
	if frame == nil {
		s.misses.Inc()
		return compute.Mask{}, false, nil
	}
	m, err := codec.Decode(frame)
	if err != nil {
		return compute.Mask{}, false, err
	}
	s.hits.Inc()
	return m, true, nil
}

// Keys returns every cached key in ascending order.
func (s *Store) Keys() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := make([]uint64, 0, s.idx.Len())
	s.idx.Ascend(func(k uint64) bool {
		o = append(o, k)
		return true
	})
	return o
}
