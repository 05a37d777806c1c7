// Package pebblebackend wraps Pebble (CockroachDB's LSM storage engine)
// behind bench.Backend so it can be benchmarked alongside the tree index,
// adapted from the teacher's dbms/index/lsm package.
package pebblebackend

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"

	"relidx/internal/bench"
)

type Backend struct {
	db *pebble.DB
}

// Open opens (or creates) a Pebble database at dir.
func Open(dir string) (*Backend, error) {
	opts := &pebble.Options{
		MemTableSize:                16 << 20,
		MemTableStopWritesThreshold: 4,
		L0CompactionThreshold:       4,
		L0StopWritesThreshold:       12,
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("pebblebackend: open: %w", err)
	}
	return &Backend{db: db}, nil
}

func (b *Backend) Close() error { return b.db.Close() }

func (b *Backend) Insert(key int32, value string) error {
	if err := b.db.Set(encodeKey(key), []byte(value), pebble.NoSync); err != nil {
		return fmt.Errorf("pebblebackend: set: %w", err)
	}
	return nil
}

func (b *Backend) Range(low, high int32) (bench.Iterator, error) {
	iter, err := b.db.NewIter(&pebble.IterOptions{
		LowerBound: encodeKey(low),
		UpperBound: encodeKeyExclusive(high),
	})
	if err != nil {
		return nil, fmt.Errorf("pebblebackend: range: %w", err)
	}
	iter.First()
	return &rangeIterator{iter: iter, first: true}, nil
}

// encodeKey encodes key as 4-byte big-endian so Pebble's byte-lexical
// ordering matches integer ordering for non-negative keys; negative keys
// encode above every non-negative key.
func encodeKey(key int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(key))
	return b
}

func encodeKeyExclusive(key int32) []byte { return encodeKey(key + 1) }

type rangeIterator struct {
	iter  *pebble.Iterator
	first bool
	key   int32
	val   string
}

func (it *rangeIterator) Next() bool {
	var valid bool
	if it.first {
		it.first = false
		valid = it.iter.Valid()
	} else {
		valid = it.iter.Next()
	}
	if !valid {
		return false
	}
	it.key = int32(binary.BigEndian.Uint32(it.iter.Key()))
	it.val = string(it.iter.Value())
	return true
}

func (it *rangeIterator) Key() int32    { return it.key }
func (it *rangeIterator) Value() string { return it.val }
func (it *rangeIterator) Close() error  { return it.iter.Close() }
