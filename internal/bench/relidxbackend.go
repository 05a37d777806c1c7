package bench

import (
	"fmt"

	"relidx/btree"
	"relidx/recordfile"
)

// RelidxBackend adapts the tree index + record file pair to Backend so it
// can be driven by the same workload mixes as pebblebackend.
type RelidxBackend struct {
	tree *btree.Tree
	rf   *recordfile.RecordFile
}

func NewRelidxBackend(tree *btree.Tree, rf *recordfile.RecordFile) *RelidxBackend {
	return &RelidxBackend{tree: tree, rf: rf}
}

func (b *RelidxBackend) Insert(key int32, value string) error {
	loc, err := b.rf.Append(key, value)
	if err != nil {
		return fmt.Errorf("relidxbackend: append: %w", err)
	}
	return b.tree.Insert(key, loc)
}

func (b *RelidxBackend) Range(low, high int32) (Iterator, error) {
	cur, err := b.tree.Locate(low)
	if err != nil && err != btree.ErrNoSuchRecord {
		return nil, fmt.Errorf("relidxbackend: locate: %w", err)
	}
	return &relidxIterator{backend: b, cur: cur, high: high}, nil
}

func (b *RelidxBackend) Close() error { return b.tree.Close() }

type relidxIterator struct {
	backend *RelidxBackend
	cur     btree.Cursor
	high    int32
	key     int32
	val     string
	done    bool
}

func (it *relidxIterator) Next() bool {
	if it.done {
		return false
	}
	key, loc, next, err := it.backend.tree.ReadForward(it.cur)
	if err != nil || key > it.high {
		it.done = true
		return false
	}
	_, val, err := it.backend.rf.Read(loc)
	if err != nil {
		it.done = true
		return false
	}
	it.cur, it.key, it.val = next, key, val
	return true
}

func (it *relidxIterator) Key() int32    { return it.key }
func (it *relidxIterator) Value() string { return it.val }
func (it *relidxIterator) Close() error  { return nil }
