package btree

import "relidx/recordfile"

// LeafNode is an in-memory view of one leaf page: up to L (key, locator)
// entries in ascending key order, plus a pointer to the next leaf.
type LeafNode struct {
	buf []byte
}

// newLeaf wraps an existing page buffer (already decoded from disk).
func newLeaf(buf []byte) *LeafNode { return &LeafNode{buf: buf} }

// freshLeaf returns a LeafNode for a brand new, empty page.
func freshLeaf() *LeafNode {
	n := newLeaf(newLeafPage())
	n.setNextSibling(-1)
	return n
}

func (n *LeafNode) bytes() []byte { return n.buf }

// KeyCount returns the number of live entries.
func (n *LeafNode) KeyCount() int { return leafKeyCount(n.buf) }

// Locate performs the ascending linear scan described in spec §4.2: it
// returns (i, true) when entry i's key equals searchKey, else (i, false)
// with i set to the index of the first key greater than searchKey (or
// KeyCount() when searchKey exceeds every key present).
func (n *LeafNode) Locate(searchKey Key) (int, bool) {
	count := n.KeyCount()
	for i := 0; i < count; i++ {
		k := leafEntryKey(n.buf, i)
		if k == searchKey {
			return i, true
		}
		if k > searchKey {
			return i, false
		}
	}
	return count, false
}

// ReadEntry returns the (key, locator) pair at eid.
func (n *LeafNode) ReadEntry(eid int) (Key, recordfile.Locator, error) {
	if eid < 0 || eid >= n.KeyCount() {
		return 0, recordfile.Absent, ErrInvalidCursor
	}
	return leafEntryKey(n.buf, eid), leafEntryLocator(n.buf, eid), nil
}

// Insert adds (key, loc) in sorted position. Fails with ErrNodeFull when
// the leaf has no room.
func (n *LeafNode) Insert(key Key, loc recordfile.Locator) error {
	count := n.KeyCount()
	if count == L {
		return ErrNodeFull
	}
	eid, _ := n.Locate(key)
	n.shiftRight(eid, count)
	leafSetEntry(n.buf, eid, key, loc)
	return nil
}

// shiftRight moves entries [from, count) one slot to the right to make
// room for an insertion at `from`.
func (n *LeafNode) shiftRight(from, count int) {
	for i := count; i > from; i-- {
		k := leafEntryKey(n.buf, i-1)
		loc := leafEntryLocator(n.buf, i-1)
		leafSetEntry(n.buf, i, k, loc)
	}
}

// InsertAndSplit splits a full leaf: precondition KeyCount() == L and
// sibling is a fresh, empty leaf. It decides which half the new entry
// lands in per spec §4.2's mid = ceil((L+1)/2) rule, moves the upper half
// into sibling, and returns sibling's smallest key.
func (n *LeafNode) InsertAndSplit(key Key, loc recordfile.Locator, sibling *LeafNode) Key {
	mid := (L + 1 + 1) / 2 // ceil((L+1)/2)

	if key < leafEntryKey(n.buf, mid-1) {
		// New entry belongs in the lower (original) half; move
		// [mid-1, L) to sibling, then insert into the original.
		n.moveTo(sibling, mid-1, L)
		eid, _ := n.Locate(key)
		n.shiftRight(eid, n.KeyCount())
		leafSetEntry(n.buf, eid, key, loc)
	} else {
		// New entry belongs in the upper half; move [mid, L) to
		// sibling, then insert into the sibling.
		n.moveTo(sibling, mid, L)
		eid, _ := sibling.Locate(key)
		sibling.shiftRight(eid, sibling.KeyCount())
		leafSetEntry(sibling.buf, eid, key, loc)
	}

	sibling.setNextSibling(n.GetNextNodePtr())
	return leafEntryKey(sibling.buf, 0)
}

// moveTo copies entries [from, to) of n into the front of sibling (which
// must be empty) and clears them from n.
func (n *LeafNode) moveTo(sibling *LeafNode, from, to int) {
	for i := from; i < to; i++ {
		k := leafEntryKey(n.buf, i)
		loc := leafEntryLocator(n.buf, i)
		leafSetEntry(sibling.buf, i-from, k, loc)
		leafClearEntry(n.buf, i)
	}
}

// GetNextNodePtr returns the trailing sibling pointer (-1 if none).
func (n *LeafNode) GetNextNodePtr() PageID { return leafGetNextPtr(n.buf) }

// SetNextNodePtr writes the trailing sibling pointer. Any negative value
// other than -1 is rejected.
func (n *LeafNode) SetNextNodePtr(pid PageID) error {
	if pid < 0 && pid != -1 {
		return ErrInvalidPid
	}
	n.setNextSibling(pid)
	return nil
}

func (n *LeafNode) setNextSibling(pid PageID) { leafSetNextPtr(n.buf, pid) }
