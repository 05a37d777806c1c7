package btree

import "relidx/recordfile"

// Cursor is iteration state into the tree: a leaf page id and an entry
// index within that leaf. It holds no page; coordinates are re-resolved
// against the page file on every read.
type Cursor struct {
	Pid PageID
	Eid int
}

// EndCursor is returned once forward iteration has walked off the last
// leaf; any further read fails with ErrEndOfTree.
var EndCursor = Cursor{Pid: -1, Eid: -1}

func (c Cursor) atEnd() bool { return c.Pid == -1 }

// readForward reads the entry at cursor, then advances it to the next
// entry in ascending key order (within the same leaf, or across the
// sibling pointer). It returns the entry read and the cursor's new
// position; the new position is EndCursor once the last leaf's last
// entry has been consumed.
//
// A cursor landing on eid == keyCount of its leaf (spec §4.4's locate
// return for a searchKey past every key in that leaf) holds no entry to
// read there; that is an advance signal, not an error, so it follows the
// sibling pointer until it finds a leaf with an entry or runs off the
// end of the tree.
func (t *Tree) readForward(cur Cursor) (Key, recordfile.Locator, Cursor, error) {
	for {
		if cur.atEnd() {
			return 0, recordfile.Absent, EndCursor, ErrEndOfTree
		}
		end, err := t.endPid()
		if err != nil {
			return 0, recordfile.Absent, EndCursor, err
		}
		if cur.Pid < 0 || int(cur.Pid) >= end {
			return 0, recordfile.Absent, EndCursor, ErrInvalidCursor
		}

		leaf, err := t.readLeaf(cur.Pid)
		if err != nil {
			return 0, recordfile.Absent, EndCursor, err
		}
		count := leaf.KeyCount()
		if cur.Eid >= count {
			sib := leaf.GetNextNodePtr()
			if sib == -1 {
				return 0, recordfile.Absent, EndCursor, ErrEndOfTree
			}
			cur = Cursor{Pid: sib, Eid: 0}
			continue
		}

		key, loc, err := leaf.ReadEntry(cur.Eid)
		if err != nil {
			return 0, recordfile.Absent, EndCursor, err
		}

		next := cur
		if cur.Eid+1 < count {
			next.Eid++
		} else {
			sib := leaf.GetNextNodePtr()
			if sib == -1 {
				next = EndCursor
			} else {
				next = Cursor{Pid: sib, Eid: 0}
			}
		}
		return key, loc, next, nil
	}
}
