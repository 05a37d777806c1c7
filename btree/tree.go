package btree

import (
	"encoding/binary"
	"fmt"

	"relidx/pagefile"
	"relidx/recordfile"
)

// Tree is the B+Tree index engine (spec C4): it owns the page file handle
// exclusively, persists [rootPid, height] in page 0, and drives the
// recursive insert and search paths over C2/C3 node views.
type Tree struct {
	pf       *pagefile.PageFile
	rootPid  PageID
	height   int
	readOnly bool
}

// Open opens (or initializes) an index page file at path. A fresh file is
// given rootPid=1, height=0 and an eager empty leaf (sibling -1) at page
// 1, per spec §4.4's "eager initialization" resolution.
func Open(path string, mode pagefile.Mode) (*Tree, error) {
	pf, err := pagefile.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("btree: open %s: %w", path, err)
	}
	t := &Tree{pf: pf, readOnly: mode == pagefile.ReadOnly}

	end, err := pf.EndPid()
	if err != nil {
		return nil, fmt.Errorf("btree: stat %s: %w", path, err)
	}
	if end == 0 {
		if t.readOnly {
			return nil, fmt.Errorf("btree: open %s: %w", path, ErrInvalidFileFormat)
		}
		t.rootPid = 1
		t.height = 0
		if err := t.writeMeta(); err != nil {
			return nil, err
		}
		if err := t.writeLeaf(1, freshLeaf()); err != nil {
			return nil, err
		}
		return t, nil
	}

	if err := t.readMeta(); err != nil {
		return nil, err
	}
	return t, nil
}

// Close releases the underlying page file.
func (t *Tree) Close() error { return t.pf.Close() }

func (t *Tree) endPid() (int, error) {
	end, err := t.pf.EndPid()
	if err != nil {
		return 0, fmt.Errorf("btree: endPid: %w", err)
	}
	return end, nil
}

func (t *Tree) readMeta() error {
	buf := make([]byte, pagefile.PageSize)
	if err := t.pf.Read(0, buf); err != nil {
		return fmt.Errorf("btree: read meta: %w", err)
	}
	t.rootPid = int32(binary.LittleEndian.Uint32(buf[0:4]))
	t.height = int(int32(binary.LittleEndian.Uint32(buf[4:8])))
	return nil
}

func (t *Tree) writeMeta() error {
	buf := make([]byte, pagefile.PageSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(t.rootPid))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(int32(t.height)))
	if err := t.pf.Write(0, buf); err != nil {
		return fmt.Errorf("btree: write meta: %w", err)
	}
	return nil
}

func (t *Tree) readLeaf(pid PageID) (*LeafNode, error) {
	buf := make([]byte, pagefile.PageSize)
	if err := t.pf.Read(int(pid), buf); err != nil {
		return nil, fmt.Errorf("btree: read leaf %d: %w", pid, err)
	}
	return newLeaf(buf), nil
}

func (t *Tree) writeLeaf(pid PageID, n *LeafNode) error {
	if err := t.pf.Write(int(pid), n.bytes()); err != nil {
		return fmt.Errorf("btree: write leaf %d: %w", pid, err)
	}
	return nil
}

func (t *Tree) readInternal(pid PageID) (*InternalNode, error) {
	buf := make([]byte, pagefile.PageSize)
	if err := t.pf.Read(int(pid), buf); err != nil {
		return nil, fmt.Errorf("btree: read internal %d: %w", pid, err)
	}
	return newInternal(buf), nil
}

func (t *Tree) writeInternal(pid PageID, n *InternalNode) error {
	if err := t.pf.Write(int(pid), n.bytes()); err != nil {
		return fmt.Errorf("btree: write internal %d: %w", pid, err)
	}
	return nil
}

func (t *Tree) allocPage() (PageID, error) {
	end, err := t.endPid()
	if err != nil {
		return 0, err
	}
	return int32(end), nil
}

// promotion carries a split's median key and new sibling page up to the
// parent level; a zero-value promotion with ok==false means "no split".
type promotion struct {
	key Key
	pid PageID
	ok  bool
}

// Insert adds (key, loc) to the tree, splitting nodes and growing height
// as needed.
func (t *Tree) Insert(key Key, loc recordfile.Locator) error {
	if t.readOnly {
		return fmt.Errorf("btree: insert: %w", ErrInvalidFileFormat)
	}
	p, err := t.insertRec(t.rootPid, 0, key, loc)
	if err != nil {
		return err
	}
	if p.ok {
		newRootPid, err := t.allocPage()
		if err != nil {
			return err
		}
		root := newInternal(newInternalPage())
		root.InitializeRoot(t.rootPid, p.key, p.pid)
		if err := t.writeInternal(newRootPid, root); err != nil {
			return err
		}
		t.rootPid = newRootPid
		t.height++
		if err := t.writeMeta(); err != nil {
			return err
		}
	}
	return nil
}

// insertRec implements spec §4.4's recursive insert: d == height is the
// leaf level (base case), d < height recurses through an internal node.
func (t *Tree) insertRec(pid PageID, d int, key Key, loc recordfile.Locator) (promotion, error) {
	if d == t.height {
		leaf, err := t.readLeaf(pid)
		if err != nil {
			return promotion{}, err
		}
		if err := leaf.Insert(key, loc); err == nil {
			return promotion{}, t.writeLeaf(pid, leaf)
		} else if err != ErrNodeFull {
			return promotion{}, err
		}

		siblingPid, err := t.allocPage()
		if err != nil {
			return promotion{}, err
		}
		sibling := freshLeaf()
		splitKey := leaf.InsertAndSplit(key, loc, sibling)
		oldNext := leaf.GetNextNodePtr()
		if err := leaf.SetNextNodePtr(siblingPid); err != nil {
			return promotion{}, err
		}
		if err := sibling.SetNextNodePtr(oldNext); err != nil {
			return promotion{}, err
		}
		if err := t.writeLeaf(siblingPid, sibling); err != nil {
			return promotion{}, err
		}
		if err := t.writeLeaf(pid, leaf); err != nil {
			return promotion{}, err
		}
		return promotion{key: splitKey, pid: siblingPid, ok: true}, nil
	}

	node, err := t.readInternal(pid)
	if err != nil {
		return promotion{}, err
	}
	childPid := node.LocateChildPtr(key)
	childPromo, err := t.insertRec(childPid, d+1, key, loc)
	if err != nil {
		return promotion{}, err
	}
	if !childPromo.ok {
		return promotion{}, nil
	}

	if err := node.Insert(childPromo.key, childPromo.pid); err == nil {
		return promotion{}, t.writeInternal(pid, node)
	} else if err != ErrNodeFull {
		return promotion{}, err
	}

	siblingPid, err := t.allocPage()
	if err != nil {
		return promotion{}, err
	}
	sibling := newInternal(newInternalPage())
	medianKey := node.InsertAndSplit(childPromo.key, childPromo.pid, sibling)
	if err := t.writeInternal(siblingPid, sibling); err != nil {
		return promotion{}, err
	}
	if err := t.writeInternal(pid, node); err != nil {
		return promotion{}, err
	}
	return promotion{key: medianKey, pid: siblingPid, ok: true}, nil
}

// Locate descends from the root using locateChildPtr at each internal
// level, then calls the destination leaf's locate. It returns the cursor
// and ErrNoSuchRecord when no exact match was found (the cursor is still
// valid, positioned at the first greater key).
func (t *Tree) Locate(searchKey Key) (Cursor, error) {
	pid := t.rootPid
	for d := 0; d < t.height; d++ {
		node, err := t.readInternal(pid)
		if err != nil {
			return Cursor{}, err
		}
		pid = node.LocateChildPtr(searchKey)
	}
	leaf, err := t.readLeaf(pid)
	if err != nil {
		return Cursor{}, err
	}
	eid, found := leaf.Locate(searchKey)
	cur := Cursor{Pid: pid, Eid: eid}
	if !found {
		return cur, ErrNoSuchRecord
	}
	return cur, nil
}

// ReadForward reads the entry at cur and returns it along with the
// cursor advanced to the next entry in ascending key order.
func (t *Tree) ReadForward(cur Cursor) (Key, recordfile.Locator, Cursor, error) {
	return t.readForward(cur)
}

// RootPid and Height expose the persisted metadata (for tests and
// diagnostics).
func (t *Tree) RootPid() PageID { return t.rootPid }
func (t *Tree) Height() int     { return t.height }
