package btree

import (
	"testing"

	"relidx/recordfile"
)

func loc(p, s int) recordfile.Locator { return recordfile.Locator{Page: p, Slot: s} }

func TestLeafInsertKeepsAscendingOrder(t *testing.T) {
	leaf := freshLeaf()
	for _, k := range []Key{10, 5, 20} {
		if err := leaf.Insert(k, loc(0, int(k))); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}
	if got := leaf.KeyCount(); got != 3 {
		t.Fatalf("KeyCount = %d, want 3", got)
	}
	wantKeys := []Key{5, 10, 20}
	for i, want := range wantKeys {
		k, l, err := leaf.ReadEntry(i)
		if err != nil {
			t.Fatalf("ReadEntry(%d): %v", i, err)
		}
		if k != want {
			t.Fatalf("entry %d key = %d, want %d", i, k, want)
		}
		if l != loc(0, int(want)) {
			t.Fatalf("entry %d locator = %+v", i, l)
		}
	}
}

func TestLeafLocate(t *testing.T) {
	leaf := freshLeaf()
	for _, k := range []Key{5, 10, 20} {
		_ = leaf.Insert(k, loc(0, int(k)))
	}
	if eid, found := leaf.Locate(10); !found || eid != 1 {
		t.Fatalf("Locate(10) = (%d, %v), want (1, true)", eid, found)
	}
	if eid, found := leaf.Locate(7); found || eid != 1 {
		t.Fatalf("Locate(7) = (%d, %v), want (1, false)", eid, found)
	}
	if eid, found := leaf.Locate(99); found || eid != 3 {
		t.Fatalf("Locate(99) = (%d, %v), want (3, false)", eid, found)
	}
}

func TestLeafReadEntryOutOfRange(t *testing.T) {
	leaf := freshLeaf()
	_ = leaf.Insert(1, loc(0, 0))
	if _, _, err := leaf.ReadEntry(1); err != ErrInvalidCursor {
		t.Fatalf("ReadEntry(1) err = %v, want ErrInvalidCursor", err)
	}
	if _, _, err := leaf.ReadEntry(-1); err != ErrInvalidCursor {
		t.Fatalf("ReadEntry(-1) err = %v, want ErrInvalidCursor", err)
	}
}

func TestLeafInsertNodeFull(t *testing.T) {
	leaf := freshLeaf()
	for k := Key(1); k <= L; k++ {
		if err := leaf.Insert(k, loc(0, int(k))); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}
	if err := leaf.Insert(Key(L+1), loc(0, 0)); err != ErrNodeFull {
		t.Fatalf("Insert past capacity err = %v, want ErrNodeFull", err)
	}
}

// TestLeafFirstSplit mirrors spec §8's "First leaf split" scenario: insert
// keys 1..86 (capacity 85); the 86th insert splits into two 43-entry
// leaves.
func TestLeafFirstSplit(t *testing.T) {
	leaf := freshLeaf()
	for k := Key(1); k <= L; k++ {
		if err := leaf.Insert(k, loc(0, int(k))); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}
	if err := leaf.Insert(Key(L+1), loc(0, L+1)); err != ErrNodeFull {
		t.Fatalf("expected ErrNodeFull before split, got %v", err)
	}

	sibling := freshLeaf()
	splitKey := leaf.InsertAndSplit(Key(L+1), loc(0, L+1), sibling)

	if leaf.KeyCount() != 43 {
		t.Fatalf("original leaf count = %d, want 43", leaf.KeyCount())
	}
	if sibling.KeyCount() != 43 {
		t.Fatalf("sibling leaf count = %d, want 43", sibling.KeyCount())
	}
	if splitKey != 44 {
		t.Fatalf("splitKey = %d, want 44", splitKey)
	}

	// All 86 keys, read across both leaves in order, must be 1..86.
	want := Key(1)
	for i := 0; i < leaf.KeyCount(); i++ {
		k, _, _ := leaf.ReadEntry(i)
		if k != want {
			t.Fatalf("original[%d] = %d, want %d", i, k, want)
		}
		want++
	}
	for i := 0; i < sibling.KeyCount(); i++ {
		k, _, _ := sibling.ReadEntry(i)
		if k != want {
			t.Fatalf("sibling[%d] = %d, want %d", i, k, want)
		}
		want++
	}
	if want != L+2 {
		t.Fatalf("visited %d keys, want %d", want-1, L+1)
	}
}

func TestLeafSiblingPointers(t *testing.T) {
	leaf := freshLeaf()
	if leaf.GetNextNodePtr() != -1 {
		t.Fatalf("fresh leaf next = %d, want -1", leaf.GetNextNodePtr())
	}
	if err := leaf.SetNextNodePtr(7); err != nil {
		t.Fatalf("SetNextNodePtr(7): %v", err)
	}
	if leaf.GetNextNodePtr() != 7 {
		t.Fatalf("GetNextNodePtr = %d, want 7", leaf.GetNextNodePtr())
	}
	if err := leaf.SetNextNodePtr(-2); err != ErrInvalidPid {
		t.Fatalf("SetNextNodePtr(-2) err = %v, want ErrInvalidPid", err)
	}
}
