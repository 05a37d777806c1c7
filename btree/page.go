package btree

import (
	"encoding/binary"

	"relidx/pagefile"
	"relidx/recordfile"
)

// Key is the indexed column's type: a signed integer. The sentinel -1
// marks an absent slot in a leaf page; the sentinel 0 marks an absent
// slot in an internal page (spec §9: user keys must be >= 1 to avoid
// colliding with the internal-node absent sentinel).
type Key = int32

// PageID is a page file page identifier. -1 means "no such page" (e.g.
// the sibling pointer of the last leaf).
type PageID = int32

const (
	pageIDSize    = 4
	leafEntrySize = 4 + 4 + 4 // key + locator.Page + locator.Slot
	intEntrySize  = 4 + 4     // key + child page id

	// L is the leaf fan-out for pagefile.PageSize, N the internal fan-out.
	L = (pagefile.PageSize - pageIDSize) / leafEntrySize
	N = (pagefile.PageSize - pageIDSize) / intEntrySize
)

// newLeafPage returns a fresh leaf page buffer: every byte 0xFF, so every
// slot reads back as an absent key (-1) and an absent locator (-1,-1),
// with no next sibling.
func newLeafPage() []byte {
	buf := make([]byte, pagefile.PageSize)
	for i := range buf {
		buf[i] = 0xFF
	}
	return buf
}

// newInternalPage returns a fresh internal page buffer: every byte zero,
// so every slot reads back as an absent key (0) and child pointer 0.
func newInternalPage() []byte {
	return make([]byte, pagefile.PageSize)
}

// leafKeyCount scans from slot 0 for the first absent key (-1); that
// index is the count of live entries (invariant: keys ascending, so
// absent slots only ever trail live ones).
func leafKeyCount(buf []byte) int {
	for i := 0; i < L; i++ {
		if leafEntryKey(buf, i) == -1 {
			return i
		}
	}
	return L
}

func leafEntryOffset(eid int) int { return eid * leafEntrySize }

func leafEntryKey(buf []byte, eid int) Key {
	off := leafEntryOffset(eid)
	return int32(binary.LittleEndian.Uint32(buf[off : off+4]))
}

func leafEntryLocator(buf []byte, eid int) recordfile.Locator {
	off := leafEntryOffset(eid)
	page := int32(binary.LittleEndian.Uint32(buf[off+4 : off+8]))
	slot := int32(binary.LittleEndian.Uint32(buf[off+8 : off+12]))
	return recordfile.Locator{Page: int(page), Slot: int(slot)}
}

func leafSetEntry(buf []byte, eid int, key Key, loc recordfile.Locator) {
	off := leafEntryOffset(eid)
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(key))
	binary.LittleEndian.PutUint32(buf[off+4:off+8], uint32(int32(loc.Page)))
	binary.LittleEndian.PutUint32(buf[off+8:off+12], uint32(int32(loc.Slot)))
}

func leafClearEntry(buf []byte, eid int) {
	off := leafEntryOffset(eid)
	for i := off; i < off+leafEntrySize; i++ {
		buf[i] = 0xFF
	}
}

func leafNextPtrOffset() int { return L * leafEntrySize }

func leafGetNextPtr(buf []byte) PageID {
	off := leafNextPtrOffset()
	return int32(binary.LittleEndian.Uint32(buf[off : off+4]))
}

func leafSetNextPtr(buf []byte, pid PageID) {
	off := leafNextPtrOffset()
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(pid))
}

// internalKeyCount scans from slot 0 for the first absent key (0).
func internalKeyCount(buf []byte) int {
	for i := 0; i < N; i++ {
		if internalEntryKey(buf, i) == 0 {
			return i
		}
	}
	return N
}

func internalLeadingChild(buf []byte) PageID {
	return int32(binary.LittleEndian.Uint32(buf[0:4]))
}

func internalSetLeadingChild(buf []byte, pid PageID) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(pid))
}

func internalEntryOffset(eid int) int { return pageIDSize + eid*intEntrySize }

func internalEntryKey(buf []byte, eid int) Key {
	off := internalEntryOffset(eid)
	return int32(binary.LittleEndian.Uint32(buf[off : off+4]))
}

func internalEntryChild(buf []byte, eid int) PageID {
	off := internalEntryOffset(eid)
	return int32(binary.LittleEndian.Uint32(buf[off+4 : off+8]))
}

func internalSetEntry(buf []byte, eid int, key Key, child PageID) {
	off := internalEntryOffset(eid)
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(key))
	binary.LittleEndian.PutUint32(buf[off+4:off+8], uint32(child))
}

func internalClearEntry(buf []byte, eid int) {
	off := internalEntryOffset(eid)
	for i := off; i < off+intEntrySize; i++ {
		buf[i] = 0
	}
}
