// Package recordfile implements the flat record table the B+Tree index
// accelerates lookups into: an append-only heap of (key, value) tuples
// addressed by record locators (page/slot pairs).
//
// Page layout (adapted from a slotted heap page: fixed header, row bytes
// growing forward from the header, a slot directory growing backward from
// the end of the page):
//
//	offset 0:  numSlots  uint16
//	offset 2:  freeStart uint16 — next free byte for row data
//	offset 4.. row bytes: [key int32][valueLen uint16][value bytes]
//	...
//	slot i, from the end: [rowOffset uint16][rowLen uint16], slot i at
//	PageSize - (i+1)*4
package recordfile

import (
	"encoding/binary"
	"fmt"

	"relidx/pagefile"
)

const (
	pageHeaderSize = 4
	slotSize       = 4
	rowFixedSize   = 4 + 2 // key + valueLen
)

// Locator identifies a record by (page, slot). The zero value (0, 0)
// addresses the first record of page 0; use Absent for "no record".
type Locator struct {
	Page int
	Slot int
}

// Absent is the reserved "no record" locator, (-1, -1).
var Absent = Locator{Page: -1, Slot: -1}

// RecordFile is an append-only table of (key, value) tuples.
type RecordFile struct {
	pf       *pagefile.PageFile
	lastPage int // page currently being appended to; -1 if file is empty
}

// Open opens or creates the record file at path.
func Open(path string, mode pagefile.Mode) (*RecordFile, error) {
	pf, err := pagefile.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("recordfile: open: %w", err)
	}
	end, err := pf.EndPid()
	if err != nil {
		return nil, err
	}
	rf := &RecordFile{pf: pf, lastPage: end - 1}
	return rf, nil
}

// Close closes the underlying page file.
func (rf *RecordFile) Close() error {
	return rf.pf.Close()
}

func newPage() []byte {
	buf := make([]byte, pagefile.PageSize)
	binary.LittleEndian.PutUint16(buf[0:2], 0)
	binary.LittleEndian.PutUint16(buf[2:4], pageHeaderSize)
	return buf
}

func numSlots(p []byte) int        { return int(binary.LittleEndian.Uint16(p[0:2])) }
func setNumSlots(p []byte, n int)  { binary.LittleEndian.PutUint16(p[0:2], uint16(n)) }
func freeStart(p []byte) int       { return int(binary.LittleEndian.Uint16(p[2:4])) }
func setFreeStart(p []byte, v int) { binary.LittleEndian.PutUint16(p[2:4], uint16(v)) }

func slotPos(i int) int { return pagefile.PageSize - (i+1)*slotSize }

func getSlot(p []byte, i int) (off, length int) {
	pos := slotPos(i)
	return int(binary.LittleEndian.Uint16(p[pos : pos+2])), int(binary.LittleEndian.Uint16(p[pos+2 : pos+4]))
}

func setSlot(p []byte, i, off, length int) {
	pos := slotPos(i)
	binary.LittleEndian.PutUint16(p[pos:pos+2], uint16(off))
	binary.LittleEndian.PutUint16(p[pos+2:pos+4], uint16(length))
}

func encodeRow(key int32, value string) []byte {
	row := make([]byte, rowFixedSize+len(value))
	binary.LittleEndian.PutUint32(row[0:4], uint32(key))
	binary.LittleEndian.PutUint16(row[4:6], uint16(len(value)))
	copy(row[6:], value)
	return row
}

func decodeRow(row []byte) (int32, string) {
	key := int32(binary.LittleEndian.Uint32(row[0:4]))
	vlen := int(binary.LittleEndian.Uint16(row[4:6]))
	return key, string(row[6 : 6+vlen])
}

// Append adds (key, value) to the file, allocating a new page if the
// current last page has no room, and returns the record's locator.
func (rf *RecordFile) Append(key int32, value string) (Locator, error) {
	row := encodeRow(key, value)

	if rf.lastPage >= 0 {
		buf := make([]byte, pagefile.PageSize)
		if err := rf.pf.Read(rf.lastPage, buf); err != nil {
			return Absent, err
		}
		n := numSlots(buf)
		fs := freeStart(buf)
		if fs+len(row)+slotSize <= pagefile.PageSize-n*slotSize {
			copy(buf[fs:fs+len(row)], row)
			setSlot(buf, n, fs, len(row))
			setNumSlots(buf, n+1)
			setFreeStart(buf, fs+len(row))
			if err := rf.pf.Write(rf.lastPage, buf); err != nil {
				return Absent, err
			}
			return Locator{Page: rf.lastPage, Slot: n}, nil
		}
	}

	// Need a fresh page.
	pid := rf.lastPage + 1
	buf := newPage()
	fs := freeStart(buf)
	if fs+len(row)+slotSize > pagefile.PageSize {
		return Absent, fmt.Errorf("recordfile: value too large for a page (%d bytes)", len(value))
	}
	copy(buf[fs:fs+len(row)], row)
	setSlot(buf, 0, fs, len(row))
	setNumSlots(buf, 1)
	setFreeStart(buf, fs+len(row))
	if err := rf.pf.Write(pid, buf); err != nil {
		return Absent, err
	}
	rf.lastPage = pid
	return Locator{Page: pid, Slot: 0}, nil
}

// Read returns the (key, value) stored at loc.
func (rf *RecordFile) Read(loc Locator) (int32, string, error) {
	if loc.Page < 0 || loc.Slot < 0 {
		return 0, "", fmt.Errorf("recordfile: read: invalid locator %+v", loc)
	}
	buf := make([]byte, pagefile.PageSize)
	if err := rf.pf.Read(loc.Page, buf); err != nil {
		return 0, "", err
	}
	n := numSlots(buf)
	if loc.Slot >= n {
		return 0, "", fmt.Errorf("recordfile: read: slot %d out of range (page has %d)", loc.Slot, n)
	}
	off, length := getSlot(buf, loc.Slot)
	key, value := decodeRow(buf[off : off+length])
	return key, value, nil
}

// EndLocator returns the locator one past the last appended record,
// suitable as the exclusive upper bound of a forward scan.
func (rf *RecordFile) EndLocator() (Locator, error) {
	if rf.lastPage < 0 {
		return Locator{Page: 0, Slot: 0}, nil
	}
	buf := make([]byte, pagefile.PageSize)
	if err := rf.pf.Read(rf.lastPage, buf); err != nil {
		return Absent, err
	}
	return Locator{Page: rf.lastPage, Slot: numSlots(buf)}, nil
}

// Scan calls fn for every record in append order, stopping early if fn
// returns false or an error.
func (rf *RecordFile) Scan(fn func(loc Locator, key int32, value string) (bool, error)) error {
	for pid := 0; pid <= rf.lastPage; pid++ {
		buf := make([]byte, pagefile.PageSize)
		if err := rf.pf.Read(pid, buf); err != nil {
			return err
		}
		n := numSlots(buf)
		for i := 0; i < n; i++ {
			off, length := getSlot(buf, i)
			key, value := decodeRow(buf[off : off+length])
			cont, err := fn(Locator{Page: pid, Slot: i}, key, value)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
	}
	return nil
}
