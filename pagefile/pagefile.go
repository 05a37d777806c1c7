// Package pagefile implements the fixed-size page array that the B+Tree
// index engine is built on: a file of PageSize-byte pages addressed by
// non-negative page identifiers, read and written through with no
// eviction policy.
package pagefile

import (
	"fmt"
	"os"
)

// PageSize is the fixed size of every page of every PageFile. The index
// engine derives its node capacities from it.
const PageSize = 1024

// Mode selects how the underlying OS file is opened.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

// PageFile is a fixed-size page array backed by an OS file. Page 0 is not
// reserved by this package — callers decide what lives there.
type PageFile struct {
	f        *os.File
	readOnly bool
}

// Open opens path, creating it in ReadWrite mode if it does not exist.
func Open(path string, mode Mode) (*PageFile, error) {
	flags := os.O_RDWR | os.O_CREATE
	if mode == ReadOnly {
		flags = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("pagefile: open %s: %w", path, err)
	}
	return &PageFile{f: f, readOnly: mode == ReadOnly}, nil
}

// Close closes the underlying file.
func (pf *PageFile) Close() error {
	return pf.f.Close()
}

// Read fills buf (which must be PageSize bytes) with the contents of page
// pid. Reading a page past EndPid returns a zero-filled buffer, matching a
// file whose end has not yet been extended that far.
func (pf *PageFile) Read(pid int, buf []byte) error {
	if pid < 0 {
		return fmt.Errorf("pagefile: read: negative page id %d", pid)
	}
	if len(buf) != PageSize {
		return fmt.Errorf("pagefile: read: buffer must be %d bytes, got %d", PageSize, len(buf))
	}
	n, err := pf.f.ReadAt(buf, int64(pid)*PageSize)
	if err != nil && n < PageSize {
		for i := n; i < PageSize; i++ {
			buf[i] = 0
		}
	}
	return nil
}

// Write writes buf (which must be PageSize bytes) to page pid, extending
// the file if pid is past the current end.
func (pf *PageFile) Write(pid int, buf []byte) error {
	if pf.readOnly {
		return fmt.Errorf("pagefile: write: file opened read-only")
	}
	if pid < 0 {
		return fmt.Errorf("pagefile: write: negative page id %d", pid)
	}
	if len(buf) != PageSize {
		return fmt.Errorf("pagefile: write: buffer must be %d bytes, got %d", PageSize, len(buf))
	}
	if _, err := pf.f.WriteAt(buf, int64(pid)*PageSize); err != nil {
		return fmt.Errorf("pagefile: write page %d: %w", pid, err)
	}
	return nil
}

// EndPid returns one past the highest page identifier backed by the file,
// i.e. the page id a fresh allocation should use. Zero for an empty file.
func (pf *PageFile) EndPid() (int, error) {
	info, err := pf.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("pagefile: stat: %w", err)
	}
	full := info.Size() / PageSize
	if info.Size()%PageSize != 0 {
		full++
	}
	return int(full), nil
}
