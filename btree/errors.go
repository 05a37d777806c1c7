package btree

import "errors"

// Sentinel errors for the conditions the B+Tree engine and its nodes can
// raise. NodeFull is always recovered locally by a split; the rest are
// surfaced to the caller.
var (
	ErrNodeFull          = errors.New("btree: node full")
	ErrNoSuchRecord      = errors.New("btree: no such record")
	ErrInvalidCursor     = errors.New("btree: invalid cursor")
	ErrInvalidPid        = errors.New("btree: invalid page id")
	ErrInvalidRid        = errors.New("btree: invalid record locator")
	ErrInvalidAttribute  = errors.New("btree: invalid attribute")
	ErrInvalidFileFormat = errors.New("btree: invalid file format")
	ErrEndOfTree         = errors.New("btree: end of tree")
)
