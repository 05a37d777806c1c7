// Package selector implements the index-aware selector (spec §4.5): it
// folds a predicate conjunction into a key-range bound, drives a range
// scan through the B+Tree when a bound exists, and falls back to a full
// table scan over the record file otherwise.
package selector

import (
	"fmt"
	"io"
	"math"

	"relidx/btree"
	"relidx/predicate"
	"relidx/recordfile"
)

// Bounds is the result of folding a predicate conjunction (spec §4.5
// steps 1-2): an inclusive [LowKey, HighKey] integer range plus a
// residual not-equal set, and a value range (possibly exclusive at
// either end, since strings have no successor/predecessor arithmetic)
// plus its own residual not-equal set.
type Bounds struct {
	LowKey, HighKey       int32
	HasLowKey, HasHighKey bool
	NEQKeys               []int32

	LowVal, HighVal                   string
	HasLowVal, HasHighVal             bool
	LowValInclusive, HighValInclusive bool
	NEQVals                           []string

	HasKeyBound     bool // an EQ/LT/LE/GT/GE on KEY was folded in (NE does not count)
	HasValPredicate bool // any predicate at all touched VALUE
	Contradiction   bool
}

// Fold reduces preds per spec §4.5 steps 1-2.
func Fold(preds []predicate.Predicate) Bounds {
	var b Bounds
	haveKeyEQ := false
	var keyEQVal int32

	for _, p := range preds {
		switch p.Attr {
		case predicate.KEY:
			switch p.Op {
			case predicate.EQ:
				if haveKeyEQ && keyEQVal != p.Key {
					b.Contradiction = true
				}
				haveKeyEQ, keyEQVal = true, p.Key
				b.setHighKey(p.Key)
				b.setLowKey(p.Key)
			case predicate.LT:
				b.setHighKey(p.Key - 1)
			case predicate.LE:
				b.setHighKey(p.Key)
			case predicate.GT:
				b.setLowKey(p.Key + 1)
			case predicate.GE:
				b.setLowKey(p.Key)
			case predicate.NE:
				b.NEQKeys = append(b.NEQKeys, p.Key)
			}
		case predicate.VALUE:
			b.HasValPredicate = true
			switch p.Op {
			case predicate.EQ:
				b.setHighVal(p.Val, true)
				b.setLowVal(p.Val, true)
			case predicate.LT:
				b.setHighVal(p.Val, false)
			case predicate.LE:
				b.setHighVal(p.Val, true)
			case predicate.GT:
				b.setLowVal(p.Val, false)
			case predicate.GE:
				b.setLowVal(p.Val, true)
			case predicate.NE:
				b.NEQVals = append(b.NEQVals, p.Val)
			}
		}
	}

	for _, p := range preds {
		if p.Attr == predicate.KEY && p.Op != predicate.NE {
			b.HasKeyBound = true
			break
		}
	}
	return b
}

func (b *Bounds) setLowKey(v int32) {
	if !b.HasLowKey || v > b.LowKey {
		b.LowKey = v
	}
	b.HasLowKey = true
}

func (b *Bounds) setHighKey(v int32) {
	if !b.HasHighKey || v < b.HighKey {
		b.HighKey = v
	}
	b.HasHighKey = true
}

func (b *Bounds) setLowVal(v string, inclusive bool) {
	if !b.HasLowVal || v > b.LowVal || (v == b.LowVal && !inclusive) {
		b.LowVal, b.LowValInclusive = v, inclusive
	}
	b.HasLowVal = true
}

func (b *Bounds) setHighVal(v string, inclusive bool) {
	if !b.HasHighVal || v < b.HighVal || (v == b.HighVal && !inclusive) {
		b.HighVal, b.HighValInclusive = v, inclusive
	}
	b.HasHighVal = true
}

// matchesValue reports whether value satisfies the folded value bound
// and residual not-equal set. Always true when no value predicate was
// present.
func (b Bounds) matchesValue(value string) bool {
	if b.HasLowVal {
		if b.LowValInclusive {
			if value < b.LowVal {
				return false
			}
		} else if value <= b.LowVal {
			return false
		}
	}
	if b.HasHighVal {
		if b.HighValInclusive {
			if value > b.HighVal {
				return false
			}
		} else if value >= b.HighVal {
			return false
		}
	}
	for _, v := range b.NEQVals {
		if value == v {
			return false
		}
	}
	return true
}

func (b Bounds) matchesKeyResidual(key int32) bool {
	for _, v := range b.NEQKeys {
		if key == v {
			return false
		}
	}
	return true
}

// matchesKeyFull reports whether key satisfies both the folded key
// bound and its residual not-equal set; used by the fallback full scan,
// which has no index range to rely on.
func (b Bounds) matchesKeyFull(key int32) bool {
	if b.HasLowKey && key < b.LowKey {
		return false
	}
	if b.HasHighKey && key > b.HighKey {
		return false
	}
	return b.matchesKeyResidual(key)
}

// needsValue reports whether value must be dereferenced from the record
// file to decide projection/filtering.
func needsValue(proj predicate.Projection, b Bounds) bool {
	return proj == predicate.PROJ_VALUE || proj == predicate.PROJ_STAR || b.HasValPredicate
}

func emit(w io.Writer, proj predicate.Projection, key int32, value string) {
	switch proj {
	case predicate.PROJ_KEY:
		fmt.Fprintf(w, "%d\n", key)
	case predicate.PROJ_VALUE:
		fmt.Fprintf(w, "%s\n", value)
	case predicate.PROJ_STAR:
		fmt.Fprintf(w, "%d '%s'\n", key, value)
	}
}

// Select runs a select(proj, preds) statement against tree/rf, writing
// projected output to w, per spec §4.5.
func Select(tree *btree.Tree, rf *recordfile.RecordFile, proj predicate.Projection, preds []predicate.Predicate, w io.Writer) error {
	b := Fold(preds)
	if b.Contradiction {
		if proj == predicate.PROJ_COUNT {
			fmt.Fprintf(w, "%d\n", 0)
		}
		return nil
	}
	if !b.HasKeyBound {
		return fallbackScan(rf, proj, b, w)
	}
	return indexScan(tree, rf, proj, b, w)
}

func indexScan(tree *btree.Tree, rf *recordfile.RecordFile, proj predicate.Projection, b Bounds, w io.Writer) error {
	low := int32(math.MinInt32)
	if b.HasLowKey {
		low = b.LowKey
	}
	cur, err := tree.Locate(low)
	if err == btree.ErrNoSuchRecord {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("selector: locate: %w", err)
	}

	count := 0
	for {
		key, loc, next, rerr := tree.ReadForward(cur)
		if rerr == btree.ErrEndOfTree {
			break
		}
		if rerr != nil {
			return fmt.Errorf("selector: read forward: %w", rerr)
		}
		if b.HasHighKey && key > b.HighKey {
			break
		}
		cur = next

		if !b.matchesKeyResidual(key) {
			continue
		}

		var value string
		if needsValue(proj, b) {
			_, v, rerr2 := rf.Read(loc)
			if rerr2 != nil {
				return fmt.Errorf("selector: dereference locator: %w", rerr2)
			}
			value = v
			if !b.matchesValue(value) {
				continue
			}
		}

		if proj == predicate.PROJ_COUNT {
			count++
			continue
		}
		emit(w, proj, key, value)
	}
	if proj == predicate.PROJ_COUNT {
		fmt.Fprintf(w, "%d\n", count)
	}
	return nil
}

func fallbackScan(rf *recordfile.RecordFile, proj predicate.Projection, b Bounds, w io.Writer) error {
	count := 0
	err := rf.Scan(func(_ recordfile.Locator, key int32, value string) (bool, error) {
		if b.matchesKeyFull(key) && b.matchesValue(value) {
			if proj == predicate.PROJ_COUNT {
				count++
			} else {
				emit(w, proj, key, value)
			}
		}
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("selector: fallback scan: %w", err)
	}
	if proj == predicate.PROJ_COUNT {
		fmt.Fprintf(w, "%d\n", count)
	}
	return nil
}
