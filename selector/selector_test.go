package selector

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"relidx/btree"
	"relidx/pagefile"
	"relidx/predicate"
	"relidx/recordfile"
)

func buildFixture(t *testing.T, n int) (*btree.Tree, *recordfile.RecordFile) {
	t.Helper()
	dir := t.TempDir()
	tree, err := btree.Open(filepath.Join(dir, "t.idx"), pagefile.ReadWrite)
	if err != nil {
		t.Fatalf("btree.Open: %v", err)
	}
	rf, err := recordfile.Open(filepath.Join(dir, "t.tbl"), pagefile.ReadWrite)
	if err != nil {
		t.Fatalf("recordfile.Open: %v", err)
	}
	t.Cleanup(func() { tree.Close(); rf.Close() })

	for k := int32(1); k <= int32(n); k++ {
		loc, err := rf.Append(k, fmt.Sprintf("v%d", k))
		if err != nil {
			t.Fatalf("Append(%d): %v", k, err)
		}
		if err := tree.Insert(k, loc); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}
	return tree, rf
}

func pred(attr predicate.Attr, op predicate.Op, key int32, val string) predicate.Predicate {
	return predicate.Predicate{Attr: attr, Op: op, Key: key, Val: val}
}

// TestDuplicateRangePredicate mirrors spec §8's "Duplicate range
// predicate" scenario.
func TestDuplicateRangePredicate(t *testing.T) {
	tree, rf := buildFixture(t, 100)
	var out bytes.Buffer
	preds := []predicate.Predicate{
		pred(predicate.KEY, predicate.GE, 10, ""),
		pred(predicate.KEY, predicate.LE, 12, ""),
	}
	if err := Select(tree, rf, predicate.PROJ_STAR, preds, &out); err != nil {
		t.Fatalf("Select: %v", err)
	}
	want := "10 'v10'\n11 'v11'\n12 'v12'\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

// TestContradictoryEQ mirrors spec §8's "Contradictory EQ" scenario.
func TestContradictoryEQ(t *testing.T) {
	tree, rf := buildFixture(t, 100)
	var out bytes.Buffer
	preds := []predicate.Predicate{
		pred(predicate.KEY, predicate.EQ, 5, ""),
		pred(predicate.KEY, predicate.EQ, 7, ""),
	}
	if err := Select(tree, rf, predicate.PROJ_COUNT, preds, &out); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if out.String() != "0\n" {
		t.Fatalf("output = %q, want \"0\\n\"", out.String())
	}
}

// TestNEOnlyFallback mirrors spec §8's "NE-only fallback" scenario.
func TestNEOnlyFallback(t *testing.T) {
	tree, rf := buildFixture(t, 10)
	var out bytes.Buffer
	preds := []predicate.Predicate{pred(predicate.KEY, predicate.NE, 5, "")}
	b := Fold(preds)
	if b.HasKeyBound {
		t.Fatalf("NE-only predicate should not set HasKeyBound")
	}
	if err := Select(tree, rf, predicate.PROJ_COUNT, preds, &out); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if out.String() != "9\n" {
		t.Fatalf("output = %q, want \"9\\n\"", out.String())
	}
}

// TestBoundCollapse mirrors spec §8's "Bound collapse" scenario.
func TestBoundCollapse(t *testing.T) {
	tree, rf := buildFixture(t, 10)
	var out bytes.Buffer
	preds := []predicate.Predicate{
		pred(predicate.KEY, predicate.GT, 3, ""),
		pred(predicate.KEY, predicate.LT, 6, ""),
	}
	if err := Select(tree, rf, predicate.PROJ_KEY, preds, &out); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if out.String() != "4\n5\n" {
		t.Fatalf("output = %q, want \"4\\n5\\n\"", out.String())
	}
}

func TestValuePredicateDereferencesAndFilters(t *testing.T) {
	tree, rf := buildFixture(t, 20)
	var out bytes.Buffer
	preds := []predicate.Predicate{
		pred(predicate.KEY, predicate.GE, 1, ""),
		pred(predicate.KEY, predicate.LE, 20, ""),
		pred(predicate.VALUE, predicate.EQ, 0, "v7"),
	}
	if err := Select(tree, rf, predicate.PROJ_STAR, preds, &out); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if out.String() != "7 'v7'\n" {
		t.Fatalf("output = %q, want \"7 'v7'\\n\"", out.String())
	}
}
