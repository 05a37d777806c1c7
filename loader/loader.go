// Package loader implements the line-by-line loadfile ingest described in
// spec §6 (C6): each non-empty line becomes a record-file append and,
// when an index is supplied, an index insert.
package loader

import (
	"bufio"
	"fmt"
	"io"

	"relidx/btree"
	"relidx/recordfile"
)

// Load reads loadfile line by line, appending each parsed (key, value)
// to rf and, when tree is non-nil, inserting (key, locator) into it. A
// malformed line is reported to diag and skipped; an I/O error from
// Append or Insert is fatal and aborts the load immediately. It returns
// the number of records successfully loaded.
func Load(loadfile io.Reader, rf *recordfile.RecordFile, tree *btree.Tree, diag io.Writer) (int, error) {
	scanner := bufio.NewScanner(loadfile)
	loaded := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}

		key, value, err := ParseLine(line)
		if err != nil {
			fmt.Fprintf(diag, "load: line %d: %v\n", lineNo, err)
			continue
		}

		loc, err := rf.Append(key, value)
		if err != nil {
			return loaded, fmt.Errorf("loader: append at line %d: %w", lineNo, err)
		}
		if tree != nil {
			if err := tree.Insert(key, loc); err != nil {
				return loaded, fmt.Errorf("loader: index insert at line %d: %w", lineNo, err)
			}
		}
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return loaded, fmt.Errorf("loader: scan: %w", err)
	}
	return loaded, nil
}
