package loader

import (
	"strconv"
	"strings"

	"relidx/btree"
)

// ParseLine parses one loadfile line per spec §6: optional leading
// whitespace, an int key, a comma, then either a quoted string (single or
// double quote) or a bare string running to end of line. A missing comma
// is reported as ErrInvalidFileFormat.
func ParseLine(line string) (int32, string, error) {
	s := strings.TrimLeft(line, " \t")
	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		return 0, "", btree.ErrInvalidFileFormat
	}
	keyPart := strings.TrimSpace(s[:comma])
	key, err := strconv.ParseInt(keyPart, 10, 32)
	if err != nil {
		return 0, "", btree.ErrInvalidFileFormat
	}

	rest := strings.TrimLeft(s[comma+1:], " \t")
	if len(rest) == 0 {
		return int32(key), "", nil
	}
	if q := rest[0]; q == '\'' || q == '"' {
		end := strings.IndexByte(rest[1:], q)
		if end < 0 {
			return 0, "", btree.ErrInvalidFileFormat
		}
		return int32(key), rest[1 : 1+end], nil
	}
	return int32(key), rest, nil
}
