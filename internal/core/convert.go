package core

// convert.go provides forgiving conversions for roster cells.
//
// Rosters are typed by hand or exported from spreadsheets, so cells carry
// the usual artifacts:
//   - Excel formula wrappers (="0042")
//   - stray quotes and non-breaking spaces
//   - ids written as "42.0" by spreadsheet exports
//   - booleans as yes/no, sim/não, x, 1/0

import (
	"fmt"
	"strconv"
	"strings"
)

// HeaderIndex maps column names (lowercase) to their position in a row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from the configured column names.
// This should be called once per file, then reused for all rows.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = i
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace, including non-breaking spaces
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// ParseID converts a cell to a positive member id.
// Accepts spreadsheet float renderings with a zero fraction ("42.0").
func ParseID(s string) (int, error) {
	s = CleanCell(s)
	if s == "" {
		return 0, fmt.Errorf("id is empty")
	}

	if whole, frac, ok := strings.Cut(s, "."); ok && strings.Trim(frac, "0") == "" {
		s = whole
	}

	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("id %q is not a number", s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("id %d must be positive", id)
	}
	return id, nil
}

// ParseBool converts a cell to a boolean.
// Empty cells are false. Unrecognized values are an error.
func ParseBool(s string) (bool, error) {
	s = strings.ToLower(CleanCell(s))

	switch s {
	case "", "false", "f", "no", "n", "0", "não", "nao":
		return false, nil
	case "true", "t", "yes", "y", "1", "x", "sim", "s":
		return true, nil
	default:
		return false, fmt.Errorf("%q is not a boolean", s)
	}
}
