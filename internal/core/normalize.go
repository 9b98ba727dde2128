package core

import (
	"fmt"
	"sort"
	"strings"
)

// Logical field names understood by Normalize.
const (
	FieldID        = "id"
	FieldName      = "name"
	FieldRA        = "ra"
	FieldCourse    = "course"
	FieldGraduated = "graduated"
)

// Row is one raw roster line: values addressed by configured column name.
type Row struct {
	Line   int // 1-based line number in the source file
	Values []string
	Index  HeaderIndex
}

// Lookup returns the cleaned value of a named column and whether the column
// exists in this row.
func (r Row) Lookup(column string) (string, bool) {
	pos, ok := r.Index[strings.ToLower(column)]
	if !ok || pos >= len(r.Values) {
		return "", false
	}
	return CleanCell(r.Values[pos]), true
}

// Get returns the cleaned value of a named column, or "" if absent.
func (r Row) Get(column string) string {
	v, _ := r.Lookup(column)
	return v
}

// Extractor pulls one logical field out of a raw row.
type Extractor func(Row) (string, error)

// Column returns an extractor that reads a required column.
func Column(name string) Extractor {
	return func(r Row) (string, error) {
		v, ok := r.Lookup(name)
		if !ok {
			return "", fmt.Errorf("missing required column %q", name)
		}
		return v, nil
	}
}

// OptionalColumn returns an extractor that reads a column, yielding "" when
// the row does not have it.
func OptionalColumn(name string) Extractor {
	return func(r Row) (string, error) {
		return r.Get(name), nil
	}
}

// FirstOf returns an extractor that yields the first non-empty column.
func FirstOf(names ...string) Extractor {
	return func(r Row) (string, error) {
		for _, n := range names {
			if v := r.Get(n); v != "" {
				return v, nil
			}
		}
		return "", nil
	}
}

// ColumnMap maps logical field names to extractors.
type ColumnMap map[string]Extractor

// DefaultColumns returns the mapping used when none is configured:
// every logical field reads the column of the same name, and the
// graduated column is optional.
func DefaultColumns() ColumnMap {
	return ColumnMap{
		FieldID:        Column(FieldID),
		FieldName:      Column(FieldName),
		FieldRA:        OptionalColumn(FieldRA),
		FieldCourse:    OptionalColumn(FieldCourse),
		FieldGraduated: OptionalColumn(FieldGraduated),
	}
}

// Validate checks that the mapping can produce a member.
func (m ColumnMap) Validate() error {
	var missing []string
	for _, f := range []string{FieldID, FieldName} {
		if m[f] == nil {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("column map has no extractor for: %s", strings.Join(missing, ", "))
	}
	return nil
}

// fields returns the mapped field names in a fixed order so extraction
// errors are reported deterministically.
func (m ColumnMap) fields() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Candidate is a normalized row that has not yet been bound to an
// organization or classified.
type Candidate struct {
	Line      int
	ID        int
	Name      string
	RA        string
	Course    string
	Graduated bool
}

// Normalize applies columns to rows after dropping the first skip rows.
//
// A row whose extraction fails (missing column, non-numeric id, bad
// boolean) is dropped and reported as a RowError; the rest of the batch
// continues. Rows whose trimmed name is empty are dropped silently, which
// covers blank lines and footer rows. Output order equals input order.
func Normalize(rows []Row, columns ColumnMap, skip int) ([]Candidate, []*RowError) {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(rows) {
		return nil, nil
	}

	names := columns.fields()
	candidates := make([]Candidate, 0, len(rows)-skip)
	var rowErrs []*RowError

	for _, row := range rows[skip:] {
		values := make(map[string]string, len(names))
		var failed *RowError

		for _, field := range names {
			v, err := columns[field](row)
			if err != nil {
				failed = &RowError{Line: row.Line, Field: field, Err: err}
				break
			}
			values[field] = v
		}
		if failed != nil {
			// A row without a name is noise, not a parse failure.
			if name, err := columns[FieldName](row); err != nil || strings.TrimSpace(name) == "" {
				continue
			}
			rowErrs = append(rowErrs, failed)
			continue
		}

		if strings.TrimSpace(values[FieldName]) == "" {
			continue
		}

		id, err := ParseID(values[FieldID])
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Line: row.Line, Field: FieldID, Name: values[FieldName], Err: err})
			continue
		}

		graduated, err := ParseBool(values[FieldGraduated])
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Line: row.Line, Field: FieldGraduated, Name: values[FieldName], Err: err})
			continue
		}

		candidates = append(candidates, Candidate{
			Line:      row.Line,
			ID:        id,
			Name:      strings.TrimSpace(values[FieldName]),
			RA:        values[FieldRA],
			Course:    values[FieldCourse],
			Graduated: graduated,
		})
	}

	return candidates, rowErrs
}
