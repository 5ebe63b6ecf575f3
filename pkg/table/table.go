// Package table defines the in-memory representation of parsed tabular
// data: an ordered header list plus ordered rows of string cells.
package table

// Table is an immutable-by-convention snapshot of tabular data. Rows are
// not required to match the header width; Cell treats missing trailing
// cells as empty strings, and positional projection drops extra cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// New builds a table from the given headers and rows without copying.
func New(headers []string, rows [][]string) Table {
	return Table{Headers: headers, Rows: rows}
}

// Clone returns a deep copy of the table. Transformations operate on
// clones so the caller's original is never mutated.
func (t Table) Clone() Table {
	headers := append([]string(nil), t.Headers...)
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string(nil), row...)
	}
	return Table{Headers: headers, Rows: rows}
}

// Index returns a header-name -> position map built from the current
// snapshot. Headers are unique by construction at parse time; if a
// duplicate slips through, the first occurrence wins.
func (t Table) Index() map[string]int {
	idx := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	return idx
}

// Cell returns the value of row at column i, or the empty string when
// the row is shorter than i+1 cells.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// Equal reports structural equality of headers and rows.
func (t Table) Equal(o Table) bool {
	if len(t.Headers) != len(o.Headers) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i, h := range t.Headers {
		if o.Headers[i] != h {
			return false
		}
	}
	for i, row := range t.Rows {
		if len(o.Rows[i]) != len(row) {
			return false
		}
		for j, cell := range row {
			if o.Rows[i][j] != cell {
				return false
			}
		}
	}
	return true
}
