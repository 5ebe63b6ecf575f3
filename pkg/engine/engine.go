// Package engine applies validated reshaping rules to in-memory tables.
//
// Transform runs the structural steps in a fixed order: header mapping,
// fixed-column addition, column reordering, then value replacement.
// Row deletion operates on pre-mapping column names and is therefore a
// separate call the caller makes before Transform. Every step returns a
// new table; the input is never mutated.
package engine

import (
	"fmt"
	"strings"

	"github.com/reshape-labs/reshape/pkg/rules"
	"github.com/reshape-labs/reshape/pkg/table"
)

// Step identifies the transform step that produced a StepError.
type Step string

const (
	StepMapHeaders     Step = "map_headers"
	StepFixedColumns   Step = "fixed_columns"
	StepReorderColumns Step = "reorder_columns"
	StepDeleteRows     Step = "delete_rows"
)

// StepError reports a structural failure in a single transform step.
// Columns carries every offending column found during that step's scan,
// so one run surfaces all problems, and Headers carries the header set
// that was current when the step ran.
type StepError struct {
	Step    Step
	Columns []string
	Headers []string
}

func (e *StepError) Error() string {
	cols := strings.Join(e.Columns, ", ")
	headers := strings.Join(e.Headers, ", ")
	switch e.Step {
	case StepFixedColumns:
		return fmt.Sprintf("fixed column(s) already exist: %s (current headers: %s)", cols, headers)
	case StepReorderColumns:
		return fmt.Sprintf("columnOrder references missing column(s): %s (current headers: %s)", cols, headers)
	case StepDeleteRows:
		return fmt.Sprintf("delete condition column(s) not found: %s (headers: %s)", cols, headers)
	default:
		return fmt.Sprintf("column(s) not found: %s (headers: %s)", cols, headers)
	}
}

// Transform applies the rule set's structural and value transformations
// in their fixed order and returns a new table. A nil or empty rule set
// yields a structurally identical copy of the input.
func Transform(t table.Table, rs *rules.RuleSet) (table.Table, error) {
	if rs == nil {
		return t.Clone(), nil
	}

	out := MapHeaders(t, rs.HeaderMappings)

	out, err := AddFixedColumns(out, rs.FixedColumns)
	if err != nil {
		return table.Table{}, err
	}

	if len(rs.ColumnOrder) > 0 {
		out, err = ReorderColumns(out, rs.ColumnOrder)
		if err != nil {
			return table.Table{}, err
		}
	}

	return ReplaceValues(out, rs.ValueReplacements), nil
}

// MapHeaders renames headers according to the mapping. A 1-to-many
// entry expands into multiple headers, each receiving a full copy of
// the original column's value. Unmapped headers pass through unchanged
// at their original position.
func MapHeaders(t table.Table, mappings map[string][]string) table.Table {
	if len(mappings) == 0 {
		return t.Clone()
	}

	headers := make([]string, 0, len(t.Headers))
	expansion := make([]int, len(t.Headers)) // output width per input column
	for i, h := range t.Headers {
		if outs, ok := mappings[h]; ok && len(outs) > 0 {
			headers = append(headers, outs...)
			expansion[i] = len(outs)
		} else {
			headers = append(headers, h)
			expansion[i] = 1
		}
	}

	rows := make([][]string, len(t.Rows))
	for ri, row := range t.Rows {
		out := make([]string, 0, len(headers))
		for i := range t.Headers {
			cell := table.Cell(row, i)
			for n := 0; n < expansion[i]; n++ {
				out = append(out, cell)
			}
		}
		rows[ri] = out
	}
	return table.New(headers, rows)
}

// AddFixedColumns appends each fixed column's name to the header list
// and its constant value to every row. It fails with a StepError naming
// every fixed name that already exists among the current headers.
func AddFixedColumns(t table.Table, fixed []rules.FixedColumn) (table.Table, error) {
	if len(fixed) == 0 {
		return t.Clone(), nil
	}

	idx := t.Index()
	var collisions []string
	for _, fc := range fixed {
		if _, ok := idx[fc.Name]; ok {
			collisions = append(collisions, fc.Name)
		}
	}
	if len(collisions) > 0 {
		return table.Table{}, &StepError{Step: StepFixedColumns, Columns: collisions, Headers: t.Headers}
	}

	width := len(t.Headers)
	headers := make([]string, 0, width+len(fixed))
	headers = append(headers, t.Headers...)
	for _, fc := range fixed {
		headers = append(headers, fc.Name)
	}

	rows := make([][]string, len(t.Rows))
	for ri, row := range t.Rows {
		out := make([]string, 0, len(headers))
		for i := 0; i < width; i++ {
			out = append(out, table.Cell(row, i))
		}
		for _, fc := range fixed {
			out = append(out, fc.Value)
		}
		rows[ri] = out
	}
	return table.New(headers, rows), nil
}

// ReorderColumns builds the output header list as exactly the given
// order, projecting each listed column's values and dropping any column
// not listed. It fails with a StepError naming every requested column
// absent from the current headers.
func ReorderColumns(t table.Table, order []string) (table.Table, error) {
	idx := t.Index()
	var missing []string
	for _, col := range order {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return table.Table{}, &StepError{Step: StepReorderColumns, Columns: missing, Headers: t.Headers}
	}

	headers := append([]string(nil), order...)
	rows := make([][]string, len(t.Rows))
	for ri, row := range t.Rows {
		out := make([]string, len(order))
		for i, col := range order {
			out[i] = table.Cell(row, idx[col])
		}
		rows[ri] = out
	}
	return table.New(headers, rows), nil
}

// ReplaceValues replaces cell values on exact string match against each
// named column's replacement map. Columns named in the map that do not
// exist in the headers are silently ignored; they may refer to
// pre-mapping names intentionally or by user oversight.
func ReplaceValues(t table.Table, replacements map[string]map[string]string) table.Table {
	out := t.Clone()
	if len(replacements) == 0 {
		return out
	}

	idx := out.Index()
	for col, pairs := range replacements {
		i, ok := idx[col]
		if !ok {
			continue
		}
		for _, row := range out.Rows {
			if i >= len(row) {
				continue
			}
			if repl, ok := pairs[row[i]]; ok {
				row[i] = repl
			}
		}
	}
	return out
}

// DeleteRows removes every row that matches all of the given conditions
// (AND semantics). A condition matches when the cell in its column is a
// member of the condition's value set. Missing cells compare as empty
// strings. It fails fast with a StepError naming every condition column
// absent from the table's headers.
func DeleteRows(t table.Table, conds []rules.DeleteCondition) (table.Table, error) {
	if len(conds) == 0 {
		return t.Clone(), nil
	}

	idx := t.Index()
	var missing []string
	seen := make(map[string]struct{})
	for _, cond := range conds {
		if _, ok := idx[cond.Column]; !ok {
			if _, dup := seen[cond.Column]; !dup {
				seen[cond.Column] = struct{}{}
				missing = append(missing, cond.Column)
			}
		}
	}
	if len(missing) > 0 {
		return table.Table{}, &StepError{Step: StepDeleteRows, Columns: missing, Headers: t.Headers}
	}

	headers := append([]string(nil), t.Headers...)
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if !matchesAll(row, conds, idx) {
			rows = append(rows, append([]string(nil), row...))
		}
	}
	return table.New(headers, rows), nil
}

func matchesAll(row []string, conds []rules.DeleteCondition, idx map[string]int) bool {
	for _, cond := range conds {
		cell := table.Cell(row, idx[cond.Column])
		matched := false
		for _, v := range cond.Values {
			if cell == v {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
