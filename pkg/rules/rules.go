// Package rules defines the declarative rule document that drives CSV
// reshaping, its static validator, and the loader that reads rule files.
//
// A rule document is validated in its raw decoded form (maps, lists,
// scalars) so that type problems surface as accumulated validation
// errors instead of decode failures. Once a document passes validation
// it is normalized into a RuleSet for the transformation engine.
package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field names of the rule document.
const (
	FieldHeaderMappings    = "headerMappings"
	FieldColumnOrder       = "columnOrder"
	FieldValueReplacements = "valueReplacements"
	FieldFixedColumns      = "fixedColumns"
	FieldDeleteConditions  = "deleteConditions"
	FieldOutputEncoding    = "outputEncoding"
)

// contentFields are the fields that describe an actual transformation.
// A document with none of them set is a no-op.
var contentFields = []string{
	FieldHeaderMappings,
	FieldColumnOrder,
	FieldValueReplacements,
	FieldFixedColumns,
	FieldDeleteConditions,
}

// FixedColumn is a constant-valued column appended to every row.
type FixedColumn struct {
	Name  string
	Value string
}

// DeleteCondition removes rows whose cell in Column matches any of
// Values. Conditions combine with AND semantics: a row is deleted only
// when every condition matches.
type DeleteCondition struct {
	Column string
	Values []string
}

// RuleSet is the normalized, engine-facing form of a validated rule
// document. One-to-one header mappings become single-element slices and
// scalar delete-condition values become single-element value lists.
type RuleSet struct {
	HeaderMappings    map[string][]string
	ColumnOrder       []string
	ValueReplacements map[string]map[string]string
	FixedColumns      []FixedColumn
	DeleteConditions  []DeleteCondition
	OutputEncoding    string
}

// FromDocument normalizes a validated raw document into a RuleSet.
// It returns an error on shapes that validation would have rejected;
// callers are expected to run Validate first.
func FromDocument(doc map[string]any) (*RuleSet, error) {
	rs := &RuleSet{}

	if v, ok := doc[FieldHeaderMappings]; ok && v != nil {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s is not a mapping", FieldHeaderMappings)
		}
		rs.HeaderMappings = make(map[string][]string, len(m))
		for key, val := range m {
			outs, err := asStringOrList(val)
			if err != nil {
				return nil, fmt.Errorf("%s[%q]: %w", FieldHeaderMappings, key, err)
			}
			rs.HeaderMappings[key] = outs
		}
	}

	if v, ok := doc[FieldColumnOrder]; ok && v != nil {
		order, err := asStringList(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", FieldColumnOrder, err)
		}
		rs.ColumnOrder = order
	}

	if v, ok := doc[FieldValueReplacements]; ok && v != nil {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s is not a mapping", FieldValueReplacements)
		}
		rs.ValueReplacements = make(map[string]map[string]string, len(m))
		for col, inner := range m {
			im, ok := inner.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%q] is not a mapping", FieldValueReplacements, col)
			}
			repl := make(map[string]string, len(im))
			for old, nw := range im {
				s, ok := nw.(string)
				if !ok {
					return nil, fmt.Errorf("%s[%q][%q] is not a string", FieldValueReplacements, col, old)
				}
				repl[old] = s
			}
			rs.ValueReplacements[col] = repl
		}
	}

	if v, ok := doc[FieldFixedColumns]; ok && v != nil {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s is not a mapping", FieldFixedColumns)
		}
		// Go maps do not preserve document entry order, so fixed columns
		// are appended in sorted-name order for deterministic output.
		names := sortedKeys(m)
		rs.FixedColumns = make([]FixedColumn, 0, len(names))
		for _, name := range names {
			val, ok := formatScalar(m[name])
			if !ok {
				return nil, fmt.Errorf("%s[%q] is not a string or number", FieldFixedColumns, name)
			}
			rs.FixedColumns = append(rs.FixedColumns, FixedColumn{Name: name, Value: val})
		}
	}

	if v, ok := doc[FieldDeleteConditions]; ok && v != nil {
		list, ok := asList(v)
		if !ok {
			return nil, fmt.Errorf("%s is not a list", FieldDeleteConditions)
		}
		rs.DeleteConditions = make([]DeleteCondition, 0, len(list))
		for i, item := range list {
			cond, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d] is not an object", FieldDeleteConditions, i)
			}
			col, _ := cond["column"].(string)
			values, err := asStringOrList(cond["value"])
			if err != nil {
				return nil, fmt.Errorf("%s[%d].value: %w", FieldDeleteConditions, i, err)
			}
			rs.DeleteConditions = append(rs.DeleteConditions, DeleteCondition{Column: col, Values: values})
		}
	}

	if v, ok := doc[FieldOutputEncoding]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s is not a string", FieldOutputEncoding)
		}
		rs.OutputEncoding = s
	}

	return rs, nil
}

// SupportedEncodings lists the output charsets the writer can produce.
var SupportedEncodings = []string{"utf-8", "shift_jis", "euc-jp", "iso-8859-1"}

// NormalizeEncoding canonicalizes an encoding name (case-insensitive,
// hyphen/underscore-insensitive) against the supported set.
func NormalizeEncoding(name string) (string, bool) {
	canon := strings.ToLower(strings.TrimSpace(name))
	canon = strings.ReplaceAll(canon, "_", "-")
	for _, enc := range SupportedEncodings {
		if strings.ReplaceAll(enc, "_", "-") == canon {
			return enc, true
		}
	}
	return "", false
}

// formatScalar renders a string or numeric scalar as its cell value.
// Numbers use Go's shortest round-trip decimal form ('g' formatting for
// floats), so JSON 7 becomes "7" and 2.5 becomes "2.5".
func formatScalar(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case int:
		return strconv.Itoa(n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), true
	default:
		return "", false
	}
}

// asList widens []any and []string document values into []any.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// asStringList converts a document list into []string, failing on
// non-string elements.
func asStringList(v any) ([]string, error) {
	list, ok := asList(v)
	if !ok {
		return nil, fmt.Errorf("not a list")
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("element %d is not a string", i)
		}
		out = append(out, s)
	}
	return out, nil
}

// asStringOrList normalizes a string-or-list-of-strings document value
// into a slice, mapping a bare string to a single-element slice.
func asStringOrList(v any) ([]string, error) {
	if s, ok := v.(string); ok {
		return []string{s}, nil
	}
	if out, err := asStringList(v); err == nil {
		return out, nil
	}
	return nil, fmt.Errorf("not a string or list of strings")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
