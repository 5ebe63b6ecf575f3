package rules

import (
	"fmt"
	"sort"
	"strings"
)

// Result is the outcome of validating a rule document. Errors block
// execution; warnings are advisory and never block. The validator
// always returns the complete list of problems found, not just the
// first one.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Validate checks a raw rule document for internal consistency. A
// non-mapping document is rejected outright with a single error; a
// mapping is run through every per-field validator and then the
// cross-field checks, which may add warnings even when the document
// is valid.
func Validate(doc any) Result {
	m, ok := doc.(map[string]any)
	if !ok {
		return Result{Errors: []string{"rule document must be a mapping of field names to values"}}
	}

	var errs []string
	errs = append(errs, ValidateHeaderMappings(m[FieldHeaderMappings])...)
	errs = append(errs, ValidateColumnOrder(m[FieldColumnOrder])...)
	errs = append(errs, ValidateValueReplacements(m[FieldValueReplacements])...)
	errs = append(errs, ValidateFixedColumns(m[FieldFixedColumns])...)
	errs = append(errs, ValidateDeleteConditions(m[FieldDeleteConditions])...)
	errs = append(errs, ValidateOutputEncoding(m[FieldOutputEncoding])...)

	crossErrs, warnings := crossFieldChecks(m)
	errs = append(errs, crossErrs...)

	return Result{Valid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

// ValidateHeaderMappings checks the headerMappings field in isolation.
// A nil value is a valid no-op. Only 1-to-1 (string valued) entries are
// scanned for circularity, and only mirrored pairs (A->B with B->A) are
// detected; longer cycles such as A->B->C->A are not flagged.
func ValidateHeaderMappings(v any) []string {
	if v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("%s must be a mapping of original header to new header name(s)", FieldHeaderMappings)}
	}

	var errs []string
	oneToOne := make(map[string]string)
	for _, key := range sortedKeys(m) {
		if strings.TrimSpace(key) == "" {
			errs = append(errs, fmt.Sprintf("%s contains a blank original header name", FieldHeaderMappings))
		}
		switch val := m[key].(type) {
		case string:
			if strings.TrimSpace(val) == "" {
				errs = append(errs, fmt.Sprintf("%s[%q] must not be blank", FieldHeaderMappings, key))
				continue
			}
			oneToOne[key] = val
		default:
			list, ok := asList(m[key])
			if !ok {
				errs = append(errs, fmt.Sprintf("%s[%q] must be a string or a list of strings", FieldHeaderMappings, key))
				continue
			}
			if len(list) == 0 {
				errs = append(errs, fmt.Sprintf("%s[%q] must not be an empty list", FieldHeaderMappings, key))
				continue
			}
			for i, item := range list {
				s, ok := item.(string)
				if !ok || strings.TrimSpace(s) == "" {
					errs = append(errs, fmt.Sprintf("%s[%q][%d] must be a non-blank string", FieldHeaderMappings, key, i))
				}
			}
		}
	}

	errs = append(errs, findMirroredPairs(oneToOne, func(a, b string) string {
		return fmt.Sprintf("%s contains a circular mapping between '%s' and '%s'", FieldHeaderMappings, a, b)
	})...)
	return errs
}

// ValidateColumnOrder checks the columnOrder field in isolation.
func ValidateColumnOrder(v any) []string {
	if v == nil {
		return nil
	}
	list, ok := asList(v)
	if !ok {
		return []string{fmt.Sprintf("%s must be a list of column names", FieldColumnOrder)}
	}

	var errs []string
	seen := make(map[string]struct{}, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			errs = append(errs, fmt.Sprintf("%s[%d] must be a non-blank string", FieldColumnOrder, i))
			continue
		}
		seen[s] = struct{}{}
	}
	if len(seen) != len(list) && len(errs) == 0 {
		errs = append(errs, fmt.Sprintf("%s contains duplicate entries", FieldColumnOrder))
	}
	return errs
}

// ValidateValueReplacements checks the valueReplacements field in
// isolation, including the per-column mirrored-pair scan.
func ValidateValueReplacements(v any) []string {
	if v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("%s must be a mapping of column name to replacement mapping", FieldValueReplacements)}
	}

	var errs []string
	for _, col := range sortedKeys(m) {
		if strings.TrimSpace(col) == "" {
			errs = append(errs, fmt.Sprintf("%s contains a blank column name", FieldValueReplacements))
		}
		inner, ok := m[col].(map[string]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s[%q] must be a mapping of old value to new value", FieldValueReplacements, col))
			continue
		}
		pairs := make(map[string]string, len(inner))
		for _, old := range sortedKeys(inner) {
			s, ok := inner[old].(string)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s[%q][%q] must be a string", FieldValueReplacements, col, old))
				continue
			}
			pairs[old] = s
		}
		errs = append(errs, findMirroredPairs(pairs, func(a, b string) string {
			return fmt.Sprintf("%s[%q] contains a circular replacement between '%s' and '%s'", FieldValueReplacements, col, a, b)
		})...)
	}
	return errs
}

// ValidateFixedColumns checks the fixedColumns field in isolation.
// Values must be strings or numbers. The duplicate-name scan is
// defensive: decoded Go maps cannot hold duplicate keys, but the check
// runs against a computed key set regardless.
func ValidateFixedColumns(v any) []string {
	if v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("%s must be a mapping of column name to constant value", FieldFixedColumns)}
	}

	var errs []string
	names := sortedKeys(m)
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Sprintf("%s contains a blank column name", FieldFixedColumns))
		}
		if _, ok := formatScalar(m[name]); !ok {
			errs = append(errs, fmt.Sprintf("%s[%q] must be a string or numeric value", FieldFixedColumns, name))
		}
	}

	unique := make(map[string]struct{}, len(names))
	for _, name := range names {
		unique[name] = struct{}{}
	}
	if len(unique) != len(names) {
		errs = append(errs, fmt.Sprintf("%s contains duplicate column names", FieldFixedColumns))
	}
	return errs
}

// deleteConditionProps are the only properties a delete condition may carry.
var deleteConditionProps = map[string]struct{}{"column": {}, "value": {}}

// ValidateDeleteConditions checks the deleteConditions field in
// isolation. An empty string is an explicitly valid condition value;
// an empty value list is not.
func ValidateDeleteConditions(v any) []string {
	if v == nil {
		return nil
	}
	list, ok := asList(v)
	if !ok {
		return []string{fmt.Sprintf("%s must be a list of {column, value} objects", FieldDeleteConditions)}
	}

	var errs []string
	for i, item := range list {
		cond, ok := item.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s[%d] must be an object with column and value properties", FieldDeleteConditions, i))
			continue
		}

		var extra []string
		for _, key := range sortedKeys(cond) {
			if _, ok := deleteConditionProps[key]; !ok {
				extra = append(extra, key)
			}
		}
		if len(extra) > 0 {
			errs = append(errs, fmt.Sprintf("%s[%d] has unsupported properties: %s", FieldDeleteConditions, i, strings.Join(extra, ", ")))
		}

		col, ok := cond["column"].(string)
		if !ok || strings.TrimSpace(col) == "" {
			errs = append(errs, fmt.Sprintf("%s[%d].column must be a non-blank string", FieldDeleteConditions, i))
		}

		val, present := cond["value"]
		if !present || val == nil {
			errs = append(errs, fmt.Sprintf("%s[%d].value is required", FieldDeleteConditions, i))
			continue
		}
		if _, ok := val.(string); ok {
			continue // empty strings are valid match values
		}
		vlist, ok := asList(val)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s[%d].value must be a string or a list of strings", FieldDeleteConditions, i))
			continue
		}
		if len(vlist) == 0 {
			errs = append(errs, fmt.Sprintf("%s[%d].value must not be an empty list", FieldDeleteConditions, i))
			continue
		}
		for j, entry := range vlist {
			if _, ok := entry.(string); !ok {
				errs = append(errs, fmt.Sprintf("%s[%d].value[%d] must be a string", FieldDeleteConditions, i, j))
			}
		}
	}
	return errs
}

// ValidateDeleteConditionsWithHeaders additionally verifies, against
// the actual input headers, that every delete-condition column exists.
// All missing columns are reported in one combined error. The
// context-free Validate cannot perform this check because it does not
// know the input schema.
func ValidateDeleteConditionsWithHeaders(v any, headers []string) []string {
	errs := ValidateDeleteConditions(v)

	list, ok := asList(v)
	if !ok {
		return errs
	}
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	var missing []string
	seen := make(map[string]struct{})
	for _, item := range list {
		cond, ok := item.(map[string]any)
		if !ok {
			continue
		}
		col, ok := cond["column"].(string)
		if !ok || strings.TrimSpace(col) == "" {
			continue
		}
		if _, ok := present[col]; !ok {
			if _, dup := seen[col]; !dup {
				seen[col] = struct{}{}
				missing = append(missing, col)
			}
		}
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("%s references column(s) not present in input headers: %s (headers: %s)",
			FieldDeleteConditions, strings.Join(missing, ", "), strings.Join(headers, ", ")))
	}
	return errs
}

// ValidateOutputEncoding checks the outputEncoding field in isolation.
func ValidateOutputEncoding(v any) []string {
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return []string{fmt.Sprintf("%s must be a string", FieldOutputEncoding)}
	}
	if strings.TrimSpace(s) == "" {
		return []string{fmt.Sprintf("%s must not be blank", FieldOutputEncoding)}
	}
	if _, ok := NormalizeEncoding(s); !ok {
		return []string{fmt.Sprintf("%s %q is not supported (supported: %s)",
			FieldOutputEncoding, s, strings.Join(SupportedEncodings, ", "))}
	}
	return nil
}

// crossFieldChecks runs the consistency checks that span multiple
// fields. Malformed fields are skipped here; the per-field validators
// already reported them.
func crossFieldChecks(m map[string]any) (errs, warnings []string) {
	mappings, _ := m[FieldHeaderMappings].(map[string]any)
	order, orderOK := listOfStrings(m[FieldColumnOrder])
	replacements, _ := m[FieldValueReplacements].(map[string]any)
	fixed, _ := m[FieldFixedColumns].(map[string]any)

	// columnOrder entries that name a pre-mapping header disappear once
	// the mapping runs, unless the mapped names include the original.
	if len(mappings) > 0 && orderOK {
		for _, entry := range order {
			outs, ok := mappingOutputs(mappings, entry)
			if !ok {
				continue
			}
			if !containsString(outs, entry) {
				warnings = append(warnings, fmt.Sprintf("%s references '%s', which %s renames; the original name will not exist after mapping",
					FieldColumnOrder, entry, FieldHeaderMappings))
			}
		}
	}

	if len(fixed) > 0 {
		mapped := make(map[string]struct{})
		for key := range mappings {
			mapped[key] = struct{}{}
			if outs, ok := mappingOutputs(mappings, key); ok {
				for _, out := range outs {
					mapped[out] = struct{}{}
				}
			}
		}

		for _, name := range sortedKeys(fixed) {
			if _, ok := mapped[name]; ok {
				errs = append(errs, fmt.Sprintf("%s name '%s' collides with a %s original or mapped header name",
					FieldFixedColumns, name, FieldHeaderMappings))
			}
			if orderOK && !containsString(order, name) {
				warnings = append(warnings, fmt.Sprintf("%s name '%s' is not listed in %s and will be appended at the end",
					FieldFixedColumns, name, FieldColumnOrder))
			}
			if _, ok := replacements[name]; ok {
				warnings = append(warnings, fmt.Sprintf("%s name '%s' also has %s entries; replacements on a constant column have no effect",
					FieldFixedColumns, name, FieldValueReplacements))
			}
		}
	}

	hasContent := false
	for _, field := range contentFields {
		if v, ok := m[field]; ok && v != nil {
			hasContent = true
			break
		}
	}
	if !hasContent {
		warnings = append(warnings, "rule document defines no transformations; output will match the input")
	}

	return errs, warnings
}

// findMirroredPairs reports each A->B / B->A mirror in pairs exactly
// once, in deterministic order. This is a pairwise scan, not general
// cycle detection: cycles of length three or more are not found.
func findMirroredPairs(pairs map[string]string, format func(a, b string) string) []string {
	reported := make(map[string]struct{})
	var errs []string
	for _, a := range sortedStringKeys(pairs) {
		b := pairs[a]
		back, ok := pairs[b]
		if !ok || back != a {
			continue
		}
		lo, hi := a, b
		if lo > hi {
			lo, hi = hi, lo
		}
		key := lo + "\x00" + hi
		if _, dup := reported[key]; dup {
			continue
		}
		reported[key] = struct{}{}
		errs = append(errs, format(lo, hi))
	}
	return errs
}

// mappingOutputs returns the mapped output names for an original header,
// or false when the header has no well-formed mapping entry.
func mappingOutputs(mappings map[string]any, key string) ([]string, bool) {
	val, ok := mappings[key]
	if !ok {
		return nil, false
	}
	if s, ok := val.(string); ok {
		return []string{s}, true
	}
	if outs, err := asStringList(val); err == nil && len(outs) > 0 {
		return outs, true
	}
	return nil, false
}

// listOfStrings returns v as a string slice when every element is a
// string, for cross-field checks that need a typed view.
func listOfStrings(v any) ([]string, bool) {
	if v == nil {
		return nil, false
	}
	out, err := asStringList(v)
	if err != nil {
		return nil, false
	}
	return out, true
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
