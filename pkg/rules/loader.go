package rules

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load reads a rule file and returns the raw decoded document for
// validation. The parser is chosen by file extension: .yaml/.yml use
// YAML, anything else is treated as JSON.
func Load(path string) (map[string]any, error) {
	b, err := file.Provider(path).ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		parser = json.Parser()
	}

	doc, err := parser.Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rule file %s: %w", path, err)
	}
	return doc, nil
}

// LoadRuleSet reads, validates, and normalizes a rule file in one call.
// Validation warnings are returned alongside the rule set; hard errors
// abort with an error that lists every problem found.
func LoadRuleSet(path string) (*RuleSet, []string, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, nil, err
	}

	res := Validate(doc)
	if !res.Valid {
		return nil, res.Warnings, fmt.Errorf("rule file %s is invalid:\n  - %s",
			path, strings.Join(res.Errors, "\n  - "))
	}

	rs, err := FromDocument(doc)
	if err != nil {
		return nil, res.Warnings, fmt.Errorf("failed to normalize rule file %s: %w", path, err)
	}
	return rs, res.Warnings, nil
}
