package formats

import (
	"fmt"
	"os"

	"github.com/jonathan/research-analyst/internal/types"
	"gopkg.in/yaml.v3"
)

// rulesKey is the top-level key holding the rule table in a rules file.
const rulesKey = "format_detection"

// LoadRules reads a rule table from a YAML or JSON file.
func LoadRules(path string) ([]types.FormatRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes a rule table. The document is either a mapping with a
// format_detection key or the rule mapping itself. Rules are returned in the
// order their keys appear in the document.
func ParseRules(data []byte) ([]types.FormatRule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid rules document: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("rules document is empty")
	}

	table := doc.Content[0]
	if table.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("rules document must be a mapping")
	}
	if nested := mappingValue(table, rulesKey); nested != nil {
		table = nested
		if table.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%s must be a mapping", rulesKey)
		}
	}

	rules := make([]types.FormatRule, 0, len(table.Content)/2)
	for i := 0; i+1 < len(table.Content); i += 2 {
		name := table.Content[i].Value
		var rule types.FormatRule
		if err := table.Content[i+1].Decode(&rule); err != nil {
			return nil, fmt.Errorf("invalid rule %q: %w", name, err)
		}
		rule.Name = name
		rules = append(rules, rule)
	}

	if len(rules) == 0 {
		return nil, fmt.Errorf("rules document defines no rules")
	}
	return rules, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
