package filter

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

var allowedFields = map[string]bool{
	"title":    true,
	"location": true,
	"features": true,
	"url":      true,
}

// LoadRules reads a YAML rule file. A missing file yields an empty
// rule set so a deployment without filters runs everything through.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Debug("No filter rules file found, accepting all listings", "path", path)
		return &Rules{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	for i, rule := range rules.Filters {
		if !allowedFields[rule.Field] {
			return nil, fmt.Errorf("rule %d references unknown field '%s'", i, rule.Field)
		}
		if len(rule.Includes) == 0 && len(rule.Excludes) == 0 {
			return nil, fmt.Errorf("rule %d for field '%s' has no includes or excludes", i, rule.Field)
		}
	}

	slog.Debug("Filter rules loaded", "path", path, "rules", len(rules.Filters))
	return &rules, nil
}
