package service

import (
	_ "embed"
	"fmt"
	"regexp"

	"intent-engine/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var defaultPatternsYAML []byte

// PatternRule is one compiled regular expression tagged with the intent it signals
type PatternRule struct {
	IntentID model.IntentID
	Name     string
	Pattern  *regexp.Regexp
}

// PatternTable is an ordered list of rules evaluated first-match-wins
type PatternTable struct {
	rules []PatternRule
}

type patternFile struct {
	Intents []struct {
		ID       model.IntentID `yaml:"id"`
		Name     string         `yaml:"name"`
		Patterns []string       `yaml:"patterns"`
	} `yaml:"intents"`
}

// ParsePatternTable compiles a YAML rule table, keeping intent and pattern order
func ParsePatternTable(data []byte) (*PatternTable, error) {
	var file patternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse pattern table: %w", err)
	}

	table := &PatternTable{}
	for _, intent := range file.Intents {
		if intent.ID == "" {
			return nil, fmt.Errorf("pattern table entry %q has no id", intent.Name)
		}
		for _, expr := range intent.Patterns {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("intent %s: invalid pattern %q: %w", intent.ID, expr, err)
			}
			table.rules = append(table.rules, PatternRule{
				IntentID: intent.ID,
				Name:     intent.Name,
				Pattern:  re,
			})
		}
	}
	return table, nil
}

// DefaultPatternTable returns the rule table compiled into the binary
func DefaultPatternTable() *PatternTable {
	table, err := ParsePatternTable(defaultPatternsYAML)
	if err != nil {
		panic(err)
	}
	return table
}

// NewPatternTable builds a table from already compiled rules
func NewPatternTable(rules []PatternRule) *PatternTable {
	return &PatternTable{rules: append([]PatternRule(nil), rules...)}
}

// Match returns the first rule whose pattern matches text
func (t *PatternTable) Match(text string) (PatternRule, bool) {
	for _, rule := range t.rules {
		if rule.Pattern.MatchString(text) {
			return rule, true
		}
	}
	return PatternRule{}, false
}

// Rules returns a copy of the ordered rules
func (t *PatternTable) Rules() []PatternRule {
	return append([]PatternRule(nil), t.rules...)
}
