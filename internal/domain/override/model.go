package override

import (
	"context"
	"fmt"
	"strings"

	sonic "github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"
)

const dateLayoutLen = len("2006-01-02")

// Entry is one curated override. A bare string in the file is a TV label.
type Entry struct {
	TV         string `json:"tv,omitempty" yaml:"tv,omitempty"`
	Highlights string `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

func (e Entry) IsEmpty() bool {
	return strings.TrimSpace(e.TV) == "" && strings.TrimSpace(e.Highlights) == ""
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var label string
	if err := sonic.Unmarshal(data, &label); err == nil {
		*e = Entry{TV: strings.TrimSpace(label)}
		return nil
	}

	var obj struct {
		TV         string `json:"tv"`
		Highlights any    `json:"highlights"`
	}
	if err := sonic.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("override entry must be a string or an object: %w", err)
	}
	*e = Entry{TV: strings.TrimSpace(obj.TV), Highlights: firstLink(obj.Highlights)}
	return nil
}

func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*e = Entry{TV: strings.TrimSpace(node.Value)}
		return nil
	}

	var obj struct {
		TV         string `yaml:"tv"`
		Highlights any    `yaml:"highlights"`
	}
	if err := node.Decode(&obj); err != nil {
		return fmt.Errorf("override entry must be a string or a mapping: %w", err)
	}
	*e = Entry{TV: strings.TrimSpace(obj.TV), Highlights: firstLink(obj.Highlights)}
	return nil
}

// firstLink accepts a single link or a list of links.
func firstLink(raw any) string {
	switch typed := raw.(type) {
	case string:
		return strings.TrimSpace(typed)
	case []any:
		for _, item := range typed {
			if value, ok := item.(string); ok && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}

// ExactKey is a parsed by_exact key of the form "YYYY-MM-DD Opponent".
type ExactKey struct {
	Date     string
	Opponent string
}

func ParseExactKey(raw string) (ExactKey, bool) {
	value := strings.TrimSpace(raw)
	if len(value) <= dateLayoutLen+1 || value[dateLayoutLen] != ' ' {
		return ExactKey{}, false
	}
	opponent := strings.TrimSpace(value[dateLayoutLen+1:])
	if opponent == "" {
		return ExactKey{}, false
	}
	return ExactKey{Date: value[:dateLayoutLen], Opponent: opponent}, true
}

// Table is the curated override file.
type Table struct {
	ByDate  map[string]Entry `json:"by_date,omitempty" yaml:"by_date,omitempty"`
	ByExact map[string]Entry `json:"by_exact,omitempty" yaml:"by_exact,omitempty"`
}

func (t Table) IsEmpty() bool {
	return len(t.ByDate) == 0 && len(t.ByExact) == 0
}

func (t Table) Len() int {
	return len(t.ByDate) + len(t.ByExact)
}

// DecodeJSON reads the sectioned layout, falling back to the legacy flat
// object where every key is an exact key.
func DecodeJSON(data []byte) (Table, error) {
	var sections map[string]any
	if err := sonic.Unmarshal(data, &sections); err != nil {
		return Table{}, fmt.Errorf("decode override json: %w", err)
	}
	if !hasSections(sections) {
		var flat map[string]Entry
		if err := sonic.Unmarshal(data, &flat); err != nil {
			return Table{}, fmt.Errorf("decode legacy override json: %w", err)
		}
		return Table{ByExact: flat}, nil
	}

	var table Table
	if err := sonic.Unmarshal(data, &table); err != nil {
		return Table{}, fmt.Errorf("decode override json: %w", err)
	}
	return table, nil
}

func DecodeYAML(data []byte) (Table, error) {
	var sections map[string]any
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return Table{}, fmt.Errorf("decode override yaml: %w", err)
	}
	if len(sections) == 0 {
		return Table{}, nil
	}
	if !hasSections(sections) {
		var flat map[string]Entry
		if err := yaml.Unmarshal(data, &flat); err != nil {
			return Table{}, fmt.Errorf("decode legacy override yaml: %w", err)
		}
		return Table{ByExact: flat}, nil
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return Table{}, fmt.Errorf("decode override yaml: %w", err)
	}
	return table, nil
}

func hasSections(raw map[string]any) bool {
	_, byDate := raw["by_date"]
	_, byExact := raw["by_exact"]
	return byDate || byExact
}

// Repository loads the override table. A missing file yields an empty table.
type Repository interface {
	Load(ctx context.Context) (Table, error)
}
