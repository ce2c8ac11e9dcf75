package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a code group whose codes key is either a flat list of
// code strings (condition=any) or a list of string lists (condition=both).
func (g *CodeGroup) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Condition Condition `yaml:"condition"`
		Codes     yaml.Node `yaml:"codes"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	g.Condition = raw.Condition
	g.Codes = nil
	g.Groups = nil

	if raw.Codes.Kind == 0 {
		return nil
	}
	if raw.Codes.Kind == yaml.AliasNode && raw.Codes.Alias != nil {
		raw.Codes = *raw.Codes.Alias
	}
	if raw.Codes.Kind != yaml.SequenceNode {
		return fmt.Errorf("code group: codes must be a sequence")
	}
	if len(raw.Codes.Content) > 0 && raw.Codes.Content[0].Kind == yaml.SequenceNode {
		return raw.Codes.Decode(&g.Groups)
	}
	return raw.Codes.Decode(&g.Codes)
}

// Parse decodes and validates a registry from YAML bytes. The document is a
// map of mapping-version id to category table.
func Parse(data []byte) (*Registry, error) {
	var versions map[string]CategoryTable
	if err := yaml.Unmarshal(data, &versions); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	reg := &Registry{Versions: versions}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("validate mapping: %w", err)
	}
	return reg, nil
}

// Load reads and parses the mapping file at path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	return Parse(data)
}
