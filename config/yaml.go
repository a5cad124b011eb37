package config

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FromYAML parses a YAML mapping into a Group. Decoding goes through
// yaml.Node rather than a map so the entry order and line numbers of the
// document survive.
func FromYAML(src []byte) (*Group, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewGroup(), nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("animation script must be a mapping, got %s at line %d", yamlKind(root.Kind), root.Line)
	}
	return groupFromMapping(root)
}

func groupFromMapping(node *yaml.Node) (*Group, error) {
	g := NewGroup()
	g.line = node.Line
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if err := addYAMLEntry(g, key.Value, key.Line, value); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func addYAMLEntry(g *Group, name string, line int, value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		sub, err := groupFromMapping(value)
		if err != nil {
			return err
		}
		g.AddGroup(name, sub, line)
		return nil
	case yaml.ScalarNode:
	default:
		return fmt.Errorf("unsupported %s value for %q at line %d", yamlKind(value.Kind), name, value.Line)
	}

	switch value.Tag {
	case "!!int", "!!float":
		v, err := strconv.ParseFloat(value.Value, 64)
		if err != nil {
			// Octal and hex integers fall through ParseFloat.
			n, ierr := strconv.ParseInt(value.Value, 0, 64)
			if ierr != nil {
				return fmt.Errorf("invalid number %q at line %d", value.Value, value.Line)
			}
			v = float64(n)
		}
		g.AddNumber(name, v, line)
	case "!!bool":
		b, err := strconv.ParseBool(value.Value)
		if err != nil {
			return fmt.Errorf("invalid bool %q at line %d", value.Value, value.Line)
		}
		g.AddBool(name, b, line)
	default:
		g.AddString(name, value.Value, line)
	}
	return nil
}

func yamlKind(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
