// Package yml walks yaml.v3 nodes. The guidebook loader uses it to decode
// documents whose shape depends on which key is present.
package yml

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Node yaml.Node

// Root skips the document node, if any.
func (n *Node) Root() *Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return (*Node)(n.Content[0])
	}
	return n
}

// Lookup returns the value of a mapping key, matched case-insensitively.
func (n *Node) Lookup(name string) *Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if strings.EqualFold(n.Content[i].Value, name) {
			return (*Node)(n.Content[i+1])
		}
	}
	return nil
}

// Has reports whether a mapping contains key.
func (n *Node) Has(name string) bool {
	return n.Lookup(name) != nil
}

func (n *Node) Items(callback func(index int, node *Node) error) error {
	if n.Kind != yaml.SequenceNode {
		return n.errorf("expected a list")
	}
	for i := 0; i < len(n.Content); i++ {
		if err := callback(i, (*Node)(n.Content[i])); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) Pairs(callback func(key string, node *Node) error) error {
	if n.Kind != yaml.MappingNode {
		return n.errorf("expected a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := callback(n.Content[i].Value, (*Node)(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

// String returns a scalar value.
func (n *Node) String() (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", n.errorf("expected a scalar")
	}
	return n.Value, nil
}

// Bool returns a boolean scalar.
func (n *Node) Bool() (bool, error) {
	value, ok := n.Interface().(bool)
	if !ok {
		return false, n.errorf("expected a boolean")
	}
	return value, nil
}

// Strings returns a list of scalars; a single scalar yields one element.
func (n *Node) Strings() ([]string, error) {
	if n.Kind == yaml.ScalarNode {
		return []string{n.Value}, nil
	}
	var ret []string
	err := n.Items(func(_ int, item *Node) error {
		value, err := item.String()
		ret = append(ret, value)
		return err
	})
	return ret, err
}

// Interface converts the node into plain Go values.
func (n *Node) Interface() interface{} {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!bool":
			return strings.EqualFold(n.Value, "true")
		case "!!null":
			return nil
		case "!!float":
			f, _ := strconv.ParseFloat(n.Value, 64)
			return f
		case "!!int":
			i, _ := strconv.Atoi(n.Value)
			return i
		default:
			return n.Value
		}
	case yaml.MappingNode:
		aMap := make(map[string]interface{}, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			aMap[n.Content[i].Value] = (*Node)(n.Content[i+1]).Interface()
		}
		return aMap
	case yaml.SequenceNode:
		aSlice := make([]interface{}, 0, len(n.Content))
		for i := 0; i < len(n.Content); i++ {
			aSlice = append(aSlice, (*Node)(n.Content[i]).Interface())
		}
		return aSlice
	case yaml.DocumentNode:
		return n.Root().Interface()
	}
	return nil
}

// Decode unmarshals the node into v.
func (n *Node) Decode(v interface{}) error {
	return (*yaml.Node)(n).Decode(v)
}

func (n *Node) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("line %d: %s", n.Line, fmt.Sprintf(format, args...))
}
