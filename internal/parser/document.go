package parser

import (
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

var ErrNotMapping = errors.New("top level of a compose file must be a mapping")

// Document is the raw YAML of a manifest. It keeps node positions so
// diagnostics can point at the offending line.
type Document struct {
	Name string
	Dict map[string]interface{}
	root *yaml.Node
}

// Scalar is one scalar item of a sequence.
type Scalar struct {
	Index  int
	Value  string
	Tag    string
	Line   int
	Quoted bool
}

// ParseDocument parses content as YAML. An empty document is valid and has no keys.
func ParseDocument(name string, content []byte) (*Document, error) {
	var file yaml.Node
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	doc := &Document{Name: name}
	if len(file.Content) == 0 {
		return doc, nil
	}

	root := file.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: line %d: %w", name, root.Line, ErrNotMapping)
	}
	if err := root.Decode(&doc.Dict); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	doc.root = root
	return doc, nil
}

// Empty reports whether the document has no top-level keys.
func (d *Document) Empty() bool {
	return d.root == nil || len(d.root.Content) == 0
}

// TopLevelKeys returns top-level keys in document order.
func (d *Document) TopLevelKeys() []string {
	return d.Keys()
}

// Keys returns the keys of the mapping at path in document order.
func (d *Document) Keys(path ...string) []string {
	n := d.lookup(path...)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}

// Has reports whether path addresses a node.
func (d *Document) Has(path ...string) bool {
	return d.lookup(path...) != nil
}

// Line returns the 1-based line of the node at path, or 0 when absent.
// Mapping entries report the line of their key.
func (d *Document) Line(path ...string) int {
	if len(path) == 0 {
		if d.root == nil {
			return 0
		}
		return d.root.Line
	}

	parent := d.lookup(path[:len(path)-1]...)
	if parent == nil {
		return 0
	}
	last := path[len(path)-1]
	switch parent.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(parent.Content); i += 2 {
			if parent.Content[i].Value == last {
				return parent.Content[i].Line
			}
		}
	case yaml.SequenceNode:
		if idx, err := strconv.Atoi(last); err == nil && idx >= 0 && idx < len(parent.Content) {
			return parent.Content[idx].Line
		}
	}
	return 0
}

// Scalars returns the scalar items of the sequence at path. A scalar in
// place of a sequence is returned as a single item.
func (d *Document) Scalars(path ...string) []Scalar {
	n := d.lookup(path...)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return []Scalar{newScalar(0, n)}
	case yaml.SequenceNode:
		out := make([]Scalar, 0, len(n.Content))
		for i, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				continue
			}
			out = append(out, newScalar(i, item))
		}
		return out
	}
	return nil
}

func newScalar(index int, n *yaml.Node) Scalar {
	return Scalar{
		Index:  index,
		Value:  n.Value,
		Tag:    n.ShortTag(),
		Line:   n.Line,
		Quoted: n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0,
	}
}

func (d *Document) lookup(path ...string) *yaml.Node {
	n := d.root
	for _, key := range path {
		if n == nil {
			return nil
		}
		n = child(n, key)
	}
	return n
}

func child(n *yaml.Node, key string) *yaml.Node {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == key {
				return n.Content[i+1]
			}
		}
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(key)
		if err == nil && idx >= 0 && idx < len(n.Content) {
			return n.Content[idx]
		}
	case yaml.AliasNode:
		if n.Alias != nil {
			return child(n.Alias, key)
		}
	}
	return nil
}
