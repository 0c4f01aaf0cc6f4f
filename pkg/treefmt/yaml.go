package treefmt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// The YAML rendering represents every element as a single-key mapping.
// Elements with children map to a sequence of child mappings; data
// elements map to a scalar. Attributes ride on the key: "name key=value".

// YAMLWriter builds a YAML node tree and encodes it on Close.
type YAMLWriter struct {
	out   io.Writer
	root  *yaml.Node
	stack []*yaml.Node
	err   error
}

var _ Encoder = (*YAMLWriter)(nil)

// NewYAMLWriter creates a writer emitting to w.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	root := &yaml.Node{Kind: yaml.SequenceNode}
	return &YAMLWriter{out: w, root: root, stack: []*yaml.Node{root}}
}

func yamlKey(name string, attrs []Attr) string {
	if len(attrs) == 0 {
		return name
	}
	parts := []string{name}
	for _, a := range attrs {
		parts = append(parts, a.Key+"="+a.Value)
	}
	return strings.Join(parts, " ")
}

func (y *YAMLWriter) current() *yaml.Node {
	return y.stack[len(y.stack)-1]
}

func (y *YAMLWriter) OpenElement(name string, attrs ...Attr) {
	children := &yaml.Node{Kind: yaml.SequenceNode}
	entry := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: yamlKey(name, attrs)},
			children,
		},
	}
	parent := y.current()
	parent.Content = append(parent.Content, entry)
	y.stack = append(y.stack, children)
}

func (y *YAMLWriter) WriteData(name, value string) {
	entry := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: name},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
		},
	}
	parent := y.current()
	parent.Content = append(parent.Content, entry)
}

func (y *YAMLWriter) CloseElement() {
	if len(y.stack) <= 1 {
		if y.err == nil {
			y.err = errors.New("treefmt: close without open element")
		}
		return
	}
	y.stack = y.stack[:len(y.stack)-1]
}

func (y *YAMLWriter) Close() error {
	y.stack = y.stack[:1]
	if y.err != nil {
		return fmt.Errorf("failed to write yaml: %w", y.err)
	}
	enc := yaml.NewEncoder(y.out)
	enc.SetIndent(2)
	if err := enc.Encode(y.root); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush yaml: %w", err)
	}
	return nil
}

func parseYAMLKey(key string) Element {
	fields := strings.Fields(key)
	if len(fields) == 0 {
		return Element{}
	}
	elem := Element{Name: fields[0]}
	for _, f := range fields[1:] {
		k, v, _ := strings.Cut(f, "=")
		elem.Attrs = append(elem.Attrs, Attr{Key: k, Value: v})
	}
	return elem
}

// DecodeYAML flattens a YAML document written by YAMLWriter into leaf records.
func DecodeYAML(r io.Reader) ([]Record, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	top := &doc
	if top.Kind == yaml.DocumentNode {
		if len(top.Content) == 0 {
			return nil, nil
		}
		top = top.Content[0]
	}

	var records []Record
	if err := walkYAMLSequence(top, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func walkYAMLSequence(seq *yaml.Node, path []Element, records *[]Record) error {
	if seq.Kind != yaml.SequenceNode {
		return fmt.Errorf("%w: line %d: expected a list of elements", ErrMalformed, seq.Line)
	}
	for _, entry := range seq.Content {
		if entry.Kind != yaml.MappingNode || len(entry.Content) != 2 {
			return fmt.Errorf("%w: line %d: expected a single-key mapping", ErrMalformed, entry.Line)
		}
		elem := parseYAMLKey(entry.Content[0].Value)
		if elem.Name == "" {
			return fmt.Errorf("%w: line %d: empty element name", ErrMalformed, entry.Line)
		}
		here := append(copyPath(path), elem)
		value := entry.Content[1]

		switch value.Kind {
		case yaml.ScalarNode:
			*records = append(*records, Record{Path: here, Value: value.Value})
		case yaml.SequenceNode:
			if len(value.Content) == 0 {
				*records = append(*records, Record{Path: here})
				continue
			}
			if err := walkYAMLSequence(value, here, records); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: line %d: unexpected node for %q", ErrMalformed, value.Line, elem.Name)
		}
	}
	return nil
}
