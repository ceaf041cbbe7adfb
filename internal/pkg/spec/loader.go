// Package spec loads Ansible argument spec files into generic values.
package spec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadError reports a spec file that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("Cannot load spec file %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrMultipleDocuments is returned for a YAML stream holding more than one
// document.
var ErrMultipleDocuments = errors.New("expected a single document in the stream, but found another document")

// Parser loads spec files from disk.
type Parser struct{}

func (Parser) Load(path string) (any, error) {
	return Load(path)
}

// Load reads path and returns its YAML content as nested map[string]any,
// []any and scalar values. An empty file yields nil.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return doc, nil
}

// Decode parses a single YAML document.
func Decode(data []byte) (any, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))

	var node yaml.Node
	if err := decoder.Decode(&node); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var extra yaml.Node
	if err := decoder.Decode(&extra); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w (line %d)", ErrMultipleDocuments, extra.Line)
	}

	return value(&node)
}

// value converts a node to nested map[string]any, []any and scalar
// values. Mapping keys are stringified, and a key that appears more than
// once takes its last value, as with Python's YAML loader.
func value(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return value(n.Content[0])
	case yaml.AliasNode:
		return value(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := value(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return mapping(n)
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func mapping(n *yaml.Node) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	merged := map[string]any{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Kind == yaml.ScalarNode && key.Tag == "!!merge" {
			if err := merge(merged, val); err != nil {
				return nil, err
			}
			continue
		}
		k, err := value(key)
		if err != nil {
			return nil, err
		}
		v, err := value(val)
		if err != nil {
			return nil, err
		}
		out[fmt.Sprint(k)] = v
	}
	for k, v := range merged {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out, nil
}

// merge applies a "<<" merge key. Mappings listed earlier in a sequence
// take precedence over later ones.
func merge(into map[string]any, n *yaml.Node) error {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	sources := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		sources = n.Content
	}
	for _, src := range sources {
		v, err := value(src)
		if err != nil {
			return err
		}
		m, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("line %d: map merge requires map or sequence of maps as the value", src.Line)
		}
		for k, item := range m {
			if _, ok := into[k]; !ok {
				into[k] = item
			}
		}
	}
	return nil
}
