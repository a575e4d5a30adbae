package parser

import (
	"bytes"
	"fmt"
	"io"

	stderrors "errors"

	"github.com/mcncl/gotoon/internal/errors"
	"github.com/mcncl/gotoon/toon"
	"gopkg.in/yaml.v3"
)

const yamlMergeTag = "!!merge"

// parseYAML reads a single YAML document through the node API so mapping order survives.
func parseYAML(data []byte) (any, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := decoder.Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return nil, errors.NewParsingError(fmt.Sprintf("YAML syntax error: %v", err), errors.ErrInvalidYAML)
	}

	var extra yaml.Node
	if err := decoder.Decode(&extra); !stderrors.Is(err, io.EOF) {
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("YAML syntax error: %v", err), errors.ErrInvalidYAML)
		}
		return nil, errors.NewParsingError("multiple YAML documents found", errors.ErrMultipleDocuments)
	}

	value, err := convertYAMLNode(&doc)
	if err != nil {
		return nil, errors.NewParsingError(err.Error(), errors.ErrInvalidYAML)
	}
	return value, nil
}

func convertYAMLNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return convertYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return convertYAMLNode(node.Alias)
	case yaml.SequenceNode:
		arr := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := convertYAMLNode(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := toon.NewObject()
		if err := fillYAMLMapping(obj, node); err != nil {
			return nil, err
		}
		return obj, nil
	case yaml.ScalarNode:
		return convertYAMLScalar(node)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
}

// fillYAMLMapping copies key/value pairs into obj. Merge keys (<<) contribute fields that
// the mapping does not define itself.
func fillYAMLMapping(obj *toon.Object, node *yaml.Node) error {
	var merges []*yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if keyNode.ShortTag() == yamlMergeTag {
			merges = append(merges, valueNode)
			continue
		}
		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: only scalar mapping keys are supported", keyNode.Line)
		}
		v, err := convertYAMLNode(valueNode)
		if err != nil {
			return err
		}
		obj.Set(keyNode.Value, v)
	}

	for _, m := range merges {
		sources := []*yaml.Node{m}
		if m.Kind == yaml.SequenceNode {
			sources = m.Content
		}
		for _, src := range sources {
			v, err := convertYAMLNode(src)
			if err != nil {
				return err
			}
			merged, ok := v.(*toon.Object)
			if !ok {
				return fmt.Errorf("line %d: merge value must be a mapping", src.Line)
			}
			for _, f := range merged.Fields() {
				if !obj.Has(f.Key) {
					obj.Set(f.Key, f.Value)
				}
			}
		}
	}
	return nil
}

func convertYAMLScalar(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return i, nil
		}
		var u uint64
		if err := node.Decode(&u); err == nil {
			return u, nil
		}
		return node.Value, nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return toon.Normalize(f)
	}
	// Strings, timestamps and binary keep their literal text.
	return node.Value, nil
}
