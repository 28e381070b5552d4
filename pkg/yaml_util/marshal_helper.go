// Package yaml_util builds yaml.v3 nodes with a stable key order.
package yaml_util

import (
	"cmp"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// NullNode renders as nothing, so an empty mapping prints as `key:` instead of `key: {}`.
func NullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}
}

func ScalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
}

// MarshalMap encodes `m` as a YAML mapping with keys ordered by `less`. Values that are already a
// *yaml.Node are used as is. Entries that fail to encode are skipped and their errors joined.
func MarshalMap[K comparable, V any](m map[K]V, less func(K, K) bool) (*yaml.Node, error) {
	if len(m) == 0 {
		return NullNode(), nil
	}
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })

	node := &yaml.Node{Kind: yaml.MappingNode}
	var errs error
	for _, k := range keys {
		keyNode, err := encode(k)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to encode key %v: %w", k, err))
			continue
		}
		valueNode, err := encode(m[k])
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to encode value for %v: %w", k, err))
			continue
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, errs
}

// MarshalOrderedMap is [MarshalMap] for naturally ordered keys.
func MarshalOrderedMap[K cmp.Ordered, V any](m map[K]V) (*yaml.Node, error) {
	return MarshalMap(m, func(a, b K) bool { return a < b })
}

func encode(v any) (*yaml.Node, error) {
	if n, ok := v.(*yaml.Node); ok {
		return n, nil
	}
	n := new(yaml.Node)
	err := n.Encode(v)
	return n, err
}
