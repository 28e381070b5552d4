package yaml_util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMarshalMap(t *testing.T) {
	node, err := MarshalOrderedMap(map[string]any{"b": 2, "a": "x", "c": []any{1}})
	require.NoError(t, err)

	out, err := yaml.Marshal(node)
	require.NoError(t, err)
	assert.Equal(t, "a: x\nb: 2\nc:\n    - 1\n", string(out))
}

func TestMarshalMap_Empty(t *testing.T) {
	node, err := MarshalMap(map[string]int{}, func(a, b string) bool { return a < b })
	require.NoError(t, err)
	assert.Equal(t, "!!null", node.Tag)
}

func TestMarshalMap_Order(t *testing.T) {
	byLength := func(a, b string) bool { return len(a) < len(b) }
	node, err := MarshalMap(map[string]any{"ccc": 1, "a": ScalarNode("raw"), "bb": NullNode()}, byLength)
	require.NoError(t, err)

	out, err := yaml.Marshal(node)
	require.NoError(t, err)
	assert.Equal(t, "a: raw\nbb:\nccc: 1\n", string(out))
}
