package graph_addons

import (
	"errors"
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AppendOnly(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	store := NewMemoryStore[int, int]()
	g := graph.NewWithStore(graph.IntHash, store, graph.Directed())

	require.NoError(g.AddVertex(1))
	require.NoError(g.AddVertex(2))
	require.NoError(g.AddEdge(1, 2))

	// Same value is idempotent
	assert.NoError(store.AddVertex(1, 1, graph.VertexProperties{}))

	assert.ErrorIs(store.RemoveVertex(1), ErrAppendOnly)
	assert.ErrorIs(store.RemoveEdge(1, 2), ErrAppendOnly)
	assert.ErrorIs(store.UpdateEdge(1, 2, graph.Edge[int]{Source: 1, Target: 2}), ErrAppendOnly)

	count, err := store.VertexCount()
	require.NoError(err)
	assert.Equal(2, count)
}

func TestMemoryStore_Freeze(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	store := NewMemoryStore[int, int]()
	require.NoError(store.AddVertex(1, 1, graph.VertexProperties{}))
	require.NoError(store.AddVertex(2, 2, graph.VertexProperties{}))
	store.Freeze()
	assert.True(store.Frozen())

	assert.ErrorIs(store.AddVertex(3, 3, graph.VertexProperties{}), ErrFrozen)
	assert.ErrorIs(store.AddEdge(1, 2, graph.Edge[int]{Source: 1, Target: 2}), ErrFrozen)
	// Re-adding an existing vertex is still allowed since it is not a change
	assert.NoError(store.AddVertex(1, 1, graph.VertexProperties{}))
}

type eqValue struct {
	id  int
	tag string
}

func (v *eqValue) Equals(other any) bool {
	o, ok := other.(*eqValue)
	return ok && o.id == v.id && o.tag == v.tag
}

func TestMemoryStore_AddVertexConflict(t *testing.T) {
	store := NewMemoryStore[int, *eqValue]()
	require.NoError(t, store.AddVertex(1, &eqValue{id: 1, tag: "a"}, graph.VertexProperties{}))

	assert.NoError(t, store.AddVertex(1, &eqValue{id: 1, tag: "a"}, graph.VertexProperties{}), "equal value is idempotent")

	err := store.AddVertex(1, &eqValue{id: 1, tag: "b"}, graph.VertexProperties{})
	assert.True(t, errors.Is(err, graph.ErrVertexAlreadyExists))
}

func TestMemoryStore_CreatesCycle(t *testing.T) {
	store := NewMemoryStore[int, int]()
	for _, v := range []int{1, 2, 3} {
		require.NoError(t, store.AddVertex(v, v, graph.VertexProperties{}))
	}
	require.NoError(t, store.AddEdge(1, 2, graph.Edge[int]{Source: 1, Target: 2}))
	require.NoError(t, store.AddEdge(2, 3, graph.Edge[int]{Source: 2, Target: 3}))

	cycle, err := store.CreatesCycle(3, 1)
	require.NoError(t, err)
	assert.True(t, cycle)

	cycle, err = store.CreatesCycle(1, 3)
	require.NoError(t, err)
	assert.False(t, cycle)
}
