package graph_addons

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"sync"

	"github.com/dominikbraun/graph"
)

var (
	// ErrAppendOnly is returned by [MemoryStore] for any removal or in-place update.
	ErrAppendOnly = errors.New("store is append-only")
	// ErrFrozen is returned by [MemoryStore] for any addition after [MemoryStore.Freeze].
	ErrFrozen = errors.New("store is frozen")
)

// MemoryStore is an append-only [graph.Store]. Adding a vertex or edge equal to an existing one is a
// no-op, so a graph can be built from overlapping sources. Once frozen, only those no-op additions
// succeed. Nothing is ever removed or updated.
type MemoryStore[K comparable, T comparable] struct {
	mu     sync.RWMutex
	frozen bool

	vertices map[K]storedVertex[T]
	// out is keyed source -> target and in is keyed target -> source, holding the same edges.
	out map[K]map[K]graph.Edge[K]
	in  map[K]map[K]graph.Edge[K]
}

type storedVertex[T any] struct {
	value T
	props graph.VertexProperties
}

// equaller lets vertex values and edge data define equality for idempotent adds.
type equaller interface {
	Equals(any) bool
}

func NewMemoryStore[K comparable, T comparable]() *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		vertices: make(map[K]storedVertex[T]),
		out:      make(map[K]map[K]graph.Edge[K]),
		in:       make(map[K]map[K]graph.Edge[K]),
	}
}

// Freeze rejects every later change. It cannot be undone.
func (s *MemoryStore[K, T]) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
}

func (s *MemoryStore[K, T]) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	if eq, ok := a.(equaller); ok {
		return eq.Equals(b)
	}
	return reflect.DeepEqual(a, b)
}

func samePropsOf(weight1, weight2 int, attrs1, attrs2 map[string]string) bool {
	return weight1 == weight2 && maps.Equal(attrs1, attrs2)
}

func (s *MemoryStore[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Attributes == nil {
		p.Attributes = make(map[string]string)
	}
	if existing, ok := s.vertices[k]; ok {
		sameProps := samePropsOf(existing.props.Weight, p.Weight, existing.props.Attributes, p.Attributes)
		if sameProps && (t == existing.value || sameValue(t, existing.value)) {
			return nil
		}
		return &graph.VertexAlreadyExistsError[K, T]{Key: k, ExistingValue: existing.value}
	}
	if s.frozen {
		return fmt.Errorf("could not add vertex %v: %w", k, ErrFrozen)
	}
	s.vertices[k] = storedVertex[T]{value: t, props: p}
	return nil
}

func (s *MemoryStore[K, T]) ListVertices() ([]K, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]K, 0, len(s.vertices))
	for k := range s.vertices {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *MemoryStore[K, T]) VertexCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vertices), nil
}

func (s *MemoryStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vertices[k]
	if !ok {
		return v.value, graph.VertexProperties{}, &graph.VertexNotFoundError[K]{Key: k}
	}
	return v.value, v.props, nil
}

func (s *MemoryStore[K, T]) RemoveVertex(k K) error {
	return fmt.Errorf("could not remove vertex %v: %w", k, ErrAppendOnly)
}

// requireVertices must be called with the lock held.
func (s *MemoryStore[K, T]) requireVertices(keys ...K) error {
	for _, k := range keys {
		if _, ok := s.vertices[k]; !ok {
			return &graph.VertexNotFoundError[K]{Key: k}
		}
	}
	return nil
}

func (s *MemoryStore[K, T]) AddEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireVertices(sourceHash, targetHash); err != nil {
		return fmt.Errorf("could not add edge %v -> %v: %w", sourceHash, targetHash, err)
	}
	if existing, ok := s.out[sourceHash][targetHash]; ok {
		sameProps := samePropsOf(
			existing.Properties.Weight, edge.Properties.Weight,
			existing.Properties.Attributes, edge.Properties.Attributes,
		)
		if !sameProps || !sameValue(existing.Properties.Data, edge.Properties.Data) {
			return &graph.EdgeAlreadyExistsError[K]{Source: sourceHash, Target: targetHash}
		}
		return nil
	}
	if s.frozen {
		return fmt.Errorf("could not add edge %v -> %v: %w", sourceHash, targetHash, ErrFrozen)
	}

	link := func(m map[K]map[K]graph.Edge[K], from, to K) {
		if m[from] == nil {
			m[from] = make(map[K]graph.Edge[K])
		}
		m[from][to] = edge
	}
	link(s.out, sourceHash, targetHash)
	link(s.in, targetHash, sourceHash)
	return nil
}

func (s *MemoryStore[K, T]) UpdateEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	return fmt.Errorf("could not update edge %v -> %v: %w", sourceHash, targetHash, ErrAppendOnly)
}

func (s *MemoryStore[K, T]) RemoveEdge(sourceHash, targetHash K) error {
	return fmt.Errorf("could not remove edge %v -> %v: %w", sourceHash, targetHash, ErrAppendOnly)
}

func (s *MemoryStore[K, T]) Edge(sourceHash, targetHash K) (graph.Edge[K], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if edge, ok := s.out[sourceHash][targetHash]; ok {
		return edge, nil
	}
	return graph.Edge[K]{}, &graph.EdgeNotFoundError[K]{Source: sourceHash, Target: targetHash}
}

func (s *MemoryStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := make([]graph.Edge[K], 0)
	for _, targets := range s.out {
		for _, edge := range targets {
			edges = append(edges, edge)
		}
	}
	return edges, nil
}

// CreatesCycle reports whether an edge `source -> target` would close a cycle, that is whether `target`
// is already an ancestor of `source`. It walks the stored in-edges rather than building a predecessor map.
func (s *MemoryStore[K, T]) CreatesCycle(source, target K) (bool, error) {
	if source == target {
		return true, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireVertices(source, target); err != nil {
		return false, err
	}

	visited := map[K]bool{source: true}
	pending := []K{source}
	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		for pred := range s.in[current] {
			if pred == target {
				return true, nil
			}
			if !visited[pred] {
				visited[pred] = true
				pending = append(pending, pred)
			}
		}
	}
	return false, nil
}
