package graph_addons

import (
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"
)

// CycleError is returned by [TopologicalSort] when some vertices can never be ordered.
type CycleError[K comparable] struct {
	Remaining []K
}

func (e *CycleError[K]) Error() string {
	return fmt.Sprintf("graph contains a cycle among %d vertices: %v", len(e.Remaining), e.Remaining)
}

// TopologicalSort provides a stable topological ordering: every vertex appears after all of its predecessors.
// Among vertices that become available at the same time, `less` decides the order.
func TopologicalSort[K comparable, T any](g graph.Graph[K, T], less func(K, K) bool) ([]K, error) {
	if !g.Traits().IsDirected {
		return nil, fmt.Errorf("topological sort cannot be computed on undirected graph")
	}
	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, fmt.Errorf("failed to get predecessor map: %w", err)
	}
	return topologicalSort(predecessors, less)
}

// topologicalSort performs Kahn's algorithm on the given dependencies (a PredecessorMap). Unlike
// graph.StableTopologicalSort, the ready queue is re-sorted whenever it grows so that the order only
// depends on the graph contents and `less`, never on map iteration.
func topologicalSort[K comparable](deps map[K]map[K]graph.Edge[K], less func(K, K) bool) ([]K, error) {
	if len(deps) == 0 {
		return nil, nil
	}

	remaining := make(map[K]int, len(deps))
	successors := make(map[K][]K, len(deps))
	var queue []K
	for vertex, vdeps := range deps {
		remaining[vertex] = len(vdeps)
		for dep := range vdeps {
			successors[dep] = append(successors[dep], vertex)
		}
		if len(vdeps) == 0 {
			queue = append(queue, vertex)
		}
	}
	sortQueue := func() {
		sort.Slice(queue, func(i, j int) bool {
			return less(queue[i], queue[j])
		})
	}
	sortQueue()

	order := make([]K, 0, len(deps))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)
		delete(remaining, current)

		grew := false
		for _, succ := range successors[current] {
			remaining[succ]--
			if remaining[succ] == 0 {
				queue = append(queue, succ)
				grew = true
			}
		}
		if grew {
			sortQueue()
		}
	}

	if len(remaining) > 0 {
		cycle := &CycleError[K]{Remaining: make([]K, 0, len(remaining))}
		for vertex := range remaining {
			cycle.Remaining = append(cycle.Remaining, vertex)
		}
		sort.Slice(cycle.Remaining, func(i, j int) bool {
			return less(cycle.Remaining[i], cycle.Remaining[j])
		})
		return order, cycle
	}
	return order, nil
}
