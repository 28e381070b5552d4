package graph_addons

import (
	"errors"

	"github.com/dominikbraun/graph"
	"github.com/klothoplatform/stackgraph/pkg/set"
)

type WalkGraphFunc[K comparable] func(k K, nerr error) error

var (
	StopWalk = errors.New("stop walk")
	SkipPath = errors.New("skip path")
)

// WalkUp walks up through the graph (towards predecessors) starting at `start` in BFS order.
func WalkUp[K comparable, T any](g graph.Graph[K, T], start K, f WalkGraphFunc[K]) error {
	pred, err := g.PredecessorMap()
	if err != nil {
		return err
	}
	return walk(start, f, pred)
}

// Ancestors returns every vertex `start` transitively depends on, not including `start`.
func Ancestors[K comparable, T any](g graph.Graph[K, T], start K) (set.Set[K], error) {
	ancestors := make(set.Set[K])
	err := WalkUp(g, start, func(k K, nerr error) error {
		ancestors.Add(k)
		return nerr
	})
	return ancestors, err
}

func walk[K comparable](
	start K,
	f WalkGraphFunc[K],
	deps map[K]map[K]graph.Edge[K],
) error {
	visited := make(set.Set[K])
	var queue []K

	for d := range deps[start] {
		queue = append(queue, d)
		visited.Add(d)
	}
	visited.Add(start)

	var err error
	var current K
	for len(queue) > 0 {
		current, queue = queue[0], queue[1:]

		nerr := f(current, err)
		if errors.Is(nerr, StopWalk) {
			return err
		}
		if errors.Is(nerr, SkipPath) {
			continue
		}
		err = nerr

		for d := range deps[current] {
			if visited.Contains(d) {
				continue
			}
			visited.Add(d)
			queue = append(queue, d)
		}
	}
	return err
}
