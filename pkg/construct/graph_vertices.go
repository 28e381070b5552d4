package construct

import (
	"errors"
	"slices"

	"github.com/dominikbraun/graph"
	"github.com/klothoplatform/stackgraph/pkg/graph_addons"
)

// TopologicalSort provides a stable topological ordering of resource IDs: every resource appears after all
// of its dependencies, ties broken by [ResourceIdLess]. Returns a [CyclicDependencyError] if the graph has a cycle.
func TopologicalSort[T any](g graph.Graph[ResourceId, T]) ([]ResourceId, error) {
	topo, err := graph_addons.TopologicalSort(g, ResourceIdLess)
	return topo, cycleError(err)
}

// ReverseTopologicalSort is like TopologicalSort, but returns the reverse order. This is primarily useful for
// tearing resources down (dependents before dependencies).
func ReverseTopologicalSort[T any](g graph.Graph[ResourceId, T]) ([]ResourceId, error) {
	topo, err := TopologicalSort(g)
	if err != nil {
		return nil, err
	}
	slices.Reverse(topo)
	return topo, nil
}

func cycleError(err error) error {
	var cycle *graph_addons.CycleError[ResourceId]
	if errors.As(err, &cycle) {
		remaining := slices.Clone(cycle.Remaining)
		slices.SortFunc(remaining, func(a, b ResourceId) int {
			switch {
			case ResourceIdLess(a, b):
				return -1
			case ResourceIdLess(b, a):
				return 1
			}
			return 0
		})
		return &CyclicDependencyError{Remaining: remaining}
	}
	return err
}

// WalkGraphFunc is much like `fs.WalkDirFunc` and is used in `WalkGraph` and `WalkGraphReverse` for the callback
// during graph traversal. Return `StopWalk` to end the walk.
type WalkGraphFunc func(id ResourceId, resource *Resource, nerr error) error

// StopWalk is a special error that can be returned from WalkGraphFunc to stop walking the graph.
// The resulting error from WalkGraph will be whatever was previously passed into the walk function.
var StopWalk = errors.New("stop walking")

func walkGraph(g Graph, ids []ResourceId, fn WalkGraphFunc) (nerr error) {
	for _, id := range ids {
		v, verr := g.Vertex(id)
		if verr != nil {
			return verr
		}
		err := fn(id, v, nerr)
		if errors.Is(err, StopWalk) {
			return
		}
		nerr = err
	}
	return
}

func WalkGraph(g Graph, fn WalkGraphFunc) error {
	topo, err := TopologicalSort(g)
	if err != nil {
		return err
	}
	return walkGraph(g, topo, fn)
}

func WalkGraphReverse(g Graph, fn WalkGraphFunc) error {
	topo, err := ReverseTopologicalSort(g)
	if err != nil {
		return err
	}
	return walkGraph(g, topo, fn)
}
