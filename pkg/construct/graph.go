package construct

import (
	"fmt"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/klothoplatform/stackgraph/pkg/graph_addons"
)

// Graph holds resources as vertices. Edges point from a dependency to its dependent, so a topological
// order lists every resource after everything it depends on.
type (
	Graph = graph.Graph[ResourceId, *Resource]
	Edge  = graph.Edge[ResourceId]
)

// NewGraph returns an empty directed graph backed by a [graph_addons.MemoryStore], so re-adding an equal
// resource is a no-op rather than an error.
func NewGraph(options ...func(*graph.Traits)) Graph {
	return graph.NewWithStore(
		ResourceHasher,
		graph_addons.NewMemoryStore[ResourceId, *Resource](),
		append(options, graph.Directed())...,
	)
}

func ResourceHasher(r *Resource) ResourceId {
	return r.ID
}

// String renders `g` one resource per line in topological order, each followed by the resources that
// depend on it. Graphs with the same structure render identically.
func String(g Graph) (string, error) {
	topo, err := TopologicalSort(g)
	if err != nil {
		return "", err
	}
	adjacent, err := g.AdjacencyMap()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, id := range topo {
		targets := make([]ResourceId, 0, len(adjacent[id]))
		for t := range adjacent[id] {
			targets = append(targets, t)
		}
		SortIds(targets)

		fmt.Fprintf(&sb, "%q", id)
		switch len(targets) {
		case 0:
			sb.WriteByte('\n')
		case 1:
			fmt.Fprintf(&sb, " -> %q\n", targets[0])
		default:
			sb.WriteByte('\n')
			for _, t := range targets {
				fmt.Fprintf(&sb, "-> %q\n", t)
			}
		}
	}
	return sb.String(), nil
}
