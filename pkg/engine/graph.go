package engine

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"
	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/graph_addons"
	"github.com/klothoplatform/stackgraph/pkg/set"
)

// ResourceGraph is the assembled, immutable dependency graph of a build run together with its fixed
// topological order and the attribute table that the resolver fills in.
type ResourceGraph struct {
	graph construct.Graph
	order []construct.ResourceId

	// attributes is only written by [Resolver.Resolve], which owns the graph for the duration of the pass.
	attributes map[construct.ResourceId]*nodeState
}

// Assemble builds the graph for `nodes`: one vertex per resource and an edge from every dependency (explicit
// or via an attribute ref) to its dependent. It fails with [construct.DuplicateNameError] if two nodes share an
// id, [construct.UnknownDependencyError] if a dependency is not among `nodes`, and
// [construct.CyclicDependencyError] if no topological order exists. Assembling the same nodes twice yields
// the same structure and order.
func Assemble(nodes []*construct.Resource) (*ResourceGraph, error) {
	store := graph_addons.NewMemoryStore[construct.ResourceId, *construct.Resource]()
	g := graph.NewWithStore(construct.ResourceHasher, store, graph.Directed())

	seen := make(set.Set[construct.ResourceId], len(nodes))
	for _, n := range nodes {
		if n == nil {
			return nil, errors.New("cannot assemble a nil resource")
		}
		if seen.Contains(n.ID) {
			return nil, &construct.DuplicateNameError{ID: n.ID}
		}
		seen.Add(n.ID)
		if err := g.AddVertex(n); err != nil {
			return nil, fmt.Errorf("could not add %s: %w", n.ID, err)
		}
	}

	for _, n := range nodes {
		for _, dep := range n.Dependencies() {
			if !seen.Contains(dep) {
				return nil, &construct.UnknownDependencyError{Resource: n.ID, Dependency: dep}
			}
			if err := g.AddEdge(dep, n.ID); err != nil {
				return nil, fmt.Errorf("could not add dependency %s -> %s: %w", dep, n.ID, err)
			}
		}
	}

	order, err := construct.TopologicalSort(g)
	if err != nil {
		return nil, err
	}
	store.Freeze()

	rg := &ResourceGraph{
		graph:      g,
		order:      order,
		attributes: make(map[construct.ResourceId]*nodeState, len(order)),
	}
	for _, id := range order {
		rg.attributes[id] = &nodeState{}
	}
	return rg, nil
}

// Graph returns the underlying graph. It is frozen: any attempt to add to it fails.
func (g *ResourceGraph) Graph() construct.Graph {
	return g.graph
}

// Order returns the topological order: every resource appears after all of its dependencies.
func (g *ResourceGraph) Order() []construct.ResourceId {
	return append([]construct.ResourceId(nil), g.order...)
}

func (g *ResourceGraph) Len() int {
	return len(g.order)
}

func (g *ResourceGraph) Resource(id construct.ResourceId) (*construct.Resource, error) {
	return g.graph.Vertex(id)
}

// Resources returns the resources in topological order.
func (g *ResourceGraph) Resources() ([]*construct.Resource, error) {
	rs := make([]*construct.Resource, 0, len(g.order))
	for _, id := range g.order {
		r, err := g.graph.Vertex(id)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	return rs, nil
}

// DirectDependencies returns the ids `id` has an edge from, sorted.
func (g *ResourceGraph) DirectDependencies(id construct.ResourceId) ([]construct.ResourceId, error) {
	pred, err := g.graph.PredecessorMap()
	if err != nil {
		return nil, err
	}
	deps, ok := pred[id]
	if !ok {
		return nil, &construct.UnknownDependencyError{Dependency: id}
	}
	ids := make(set.Set[construct.ResourceId], len(deps))
	for dep := range deps {
		ids.Add(dep)
	}
	return ids.Sorted(construct.ResourceIdLess), nil
}

// String renders the graph in a stable, human readable form. Two assemblies of the same nodes render identically.
func (g *ResourceGraph) String() string {
	s, err := construct.String(g.graph)
	if err != nil {
		return fmt.Sprintf("<invalid graph: %v>", err)
	}
	return s
}
