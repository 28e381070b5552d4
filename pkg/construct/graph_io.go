package construct

import (
	"errors"
	"fmt"

	"github.com/klothoplatform/stackgraph/pkg/yaml_util"
	"gopkg.in/yaml.v3"
)

// YamlGraph renders a graph as YAML: resources in topological order with their properties (refs are written in
// their `kind:name#attribute` form), followed by the `dependency -> dependent` edges.
type YamlGraph struct {
	Graph Graph
}

func (g YamlGraph) MarshalYAML() (interface{}, error) {
	topo, err := TopologicalSort(g.Graph)
	if err != nil {
		return nil, err
	}

	adj, err := g.Graph.AdjacencyMap()
	if err != nil {
		return nil, err
	}

	var errs error

	resources := &yaml.Node{
		Kind: yaml.MappingNode,
	}
	for _, rid := range topo {
		r, err := g.Graph.Vertex(rid)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		props, err := yaml_util.MarshalOrderedMap(map[string]any(r.Properties))
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("could not marshal properties of %s: %w", rid, err))
			continue
		}

		resources.Content = append(resources.Content,
			yaml_util.ScalarNode(rid.String()),
			props,
		)
	}
	if len(resources.Content) == 0 {
		resources = yaml_util.NullNode()
	}

	edges := &yaml.Node{
		Kind: yaml.MappingNode,
	}
	for _, source := range topo {
		targets := make([]ResourceId, 0, len(adj[source]))
		for t := range adj[source] {
			targets = append(targets, t)
		}
		SortIds(targets)
		for _, target := range targets {
			edges.Content = append(edges.Content,
				yaml_util.ScalarNode(fmt.Sprintf("%s -> %s", source, target)),
				yaml_util.NullNode())
		}
	}
	if len(edges.Content) == 0 {
		edges = yaml_util.NullNode()
	}

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "resources"},
			resources,
			{Kind: yaml.ScalarNode, Value: "edges"},
			edges,
		},
	}, errs
}
