package dot

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/graph_addons"
)

func resourceAttributes(r *construct.Resource) Attributes {
	a := Attributes{
		"label": fmt.Sprintf(`%s\n%s`, r.Kind(), r.Name()),
		"shape": "box",
	}
	switch {
	case r.Kind() == construct.KindProvider:
		a["shape"] = "cylinder"
	case r.Kind().IsLookup():
		a["style"] = "dashed"
	}
	return a
}

// clusterOf returns the provider `id` transitively depends on. When there are several, the lowest sorting
// one wins so the output is stable.
func clusterOf(g construct.Graph, id construct.ResourceId) (construct.ResourceId, error) {
	ancestors, err := graph_addons.Ancestors(g, id)
	if err != nil {
		return construct.ResourceId{}, err
	}
	var provider construct.ResourceId
	for anc := range ancestors {
		if anc.Kind != construct.KindProvider {
			continue
		}
		if provider.IsZero() || construct.ResourceIdLess(anc, provider) {
			provider = anc
		}
	}
	return provider, nil
}

// GraphToDot writes `g` as a DOT digraph. Every resource that depends on a provider, directly or through
// other resources, is drawn inside that provider's cluster, so a fanned out stack shows one box per region.
func GraphToDot(g construct.Graph, out io.Writer) error {
	ids, err := construct.TopologicalSort(g)
	if err != nil {
		return err
	}
	var errs error
	printf := func(s string, args ...any) {
		_, err := fmt.Fprintf(out, s, args...)
		errs = errors.Join(errs, err)
	}

	clusters := make(map[construct.ResourceId][]construct.ResourceId)
	var unclustered []construct.ResourceId
	for _, id := range ids {
		if id.Kind == construct.KindProvider {
			continue
		}
		provider, err := clusterOf(g, id)
		if err != nil {
			return err
		}
		if provider.IsZero() {
			unclustered = append(unclustered, id)
		} else {
			clusters[provider] = append(clusters[provider], id)
		}
	}

	node := func(indent string, id construct.ResourceId) {
		r, err := g.Vertex(id)
		if err != nil {
			errs = errors.Join(errs, err)
			return
		}
		printf("%s%q%s;\n", indent, id.String(), resourceAttributes(r))
	}

	printf(`digraph {
  rankdir = TB
`)
	for _, id := range ids {
		if id.Kind != construct.KindProvider {
			continue
		}
		printf("  subgraph %q {\n    label = %q\n", "cluster_"+id.Name, id.Name)
		node("    ", id)
		for _, member := range clusters[id] {
			node("    ", member)
		}
		printf("  }\n")
	}
	for _, id := range unclustered {
		node("  ", id)
	}

	topoIndex := make(map[construct.ResourceId]int, len(ids))
	for i, id := range ids {
		topoIndex[id] = i
	}
	edges, err := g.Edges()
	if err != nil {
		return errors.Join(errs, err)
	}
	sort.Slice(edges, func(i, j int) bool {
		ti, tj := topoIndex[edges[i].Source], topoIndex[edges[j].Source]
		if ti != tj {
			return ti < tj
		}
		return topoIndex[edges[i].Target] < topoIndex[edges[j].Target]
	})
	for _, e := range edges {
		attribs := Attributes{}
		if e.Source.Kind == construct.KindProvider {
			attribs["style"] = "dotted"
		}
		printf("  %q -> %q%s\n", e.Source.String(), e.Target.String(), attribs)
	}
	printf("}\n")
	return errs
}
