package engine

import (
	"fmt"

	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/provider"
)

// AttributeState is the two-phase state of a node's attributes.
type AttributeState int

const (
	Pending AttributeState = iota
	Resolved
)

func (s AttributeState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	default:
		return fmt.Sprintf("AttributeState(%d)", int(s))
	}
}

// Attribute is the value of an [construct.AttributeRef]. Value is only meaningful when State is Resolved.
type Attribute struct {
	State AttributeState
	Value any
}

type nodeState struct {
	state AttributeState
	// properties are the node's declared properties with every ref replaced by its resolved value.
	properties construct.Properties
	outputs    provider.Outputs
}

func (n *nodeState) attribute(name string) (any, bool) {
	if n.state != Resolved {
		return nil, false
	}
	if v, ok := n.outputs[name]; ok && v != nil {
		return v, true
	}
	if v, ok := n.properties[name]; ok && v != nil {
		return v, true
	}
	return nil, false
}

// Attribute returns the attribute `ref` points at. A resolved node's outputs (as reported by the collaborator)
// take precedence over its resolved properties of the same name. The attribute is Pending if the node has not
// been resolved yet or if neither has a value for it.
func (g *ResourceGraph) Attribute(ref construct.AttributeRef) Attribute {
	n, ok := g.attributes[ref.Resource]
	if !ok {
		return Attribute{State: Pending}
	}
	v, ok := n.attribute(ref.Attribute)
	if !ok {
		return Attribute{State: Pending}
	}
	return Attribute{State: Resolved, Value: v}
}

// LookupAttribute reports the value of `ref` and whether it is resolved.
func (g *ResourceGraph) LookupAttribute(ref construct.AttributeRef) (any, bool) {
	attr := g.Attribute(ref)
	return attr.Value, attr.State == Resolved
}

// State returns the resolution state of a node.
func (g *ResourceGraph) State(id construct.ResourceId) AttributeState {
	if n, ok := g.attributes[id]; ok {
		return n.state
	}
	return Pending
}

// Pending returns the nodes that are not resolved yet, in topological order.
func (g *ResourceGraph) Pending() []construct.ResourceId {
	var pending []construct.ResourceId
	for _, id := range g.order {
		if g.attributes[id].state != Resolved {
			pending = append(pending, id)
		}
	}
	return pending
}

// Resolved reports whether every node has been resolved.
func (g *ResourceGraph) Resolved() bool {
	return len(g.Pending()) == 0
}

func (g *ResourceGraph) resolve(id construct.ResourceId, props construct.Properties, outputs provider.Outputs) error {
	n, ok := g.attributes[id]
	if !ok {
		return fmt.Errorf("%s is not part of the graph", id)
	}
	if n.state == Resolved {
		return fmt.Errorf("%s is already resolved", id)
	}
	n.properties = props
	n.outputs = outputs
	n.state = Resolved
	return nil
}
