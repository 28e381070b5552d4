package construct

import (
	"reflect"
	"sort"

	"github.com/klothoplatform/stackgraph/pkg/set"
)

type (
	// Properties are the declared inputs of a resource. Values are literals, nested
	// `map[string]any` / `[]any`, or [AttributeRef]s to other resources.
	Properties map[string]any

	// Resource is a single declared cloud entity. Resources are created once by [Declarations.Create]
	// and treated as immutable afterwards: the graph assembler and resolver only read them.
	Resource struct {
		ID         ResourceId
		Properties Properties
		DependsOn  set.Set[ResourceId]
	}
)

// NewResource builds a detached resource, deep-copying the properties so later changes to the caller's
// maps cannot leak into the declaration.
func NewResource(kind Kind, name string, props Properties, dependsOn ...ResourceId) *Resource {
	return &Resource{
		ID:         ResourceId{Kind: kind, Name: name},
		Properties: props.Clone(),
		DependsOn:  set.SetOf(dependsOn...),
	}
}

func (r *Resource) Kind() Kind {
	return r.ID.Kind
}

func (r *Resource) Name() string {
	return r.ID.Name
}

// Ref returns a reference to one of this resource's attributes.
func (r *Resource) Ref(attribute string) AttributeRef {
	return RefTo(r.ID, attribute)
}

// Refs returns every [AttributeRef] found in the resource's properties, in sorted order.
func (r *Resource) Refs() []AttributeRef {
	found := make(set.Set[AttributeRef])
	walkRefs(map[string]any(r.Properties), func(ref AttributeRef) {
		found.Add(ref)
	})
	refs := found.ToSlice()
	sort.Slice(refs, func(i, j int) bool {
		return AttributeRefLess(refs[i], refs[j])
	})
	return refs
}

// Dependencies returns the explicit `DependsOn` ids plus the implicit dependencies introduced by
// attribute refs, sorted.
func (r *Resource) Dependencies() []ResourceId {
	deps := make(set.Set[ResourceId]).Union(r.DependsOn)
	for _, ref := range r.Refs() {
		deps.Add(ref.Resource)
	}
	ids := deps.ToSlice()
	SortIds(ids)
	return ids
}

// Equals implements an interface used in [graph_addons.MemoryStore] to determine whether vertices are equal
// to allow for idempotent vertex addition.
func (r *Resource) Equals(other any) bool {
	var o *Resource
	switch other := other.(type) {
	case Resource:
		o = &other
	case *Resource:
		o = other
	default:
		return false
	}
	if r == o {
		return true
	}
	if r == nil || o == nil || r.ID != o.ID {
		return false
	}
	if !r.DependsOn.Equal(o.DependsOn) {
		return false
	}
	return reflect.DeepEqual(r.Properties, o.Properties)
}

// Clone returns a deep copy of the properties. Nested maps and slices are copied, other values (including
// [AttributeRef]s) are copied by value.
func (p Properties) Clone() Properties {
	if p == nil {
		return Properties{}
	}
	return cloneValue(map[string]any(p)).(map[string]any)
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case Properties:
		return Properties(cloneValue(map[string]any(v)).(map[string]any))
	case map[string]any:
		c := make(map[string]any, len(v))
		for k, val := range v {
			c[k] = cloneValue(val)
		}
		return c
	case map[string]string:
		c := make(map[string]string, len(v))
		for k, val := range v {
			c[k] = val
		}
		return c
	case []any:
		c := make([]any, len(v))
		for i, val := range v {
			c[i] = cloneValue(val)
		}
		return c
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}

func walkRefs(v any, f func(AttributeRef)) {
	switch v := v.(type) {
	case AttributeRef:
		f(v)
	case *AttributeRef:
		if v != nil {
			f(*v)
		}
	case Properties:
		walkRefs(map[string]any(v), f)
	case map[string]any:
		for _, val := range v {
			walkRefs(val, f)
		}
	case []any:
		for _, val := range v {
			walkRefs(val, f)
		}
	}
}

// ReplaceRefs returns a deep copy of the properties with every [AttributeRef] replaced by the value returned
// from `resolve`. The first error returned by `resolve` aborts the replacement.
func (p Properties) ReplaceRefs(resolve func(AttributeRef) (any, error)) (Properties, error) {
	out, err := replaceRefs(map[string]any(p), resolve)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return Properties{}, nil
	}
	return Properties(out.(map[string]any)), nil
}

func replaceRefs(v any, resolve func(AttributeRef) (any, error)) (any, error) {
	switch v := v.(type) {
	case AttributeRef:
		return resolve(v)
	case *AttributeRef:
		if v == nil {
			return nil, nil
		}
		return resolve(*v)
	case Properties:
		return replaceRefs(map[string]any(v), resolve)
	case map[string]any:
		if v == nil {
			return nil, nil
		}
		c := make(map[string]any, len(v))
		for k, val := range v {
			r, err := replaceRefs(val, resolve)
			if err != nil {
				return nil, err
			}
			c[k] = r
		}
		return c, nil
	case []any:
		c := make([]any, len(v))
		for i, val := range v {
			r, err := replaceRefs(val, resolve)
			if err != nil {
				return nil, err
			}
			c[i] = r
		}
		return c, nil
	default:
		return cloneValue(v), nil
	}
}
