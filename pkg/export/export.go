// Package export maps logical output names to resource attributes and turns them into an immutable table once
// the graph is resolved.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/yaml_util"
)

type (
	// AttributeSource reports the value of an attribute ref and whether it is resolved.
	// [engine.ResourceGraph] implements it.
	AttributeSource interface {
		LookupAttribute(ref construct.AttributeRef) (any, bool)
	}

	// Exporter collects export declarations. The zero value is ready to use.
	Exporter struct {
		names []string
		refs  map[string]construct.AttributeRef
	}

	// Table is the finalized, read-only set of exported values.
	Table struct {
		names  []string
		values map[string]any
	}
)

var ErrDuplicateExportName = errors.New("duplicate export name")

// DuplicateExportNameError is returned by [Exporter.Export] when a name is exported twice.
type DuplicateExportNameError struct {
	Name     string
	Existing construct.AttributeRef
}

func (e *DuplicateExportNameError) Error() string {
	return fmt.Sprintf("export %q is already declared (for %s)", e.Name, e.Existing)
}

func (e *DuplicateExportNameError) Is(target error) bool {
	return target == ErrDuplicateExportName
}

// UnresolvedReferenceError is shared with the resolver so callers can match either with one type.
type UnresolvedReferenceError = construct.UnresolvedReferenceError

var ErrUnresolvedReference = construct.ErrUnresolvedReference

// Export declares `name` as an output holding the value of `ref`.
func (e *Exporter) Export(name string, ref construct.AttributeRef) error {
	if name == "" {
		return errors.New("export name must not be empty")
	}
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("invalid reference for export %q: %w", name, err)
	}
	if existing, ok := e.refs[name]; ok {
		return &DuplicateExportNameError{Name: name, Existing: existing}
	}
	if e.refs == nil {
		e.refs = make(map[string]construct.AttributeRef)
	}
	e.refs[name] = ref
	e.names = append(e.names, name)
	return nil
}

// Names returns the declared export names in declaration order.
func (e *Exporter) Names() []string {
	return append([]string(nil), e.names...)
}

// Ref returns the reference exported as `name`.
func (e *Exporter) Ref(name string) (construct.AttributeRef, bool) {
	ref, ok := e.refs[name]
	return ref, ok
}

// Clone returns an independent copy of the declarations.
func (e *Exporter) Clone() *Exporter {
	c := &Exporter{names: append([]string(nil), e.names...)}
	if e.refs != nil {
		c.refs = make(map[string]construct.AttributeRef, len(e.refs))
		for k, v := range e.refs {
			c.refs[k] = v
		}
	}
	return c
}

// Refs returns the distinct referenced attributes, sorted.
func (e *Exporter) Refs() []construct.AttributeRef {
	seen := make(map[construct.AttributeRef]struct{}, len(e.refs))
	refs := make([]construct.AttributeRef, 0, len(e.refs))
	for _, ref := range e.refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		return construct.AttributeRefLess(refs[i], refs[j])
	})
	return refs
}

// Finalize reads every exported value from `source`. If any is unresolved it returns an
// [UnresolvedReferenceError] naming all of them and no table.
func (e *Exporter) Finalize(source AttributeSource) (*Table, error) {
	values := make(map[string]any, len(e.refs))
	var unresolved []construct.AttributeRef
	seen := make(map[construct.AttributeRef]struct{})
	for _, name := range e.names {
		ref := e.refs[name]
		v, ok := source.LookupAttribute(ref)
		if !ok {
			if _, dup := seen[ref]; !dup {
				seen[ref] = struct{}{}
				unresolved = append(unresolved, ref)
			}
			continue
		}
		values[name] = v
	}
	if len(unresolved) > 0 {
		sort.Slice(unresolved, func(i, j int) bool {
			return construct.AttributeRefLess(unresolved[i], unresolved[j])
		})
		return nil, &UnresolvedReferenceError{Refs: unresolved}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Table{names: names, values: values}, nil
}

func (t *Table) Get(name string) (any, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Names returns the exported names, sorted.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

func (t *Table) Len() int {
	return len(t.names)
}

// Map returns a copy of the table's values.
func (t *Table) Map() map[string]any {
	m := make(map[string]any, len(t.values))
	for k, v := range t.values {
		m[k] = v
	}
	return m
}

func (t *Table) MarshalYAML() (interface{}, error) {
	return yaml_util.MarshalOrderedMap(t.values)
}

// MarshalJSON relies on encoding/json sorting map keys.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.values)
}
