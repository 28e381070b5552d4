package construct

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateName     = errors.New("duplicate resource name")
	ErrCyclicDependency  = errors.New("cyclic dependency")
	ErrUnknownDependency = errors.New("unknown dependency")
)

// DuplicateNameError is returned when a resource name is registered twice for the same kind.
type DuplicateNameError struct {
	ID ResourceId
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %q already declared", e.ID.Kind, e.ID.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// CyclicDependencyError is returned when no topological order exists. Remaining holds the resources that
// could not be ordered, sorted; at least one cycle is among them.
type CyclicDependencyError struct {
	Remaining []ResourceId
}

func (e *CyclicDependencyError) Error() string {
	ids := make([]string, len(e.Remaining))
	for i, id := range e.Remaining {
		ids[i] = id.String()
	}
	return fmt.Sprintf("cyclic dependency between resources: %s", strings.Join(ids, ", "))
}

func (e *CyclicDependencyError) Is(target error) bool {
	return target == ErrCyclicDependency
}

// UnknownDependencyError is returned when a resource depends on (or references) a resource that was never declared.
type UnknownDependencyError struct {
	Resource   ResourceId
	Dependency ResourceId
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("%s depends on undeclared resource %s", e.Resource, e.Dependency)
}

func (e *UnknownDependencyError) Is(target error) bool {
	return target == ErrUnknownDependency
}

var ErrUnresolvedReference = errors.New("unresolved reference")

// UnresolvedReferenceError is returned when one or more attribute refs have no value. Refs is sorted.
type UnresolvedReferenceError struct {
	Refs []AttributeRef
}

func (e *UnresolvedReferenceError) Error() string {
	if len(e.Refs) == 1 {
		return fmt.Sprintf("reference %s has no value", e.Refs[0])
	}
	refs := make([]string, len(e.Refs))
	for i, ref := range e.Refs {
		refs[i] = ref.String()
	}
	return fmt.Sprintf("%d references have no value: %s", len(e.Refs), strings.Join(refs, ", "))
}

func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}
