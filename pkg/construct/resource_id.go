package construct

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ResourceId uniquely identifies a resource within a graph. Names are unique per kind, so the
// same name may be used by resources of different kinds (eg. a role and its instance profile).
type ResourceId struct {
	Kind Kind   `yaml:"kind" toml:"kind"`
	Name string `yaml:"name" toml:"name"`
}

// ResourceIdLess orders by kind (in declaration order of the [Kind] constants) then by name.
func ResourceIdLess(a, b ResourceId) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Name < b.Name
}

// SortIds sorts `ids` in place by [ResourceIdLess], for output that must not depend on map iteration.
func SortIds(ids []ResourceId) {
	sort.Slice(ids, func(i, j int) bool { return ResourceIdLess(ids[i], ids[j]) })
}

func (id ResourceId) IsZero() bool {
	return id == ResourceId{}
}

func (id ResourceId) String() string {
	if id.IsZero() {
		return ""
	}
	return id.Kind.String() + ":" + id.Name
}

func (id ResourceId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

var resourceNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_#./\-\[\]]+$`)

// Parse parses the string form `kind:name` without validating the name. Use [ResourceId.Validate]
// or [ResourceId.UnmarshalText] for validation.
func (id *ResourceId) Parse(s string) error {
	kind, name, ok := strings.Cut(s, ":")
	if !ok {
		return fmt.Errorf("invalid resource id '%s': expected 'kind:name'", s)
	}
	k, err := ParseKind(kind)
	if err != nil {
		return fmt.Errorf("invalid resource id '%s': %w", s, err)
	}
	id.Kind = k
	id.Name = name
	return nil
}

func (id ResourceId) Validate() error {
	var err error
	if !id.Kind.IsValid() {
		err = errors.Join(err, fmt.Errorf("invalid kind %s", id.Kind))
	}
	if !resourceNamePattern.MatchString(id.Name) {
		err = errors.Join(err, fmt.Errorf("invalid name '%s' (must match %s)", id.Name, resourceNamePattern))
	}
	if err != nil {
		return fmt.Errorf("invalid resource id '%s': %w", id, err)
	}
	return nil
}

func (id *ResourceId) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*id = ResourceId{}
		return nil
	}
	if err := id.Parse(string(data)); err != nil {
		return err
	}
	return id.Validate()
}

func (id ResourceId) MarshalTOML() ([]byte, error) {
	return id.MarshalText()
}

func (id *ResourceId) UnmarshalTOML(data []byte) error {
	return id.UnmarshalText(data)
}
