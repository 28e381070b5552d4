package construct

import (
	"fmt"
	"strings"
)

// AttributeRef points at an attribute of another resource whose value may not be known until that
// resource has been resolved (eg. the id of an image lookup, or the name of a role).
type AttributeRef struct {
	Resource  ResourceId
	Attribute string
}

// AttributeId is the attribute every resolved resource carries: its committed identifier.
const AttributeId = "id"

func RefTo(id ResourceId, attribute string) AttributeRef {
	return AttributeRef{Resource: id, Attribute: attribute}
}

func (v AttributeRef) String() string {
	if v.IsZero() {
		return ""
	}
	return v.Resource.String() + "#" + v.Attribute
}

func (v AttributeRef) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *AttributeRef) Parse(s string) error {
	res, attr, ok := strings.Cut(s, "#")
	if !ok {
		return fmt.Errorf("invalid AttributeRef format: %s", s)
	}
	v.Attribute = attr
	return v.Resource.Parse(res)
}

func (v AttributeRef) Validate() error {
	if v.Attribute == "" {
		return fmt.Errorf("attribute ref to %s is missing the attribute", v.Resource)
	}
	return v.Resource.Validate()
}

func (v *AttributeRef) UnmarshalText(b []byte) error {
	if err := v.Parse(string(b)); err != nil {
		return err
	}
	return v.Validate()
}

func (v AttributeRef) IsZero() bool {
	return v.Resource.IsZero() && v.Attribute == ""
}

// AttributeRefLess orders refs by resource then attribute name.
func AttributeRefLess(a, b AttributeRef) bool {
	if a.Resource != b.Resource {
		return ResourceIdLess(a.Resource, b.Resource)
	}
	return a.Attribute < b.Attribute
}
