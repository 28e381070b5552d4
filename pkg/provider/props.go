package provider

import (
	"fmt"

	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/mitchellh/mapstructure"
)

// String reads an optional string property.
func String(props construct.Properties, key string) (string, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("property %q must be a string, got %T", key, v)
	}
	return s, nil
}

// RequiredString reads a string property that must be set and non-empty.
func RequiredString(props construct.Properties, key string) (string, error) {
	s, err := String(props, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("property %q is required", key)
	}
	return s, nil
}

// Bool reads an optional boolean property.
func Bool(props construct.Properties, key string) (bool, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("property %q must be a bool, got %T", key, v)
	}
	return b, nil
}

// decode converts property `key` into `out`. Input is not weakly typed: a number where a string is expected
// is an error, as is an unknown key in a nested map. Returns false if the property is unset.
func decode(props construct.Properties, key string, out any) (bool, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return false, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return false, err
	}
	if err := dec.Decode(v); err != nil {
		return false, fmt.Errorf("property %q: %w", key, err)
	}
	return true, nil
}

// Strings reads an optional list of strings.
func Strings(props construct.Properties, key string) ([]string, error) {
	var out []string
	_, err := decode(props, key, &out)
	return out, err
}

// Tags reads an optional string map.
func Tags(props construct.Properties, key string) (map[string]string, error) {
	var out map[string]string
	_, err := decode(props, key, &out)
	return out, err
}

// ImageFilter is a single name/values filter of an image lookup.
type ImageFilter struct {
	Name   string   `mapstructure:"name"`
	Values []string `mapstructure:"values"`
}

// ImageFilters reads the `filters` property of an image lookup: a list of `{name, values}` maps.
func ImageFilters(props construct.Properties) ([]ImageFilter, error) {
	var filters []ImageFilter
	if _, err := decode(props, "filters", &filters); err != nil {
		return nil, err
	}
	for i, f := range filters {
		if f.Name == "" {
			return nil, fmt.Errorf("filters[%d]: property \"name\" is required", i)
		}
	}
	return filters, nil
}
