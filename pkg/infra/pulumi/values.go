package pulumi

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/klothoplatform/stackgraph/pkg/construct"
)

var (
	invalidIdentChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	tsIdentifier      = regexp.MustCompile(`^[a-zA-Z_$][a-zA-Z0-9_$]*$`)
)

// tsValue renders a property value as a TypeScript expression. Refs become property accesses on the
// referenced resource's variable.
func tsValue(v any, vars map[construct.ResourceId]string) (string, error) {
	switch v := v.(type) {
	case nil:
		return "undefined", nil

	case construct.AttributeRef:
		name, ok := vars[v.Resource]
		if !ok {
			return "", fmt.Errorf("reference to unknown resource %s", v.Resource)
		}
		return name + "." + v.Attribute, nil

	case construct.Properties:
		return tsValue(map[string]any(v), vars)

	case map[string]string:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = val
		}
		return tsValue(m, vars)

	case map[string]any:
		if len(v) == 0 {
			return "{}", nil
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]string, len(keys))
		for i, k := range keys {
			val, err := tsValue(v[k], vars)
			if err != nil {
				return "", fmt.Errorf("%s: %w", k, err)
			}
			key := k
			if !tsIdentifier.MatchString(k) {
				key = jsonString(k)
			}
			entries[i] = key + ": " + val
		}
		return "{ " + strings.Join(entries, ", ") + " }", nil

	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return tsValue(items, vars)

	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			val, err := tsValue(item, vars)
			if err != nil {
				return "", fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = val
		}
		return "[" + strings.Join(items, ", ") + "]", nil

	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
