package dot

import (
	"sort"
	"strings"
)

// Attributes is the `[key="value", ...]` list attached to a DOT node or edge.
type Attributes map[string]string

// String renders the list sorted by key with a leading space, or nothing when empty. Values wrapped in
// `<...>` are HTML labels and are written unquoted.
func (a Attributes) String() string {
	if len(a) == 0 {
		return ""
	}
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(" [")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		if v := a[k]; isHTML(v) {
			sb.WriteString(v)
		} else {
			sb.WriteByte('"')
			sb.WriteString(strings.ReplaceAll(v, `"`, `\"`))
			sb.WriteByte('"')
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

func isHTML(v string) bool {
	return len(v) > 1 && v[0] == '<' && v[len(v)-1] == '>'
}
