package sanitization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_Apply(t *testing.T) {
	tests := []struct {
		name      string
		sanitizer Sanitizer
		in        string
		want      string
	}{
		{name: "no rules", sanitizer: Sanitizer{}, in: "As Is", want: "As Is"},
		{
			name:      "rules in order",
			sanitizer: Sanitizer{Rules: []Rule{Replace(`\s+`, "-"), Replace(`-+`, "-")}},
			in:        "a  b - c",
			want:      "a-b-c",
		},
		{name: "lowercase before rules", sanitizer: Sanitizer{Lowercase: true, Rules: []Rule{Replace(`[A-Z]`, "")}}, in: "AbC", want: "abc"},
		{name: "truncated then trimmed", sanitizer: Sanitizer{MaxLength: 4, TrimRight: "-"}, in: "abc-def", want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sanitizer.Apply(tt.in))
		})
	}
}
