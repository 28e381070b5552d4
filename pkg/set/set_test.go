package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	assert := assert.New(t)

	s := SetOf("b", "a", "b")
	assert.Equal(2, s.Len())
	assert.True(s.Contains("a"))
	assert.False(s.Contains("c"))

	u := s.Union(SetOf("c"), nil)
	assert.Equal([]string{"a", "b", "c"}, u.Sorted(func(a, b string) bool { return a < b }))
	assert.True(s.Contains("c"), "union adds to the receiver")
}

func TestSet_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Set[int]
		want bool
	}{
		{name: "same members", a: SetOf(1, 2), b: SetOf(2, 1), want: true},
		{name: "nil and empty", a: nil, b: SetOf[int](), want: true},
		{name: "subset", a: SetOf(1), b: SetOf(1, 2), want: false},
		{name: "disjoint", a: SetOf(1, 3), b: SetOf(1, 2), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}
