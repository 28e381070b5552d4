// Package set is a generic set backed by a map. The zero value is not usable; create sets with [SetOf] or
// `make`.
package set

import (
	"maps"
	"sort"
)

type Set[T comparable] map[T]struct{}

func SetOf[T comparable](vs ...T) Set[T] {
	s := make(Set[T], len(vs))
	s.Add(vs...)
	return s
}

func (s Set[T]) Add(vs ...T) {
	for _, v := range vs {
		s[v] = struct{}{}
	}
}

// Union adds every member of `others` to `s` and returns `s`.
func (s Set[T]) Union(others ...Set[T]) Set[T] {
	for _, o := range others {
		maps.Copy(s, o)
	}
	return s
}

func (s Set[T]) Contains(v T) bool {
	_, ok := s[v]
	return ok
}

// Equal reports whether both sets hold the same members. A nil set equals an empty one.
func (s Set[T]) Equal(o Set[T]) bool {
	if len(s) != len(o) {
		return false
	}
	for v := range s {
		if !o.Contains(v) {
			return false
		}
	}
	return true
}

func (s Set[T]) Len() int {
	return len(s)
}

func (s Set[T]) ToSlice() []T {
	slice := make([]T, 0, len(s))
	for v := range s {
		slice = append(slice, v)
	}
	return slice
}

// Sorted is [Set.ToSlice] in the order given by `less`.
func (s Set[T]) Sorted(less func(a, b T) bool) []T {
	slice := s.ToSlice()
	sort.Slice(slice, func(i, j int) bool { return less(slice[i], slice[j]) })
	return slice
}
