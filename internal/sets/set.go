// SPDX-License-Identifier: Apache-2.0

// Package sets provides a minimal generic set modeled after
// k8s.io/apimachinery/pkg/util/sets.
package sets

import (
	"cmp"
	"slices"
)

// Set is a set of comparable values, implemented via map[T]struct{} for
// minimal memory consumption.
type Set[T comparable] map[T]struct{}

// New creates a Set from a list of values.
func New[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	s.Insert(items...)
	return s
}

// KeySet creates a Set from the keys of a map.
func KeySet[T comparable, V any](m map[T]V) Set[T] {
	s := make(Set[T], len(m))
	for k := range m {
		s[k] = struct{}{}
	}
	return s
}

// Insert adds items to the set.
func (s Set[T]) Insert(items ...T) Set[T] {
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Has returns true if and only if item is contained in the set.
func (s Set[T]) Has(item T) bool {
	_, ok := s[item]
	return ok
}

// UnsortedList returns the slice with contents in random order.
func (s Set[T]) UnsortedList() []T {
	res := make([]T, 0, len(s))
	for key := range s {
		res = append(res, key)
	}
	return res
}

// List returns the contents as a sorted slice.
func List[T cmp.Ordered](s Set[T]) []T {
	res := s.UnsortedList()
	slices.Sort(res)
	return res
}
