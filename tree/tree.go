// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package tree implements a jlazy.Builder that represents JSON objects and
// arrays as ordered containers.
//
// A value produced by this package is nil (null), a bool, a float64 or int64
// (number), a string, an Object, or an Array. Objects and arrays nested inside
// a parsed value are lazy: the text of a nested value is parsed the first time
// one of its methods is called, and the result is remembered.
//
// If the text of a lazy value is not valid JSON, its accessor methods panic
// with a *jlazy.SyntaxError. Use the Resolve method of the value, or the Force
// function, to check for errors without panicking. Path and Materialize also
// report errors instead of panicking.
package tree

import (
	"fmt"
	"iter"
	"slices"
)

// An Object is a JSON object. The members of an object have unique keys, and
// are kept in the order their keys first appeared in the input. If a key is
// repeated in the input, the last value for that key wins.
type Object interface {
	// Len reports the number of members in the object.
	Len() int

	// Has reports whether the object has a member with the given key.
	Has(key string) bool

	// Get returns the value of the member with the given key, and reports
	// whether it was found.
	Get(key string) (any, bool)

	// Keys returns a slice of the keys of the object, in order.
	Keys() []string

	// Member returns the key and value of the ith member, 0 ≤ i < Len().
	Member(i int) (string, any)

	// All returns an iterator over the members of the object, in order.
	All() iter.Seq2[string, any]

	// Resolve parses the object if it is lazy, and reports an error if its
	// text is not valid. Resolve does not parse nested values.
	Resolve() error

	// String renders the object as JSON text. Lazy values that have not been
	// resolved are rendered as {...} or [...].
	fmt.Stringer
}

// An Array is a JSON array.
type Array interface {
	// Len reports the number of elements in the array.
	Len() int

	// At returns the element at index i, 0 ≤ i < Len().
	At(i int) any

	// Index returns the index of the first element of the array equal to v
	// according to Equal, or -1 if there is none.
	Index(v any) int

	// Contains reports whether the array has an element equal to v
	// according to Equal.
	Contains(v any) bool

	// All returns an iterator over the indexes and elements of the array.
	All() iter.Seq2[int, any]

	// Slice returns the elements of the array from index lo up to but not
	// including index hi, 0 ≤ lo ≤ hi ≤ Len(). The result shares storage
	// with the original.
	Slice(lo, hi int) Array

	// Resolve parses the array if it is lazy, and reports an error if its
	// text is not valid. Resolve does not parse nested values.
	Resolve() error

	// String renders the array as JSON text. Lazy values that have not been
	// resolved are rendered as {...} or [...].
	fmt.Stringer
}

// object is the built implementation of Object.
type object struct {
	keys []string
	vals []any
	idx  map[string]int // key → offset in keys and vals
}

var emptyObject = new(object)

func (o *object) Len() int { return len(o.keys) }

func (o *object) Has(key string) bool { _, ok := o.idx[key]; return ok }

func (o *object) Get(key string) (any, bool) {
	i, ok := o.idx[key]
	if !ok {
		return nil, false
	}
	return o.vals[i], true
}

func (o *object) Keys() []string { return slices.Clone(o.keys) }

func (o *object) Member(i int) (string, any) { return o.keys[i], o.vals[i] }

func (o *object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for i, key := range o.keys {
			if !yield(key, o.vals[i]) {
				return
			}
		}
	}
}

func (o *object) Resolve() error { return nil }

func (o *object) String() string { return string(appendObject(nil, o)) }

// set adds or replaces the member with the given key.
func (o *object) set(key string, v any) {
	if i, ok := o.idx[key]; ok {
		o.vals[i] = v
		return
	}
	o.idx[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

// array is the built implementation of Array.
type array []any

func (a array) Len() int { return len(a) }

func (a array) At(i int) any { return a[i] }

func (a array) Index(v any) int {
	return slices.IndexFunc(a, func(elt any) bool { return Equal(elt, v) })
}

func (a array) Contains(v any) bool { return a.Index(v) >= 0 }

func (a array) All() iter.Seq2[int, any] { return slices.All(a) }

func (a array) Slice(lo, hi int) Array { return a[lo:hi:hi] }

func (a array) Resolve() error { return nil }

func (a array) String() string { return string(appendArray(nil, a)) }
