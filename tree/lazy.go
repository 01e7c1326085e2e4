// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package tree

import (
	"iter"

	"github.com/creachadair/jlazy"
)

// lazyObject is an Object whose text has not yet been parsed. Every method
// except String resolves the object, and panics if it is invalid.
type lazyObject struct{ z *jlazy.Lazy[Object] }

func (o lazyObject) get() Object {
	v, err := o.z.Get()
	if err != nil {
		panic(err)
	}
	return v
}

func (o lazyObject) Len() int                    { return o.get().Len() }
func (o lazyObject) Has(key string) bool         { return o.get().Has(key) }
func (o lazyObject) Get(key string) (any, bool)  { return o.get().Get(key) }
func (o lazyObject) Keys() []string              { return o.get().Keys() }
func (o lazyObject) Member(i int) (string, any)  { return o.get().Member(i) }
func (o lazyObject) All() iter.Seq2[string, any] { return o.get().All() }

func (o lazyObject) Resolve() error { _, err := o.z.Get(); return err }

func (o lazyObject) String() string {
	if o.z.Resolved() {
		if v, err := o.z.Get(); err == nil {
			return v.String()
		}
	}
	return "{...}"
}

// lazyArray is an Array whose text has not yet been parsed. Every method
// except String resolves the array, and panics if it is invalid.
type lazyArray struct{ z *jlazy.Lazy[Array] }

func (a lazyArray) get() Array {
	v, err := a.z.Get()
	if err != nil {
		panic(err)
	}
	return v
}

func (a lazyArray) Len() int                 { return a.get().Len() }
func (a lazyArray) At(i int) any             { return a.get().At(i) }
func (a lazyArray) Index(v any) int          { return a.get().Index(v) }
func (a lazyArray) Contains(v any) bool      { return a.get().Contains(v) }
func (a lazyArray) All() iter.Seq2[int, any] { return a.get().All() }
func (a lazyArray) Slice(lo, hi int) Array   { return a.get().Slice(lo, hi) }

func (a lazyArray) Resolve() error { _, err := a.z.Get(); return err }

func (a lazyArray) String() string {
	if a.z.Resolved() {
		if v, err := a.z.Get(); err == nil {
			return v.String()
		}
	}
	return "[...]"
}

// IsResolved reports false if v is a lazy object or array that has not yet
// been resolved, and true otherwise. It does not resolve v.
func IsResolved(v any) bool {
	switch t := v.(type) {
	case lazyObject:
		return t.z.Resolved()
	case lazyArray:
		return t.z.Resolved()
	}
	return true
}
