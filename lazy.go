// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jlazy

import (
	"sync"
	"sync/atomic"

	"go4.org/mem"
)

// A ParseFunc parses the value whose text occupies span in src.
type ParseFunc[T any] func(src mem.RO, span Span) (T, error)

// Lazy is a memoized parse of a span of source text. The zero value is not
// ready for use; construct a Lazy with NewLazy.
//
// The first call to Get runs the parse function and records its result.
// After that the Lazy no longer refers to the source text, so the source can
// be reclaimed once every Lazy over it has been resolved or dropped.
//
// A Lazy is safe for concurrent use. If several goroutines call Get before
// the value is resolved, the parse function still runs exactly once and all
// the callers observe its result.
type Lazy[T any] struct {
	span Span
	once sync.Once
	done atomic.Bool

	// Cleared when the value is resolved.
	src   mem.RO
	parse ParseFunc[T]

	val T
	err error
}

// NewLazy constructs an unresolved Lazy for the value spanning span in src,
// which will be parsed by calling parse.
func NewLazy[T any](src mem.RO, span Span, parse ParseFunc[T]) *Lazy[T] {
	return &Lazy[T]{span: span, src: src, parse: parse}
}

// Get returns the parsed value of z, parsing it if necessary.
// A parse error is memoized along with the value.
func (z *Lazy[T]) Get() (T, error) {
	z.once.Do(z.resolve)
	return z.val, z.err
}

func (z *Lazy[T]) resolve() {
	defer z.done.Store(true)
	src, parse := z.src, z.parse
	z.src, z.parse = mem.RO{}, nil
	z.val, z.err = parse(src, z.span)
}

// Span returns the span of source text covered by z.
func (z *Lazy[T]) Span() Span { return z.span }

// Resolved reports whether z has been parsed. It does not force resolution.
func (z *Lazy[T]) Resolved() bool { return z.done.Load() }
