// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package tree

import (
	"errors"
	"math"
	"strconv"

	"github.com/creachadair/jlazy"
	"github.com/creachadair/jlazy/internal/escape"
	"go4.org/mem"
)

// Kind is the type of a tree value.
type Kind byte

// Constants defining the valid Kind values.
const (
	KindInvalid Kind = iota // not a tree value
	KindNull                // nil
	KindBool                // bool
	KindInteger             // int64
	KindFloat               // float64
	KindString              // string
	KindObject              // Object
	KindArray               // Array
)

var kindStr = [...]string{
	KindInvalid: "invalid",
	KindNull:    "null",
	KindBool:    "bool",
	KindInteger: "integer",
	KindFloat:   "float",
	KindString:  "string",
	KindObject:  "object",
	KindArray:   "array",
}

func (k Kind) String() string {
	if int(k) < len(kindStr) {
		return kindStr[k]
	}
	return "invalid"
}

// KindOf reports the kind of v. It does not resolve lazy values.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int64:
		return KindInteger
	case float64:
		return KindFloat
	case string:
		return KindString
	case Object:
		return KindObject
	case Array:
		return KindArray
	}
	return KindInvalid
}

// Equal reports whether a and b are structurally equal tree values. Numbers
// are equal if they have the same value, regardless of representation.
// Objects are equal if they have the same keys with equal values, regardless
// of the order of their members.
//
// Equal resolves lazy values as needed. Like other accessors, it panics with
// a *jlazy.SyntaxError if a lazy value is invalid.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case int64:
		if y, ok := b.(int64); ok {
			return x == y
		}
		y, ok := b.(float64)
		return ok && equalIntFloat(x, y)
	case float64:
		if y, ok := b.(int64); ok {
			return equalIntFloat(y, x)
		}
		y, ok := b.(float64)
		return ok && x == y
	case Object:
		y, ok := b.(Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for key, xv := range x.All() {
			yv, ok := y.Get(key)
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	case Array:
		y, ok := b.(Array)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i, xv := range x.All() {
			if !Equal(xv, y.At(i)) {
				return false
			}
		}
		return true
	}
	return false
}

func equalIntFloat(z int64, f float64) bool {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return false
	}
	return int64(f) == z
}

// Force resolves v and all the lazy values nested inside it. It reports the
// first error found, if any.
func Force(v any) error {
	switch t := v.(type) {
	case Object:
		if err := t.Resolve(); err != nil {
			return err
		}
		for _, elt := range t.All() {
			if err := Force(elt); err != nil {
				return err
			}
		}
	case Array:
		if err := t.Resolve(); err != nil {
			return err
		}
		for _, elt := range t.All() {
			if err := Force(elt); err != nil {
				return err
			}
		}
	}
	return nil
}

// Materialize resolves v and returns an equivalent value built from plain Go
// types: objects become map[string]any and arrays become []any. Scalars are
// returned unchanged. This is the same shape encoding/json produces when it
// decodes into an empty interface value.
func Materialize(v any) (any, error) {
	switch t := v.(type) {
	case Object:
		if err := t.Resolve(); err != nil {
			return nil, err
		}
		out := make(map[string]any, t.Len())
		for key, elt := range t.All() {
			w, err := Materialize(elt)
			if err != nil {
				return nil, err
			}
			out[key] = w
		}
		return out, nil
	case Array:
		if err := t.Resolve(); err != nil {
			return nil, err
		}
		out := make([]any, t.Len())
		for i, elt := range t.All() {
			w, err := Materialize(elt)
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		return out, nil
	}
	return v, nil
}

// recoverSyntaxError recovers a panic from an invalid lazy value and stores
// its error in *errp. Any other panic is propagated.
func recoverSyntaxError(errp *error) {
	if x := recover(); x != nil {
		err, ok := x.(error)
		var serr *jlazy.SyntaxError
		if !ok || !errors.As(err, &serr) {
			panic(x)
		}
		*errp = err
	}
}

func appendValue(buf []byte, v any) []byte {
	switch t := v.(type) {
	case nil:
		return append(buf, "null"...)
	case bool:
		return strconv.AppendBool(buf, t)
	case int64:
		return strconv.AppendInt(buf, t, 10)
	case float64:
		return strconv.AppendFloat(buf, t, 'g', -1, 64)
	case string:
		return escape.AppendQuote(buf, mem.S(t))
	case *object:
		return appendObject(buf, t)
	case array:
		return appendArray(buf, t)
	case interface{ String() string }:
		return append(buf, t.String()...)
	}
	return append(buf, "<invalid>"...)
}

func appendObject(buf []byte, o *object) []byte {
	buf = append(buf, '{')
	for i, key := range o.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = escape.AppendQuote(buf, mem.S(key))
		buf = append(buf, ':')
		buf = appendValue(buf, o.vals[i])
	}
	return append(buf, '}')
}

func appendArray(buf []byte, a array) []byte {
	buf = append(buf, '[')
	for i, elt := range a {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendValue(buf, elt)
	}
	return append(buf, ']')
}
