// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package tree

import "fmt"

// Path traverses a sequential path into the structure of v, where path
// elements are as described for the Down method of a Cursor. If the path is
// valid, the value it reaches is returned. Path resolves lazy values along
// the path, and reports an error if one of them is invalid.
func Path(v any, path ...any) (any, error) {
	c := NewCursor(v).Down(path...)
	if err := c.Err(); err != nil {
		return nil, err
	}
	return c.Value(), nil
}

// A Cursor is a pointer that navigates into the structure of a tree value.
// Moving a cursor resolves the lazy values it passes through, but not the
// value it lands on.
type Cursor struct {
	org any
	stk []any
	err error
}

// NewCursor constructs a new Cursor to traverse the structure of origin.
func NewCursor(origin any) *Cursor { return &Cursor{org: origin} }

// Origin returns the origin value of c.
func (c *Cursor) Origin() any { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Value reports the current value under the cursor.
func (c *Cursor) Value() any {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1]
}

// Path reports the complete sequence of values from the origin to the current
// location in c.
func (c *Cursor) Path() []any { return append([]any{c.org}, c.stk...) }

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position upward in the structure, if possible.
// It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset resets the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.stk = c.stk[:0]; c.err = nil }

// Down traverses a sequential path into the structure of c starting from the
// current value. Path elements are strings (object keys), integers (offsets
// into arrays or objects), or functions. If the path cannot be completely
// consumed, traversal stops at the last value reached and an error is
// recorded. Use Err to recover the error.
//
// If a path element is a string, the current value must be an Object, and
// the path continues from the value of the member with that key.
//
// If a path element is an integer, the current value must be an Array or
// an Object, and the path continues from the element or member value at that
// index. Negative indices count backward from the end (-1 is last).
//
// If a path element is a function, it must have the signature
//
//	func(any) (any, error)
//
// It is called with the current value, and the path continues from its
// result. If the function reports an error, traversal stops and the error is
// recorded.
//
// If an object or array along the path is lazy and invalid, traversal stops
// and its *jlazy.SyntaxError is recorded.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil
	c.down(path)
	return c
}

func (c *Cursor) down(path []any) {
	defer recoverSyntaxError(&c.err)

	cur := c.Value()
	for _, elt := range path {
		var next any
		switch t := elt.(type) {
		case string:
			o, ok := cur.(Object)
			if !ok {
				c.err = fmt.Errorf("cannot traverse %s with %q", KindOf(cur), t)
				return
			}
			if c.err = o.Resolve(); c.err != nil {
				return
			}
			next, ok = o.Get(t)
			if !ok {
				c.err = fmt.Errorf("key %q not found", t)
				return
			}

		case int:
			switch e := cur.(type) {
			case Array:
				if c.err = e.Resolve(); c.err != nil {
					return
				}
				i, ok := fixArrayBound(e.Len(), t)
				if !ok {
					c.err = fmt.Errorf("array index %d out of bounds (n=%d)", t, e.Len())
					return
				}
				next = e.At(i)
			case Object:
				if c.err = e.Resolve(); c.err != nil {
					return
				}
				i, ok := fixArrayBound(e.Len(), t)
				if !ok {
					c.err = fmt.Errorf("object index %d out of bounds (n=%d)", t, e.Len())
					return
				}
				_, next = e.Member(i)
			default:
				c.err = fmt.Errorf("cannot traverse %s with %v", KindOf(cur), t)
				return
			}

		case func(any) (any, error):
			v, err := t(cur)
			if err != nil {
				c.err = err
				return
			}
			next = v

		default:
			c.err = fmt.Errorf("invalid path element %T", elt)
			return
		}
		cur = c.push(next)
	}
}

func (c *Cursor) push(v any) any { c.stk = append(c.stk, v); return v }

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
