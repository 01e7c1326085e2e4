// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package tree

import (
	"github.com/creachadair/jlazy"
	"go4.org/mem"
)

// Builder is a jlazy.Builder that constructs Object and Array values.
// The zero value is ready for use.
type Builder struct {
	// If true, numbers without a fraction or exponent are represented as
	// int64, unless they are out of range. Otherwise all numbers are
	// represented as float64.
	Integers bool
}

// StartObject implements part of jlazy.Builder. Storage for the object is
// not allocated until the first member is added.
func (Builder) StartObject() *object { return nil }

// AddField implements part of jlazy.Builder.
func (Builder) AddField(o *object, key string, value any) *object {
	if o == nil {
		o = &object{idx: make(map[string]int)}
	}
	o.set(key, value)
	return o
}

// EndObject implements part of jlazy.Builder.
func (Builder) EndObject(o *object) Object {
	if o == nil {
		return emptyObject
	}
	return o
}

// LazyObject implements part of jlazy.Builder.
func (Builder) LazyObject(src mem.RO, span jlazy.Span, parse jlazy.ParseFunc[Object]) Object {
	return lazyObject{z: jlazy.NewLazy(src, span, parse)}
}

// StartArray implements part of jlazy.Builder.
func (Builder) StartArray() []any { return nil }

// AddElement implements part of jlazy.Builder.
func (Builder) AddElement(a []any, value any) []any { return append(a, value) }

// EndArray implements part of jlazy.Builder.
func (Builder) EndArray(a []any) Array {
	if a == nil {
		return array{}
	}
	return array(a)
}

// LazyArray implements part of jlazy.Builder.
func (Builder) LazyArray(src mem.RO, span jlazy.Span, parse jlazy.ParseFunc[Array]) Array {
	return lazyArray{z: jlazy.NewLazy(src, span, parse)}
}

// Integer implements part of jlazy.NumberBuilder.
func (b Builder) Integer(text mem.RO) (any, error) {
	if b.Integers {
		if v, err := mem.ParseInt(text, 10, 64); err == nil {
			return v, nil
		}
	}
	return jlazy.ParseFloat(text)
}

// Float implements part of jlazy.NumberBuilder.
func (Builder) Float(text mem.RO) (any, error) { return jlazy.ParseFloat(text) }

// Parser is a jlazy.Parser that constructs tree values.
type Parser = jlazy.Parser[Object, Array, *object, []any]

// NewParser constructs a parser that delivers values to b.
func NewParser(b Builder) *Parser {
	return jlazy.NewParser[Object, Array, *object, []any](b)
}

var std = NewParser(Builder{})

// Parse parses a single JSON value from text using a default Builder.
// Numbers are represented as float64.
func Parse(text string) (any, error) { return std.Parse(text) }

// ParseBytes parses a single JSON value from data using a default Builder.
// The data are not copied, and must not be modified while any lazy value
// parsed from them remains unresolved.
func ParseBytes(data []byte) (any, error) { return std.ParseBytes(data) }
