// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jlazy

import (
	"errors"
	"strconv"

	"go4.org/mem"
)

// A Builder constructs the values reported by a Parser. The type parameters
// are the representations of a complete object (O) and array (A), and the
// accumulators used while an object (OB) or array (AB) is under construction.
// The parser never inspects an accumulator; it only threads it through the
// Add methods and hands it back to the End methods.
//
// Values passed to AddField and AddElement are nil (null), bool, string, a
// number as produced by the NumberBuilder hooks (float64 by default), or an O
// or A returned by an earlier call to the builder.
//
// An O or A may come from EndObject/EndArray (fully built) or from
// LazyObject/LazyArray (deferred). The builder is responsible for making the
// two indistinguishable to its callers once accessed.
type Builder[O, A, OB, AB any] interface {
	// Begin a new object. The result may be an empty sentinel, in which case
	// AddField must allocate on first use.
	StartObject() OB

	// Add a member to the object under construction and return the updated
	// accumulator. Members are added in input order, including duplicate keys.
	AddField(ob OB, key string, value any) OB

	// Finish an object. EndObject must accept an accumulator to which no
	// fields were added, and return a valid empty object.
	EndObject(ob OB) O

	// Return a deferred object for the text at span in src. The object must be
	// resolved by calling parse(src, span) no more than once.
	LazyObject(src mem.RO, span Span, parse ParseFunc[O]) O

	// Begin a new array. The result may be an empty sentinel, in which case
	// AddElement must allocate on first use.
	StartArray() AB

	// Add a value to the array under construction and return the updated
	// accumulator.
	AddElement(ab AB, value any) AB

	// Finish an array. EndArray must accept an accumulator to which no values
	// were added, and return a valid empty array.
	EndArray(ab AB) A

	// Return a deferred array for the text at span in src. The array must be
	// resolved by calling parse(src, span) no more than once.
	LazyArray(src mem.RO, span Span, parse ParseFunc[A]) A
}

// NumberBuilder is an optional interface that a Builder may implement to
// control the representation of numbers. The text passed to each method is a
// syntactically valid JSON number. If a method reports an error, parsing
// fails with a *SyntaxError that wraps it.
type NumberBuilder interface {
	// Integer converts a number with no fraction or exponent.
	Integer(text mem.RO) (any, error)

	// Float converts a number with a fraction and/or an exponent.
	Float(text mem.RO) (any, error)
}

// ParseFloat converts text to a float64. This is the default conversion for
// both classes of number. Magnitudes outside the range of float64 become ±Inf
// or zero instead of failing.
func ParseFloat(text mem.RO) (any, error) {
	v, err := mem.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, err
	}
	return v, nil
}

type floatNumbers struct{}

func (floatNumbers) Integer(text mem.RO) (any, error) { return ParseFloat(text) }
func (floatNumbers) Float(text mem.RO) (any, error)   { return ParseFloat(text) }
