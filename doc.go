// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package jlazy implements a JSON parser that defers the construction of
// nested objects and arrays until they are needed.
//
// # Parsing
//
// The Parser type implements a recursive-descent parser for JSON text. When
// it finds a nested object or array, the parser does not parse its contents.
// Instead it locates the matching close delimiter, skipping over the contents
// of strings, and records the span of text between them. The span is handed
// to a Builder, which wraps it in a deferred value. The first time a deferred
// value is accessed, its span is parsed in the same way, one level at a time.
//
// Strings, numbers, and the constants true, false, and null are always
// converted when they are found.
//
// Construct a Parser from a Builder and call its Parse method:
//
//	p := jlazy.NewParser[O, A, OB, AB](builder)
//	v, err := p.Parse(`{"name": "x", "tags": ["a", "b"]}`)
//	if err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// The value returned by Parse is nil, a bool, a string, a number, or an
// object or array constructed by the builder. A top-level object or array is
// parsed immediately, so that a malformed member is reported by Parse. Syntax
// errors inside a nested value are not found until that value is accessed.
// Syntax errors have concrete type *jlazy.SyntaxError.
//
// # Builders
//
// The Builder interface receives the structure of the input from a Parser.
// Its methods correspond to the syntax of JSON values:
//
//	JSON type   | Methods                            | Description
//	----------- | ---------------------------------- | -----------------------
//	object      | StartObject, AddField, EndObject   | { "key": value, ... }
//	array       | StartArray, AddElement, EndArray   | [ value, ... ]
//	nested      | LazyObject, LazyArray              | deferred { ... } [ ... ]
//
// A builder may also implement NumberBuilder to control the representation of
// numbers. Integers (numbers without a fraction or exponent) and floating
// point numbers are reported separately.
//
// Package tree provides a builder for ordered objects and arrays.
//
// # Deferred Values
//
// A Lazy is a deferred value bound to a span of the source text and a parse
// function. A builder typically returns a proxy that holds a Lazy, and calls
// its Get method from every accessor. Get parses the span the first time it
// is called and remembers the result (or the error). Once resolved, a Lazy
// releases its reference to the source text.
package jlazy
