// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jlazy

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"github.com/creachadair/jlazy/internal/escape"
	"github.com/sirupsen/logrus"
	"go4.org/mem"
)

// A Parser parses JSON text into values constructed by a Builder.
//
// Nested objects and arrays are not parsed when they are found. Instead the
// parser locates the end of their text and asks the builder for a deferred
// value over that span, whose parse function calls back into the parser.
//
// A Parser has no per-call state, and once configured it is safe for
// concurrent use by multiple goroutines. Configure a Parser before its first
// use: deferred values capture the parser and use its settings whenever they
// are resolved.
type Parser[O, A, OB, AB any] struct {
	b   Builder[O, A, OB, AB]
	num NumberBuilder
	log logrus.FieldLogger

	comments bool // allow comments
	tcomma   bool // allow trailing commas in objects and arrays
	strict   bool // reject input outside RFC 8259
	eager    bool // build nested values immediately
}

// NewParser constructs a Parser that delivers values to b. If b implements
// NumberBuilder, its methods are used to convert numbers; otherwise all
// numbers are converted with ParseFloat.
func NewParser[O, A, OB, AB any](b Builder[O, A, OB, AB]) *Parser[O, A, OB, AB] {
	p := &Parser[O, A, OB, AB]{b: b, num: floatNumbers{}}
	if nb, ok := b.(NumberBuilder); ok {
		p.num = nb
	}
	return p
}

// AllowComments configures the parser to accept (true) or reject (false)
// comments. Comments are a non-standard extension of JSON. If
// enabled, C++ style block comments (/* ... */) and line comments (// ...)
// are treated as white space.
func (p *Parser[O, A, OB, AB]) AllowComments(ok bool) { p.comments = ok }

// AllowTrailingCommas configures the parser to allow (true) or reject (false)
// trailing commas in objects and arrays.
func (p *Parser[O, A, OB, AB]) AllowTrailingCommas(ok bool) { p.tcomma = ok }

// Strict configures the parser to enforce (true) or relax (false) the
// lexical rules of RFC 8259. In strict mode, only space, tab, CR, and LF are
// white space, numbers may not have redundant leading zeroes, and strings may
// not contain unescaped control characters.
func (p *Parser[O, A, OB, AB]) Strict(ok bool) { p.strict = ok }

// Eager configures the parser to build nested objects and arrays when they
// are found (true) rather than deferring them (false). An eager parse reports
// all syntax errors in the input.
func (p *Parser[O, A, OB, AB]) Eager(ok bool) { p.eager = ok }

// SetLogger sets a logger to trace the resolution of deferred values at debug
// level. If log == nil, tracing is disabled.
func (p *Parser[O, A, OB, AB]) SetLogger(log logrus.FieldLogger) { p.log = log }

// Parse parses a single JSON value from text. Leading and trailing white
// space is ignored, but any other text after the value is an error. In case
// of a syntax error, the returned error has type [*SyntaxError].
//
// If the value is an object or array, its members are parsed immediately but
// any objects or arrays nested inside it are deferred.
func (p *Parser[O, A, OB, AB]) Parse(text string) (any, error) { return p.parse(mem.S(text)) }

// ParseBytes behaves as Parse, but reads its input from data. The parser does
// not copy data, which must not be modified while any value deferred from it
// remains unresolved.
func (p *Parser[O, A, OB, AB]) ParseBytes(data []byte) (any, error) { return p.parse(mem.B(data)) }

func (p *Parser[O, A, OB, AB]) parse(src mem.RO) (_ any, err error) {
	defer recoverSyntaxError(&err)
	d := &decoder[O, A, OB, AB]{Parser: p, src: src}

	var v any
	var end int
	switch pos := d.skipSpace(0); d.peek(pos) {
	case '{':
		v, end = d.parseObject(pos)
	case '[':
		v, end = d.parseArray(pos)
	default:
		v, end = d.parseValue(pos)
	}
	if pos := d.skipSpace(end); pos < src.Len() {
		d.failf(pos, "unexpected %s after value", describe(src, pos))
	}
	return v, nil
}

// ParseObject parses the object whose text spans span in src. Objects and
// arrays nested inside it are deferred, unless the parser is eager. This is
// the parse function bound to values returned by the builder's LazyObject.
func (p *Parser[O, A, OB, AB]) ParseObject(src mem.RO, span Span) (_ O, err error) {
	defer p.trace("object", span, &err)
	return parseSpan(p, src, span, '{', (*decoder[O, A, OB, AB]).parseObject)
}

// ParseArray parses the array whose text spans span in src. Objects and
// arrays nested inside it are deferred, unless the parser is eager. This is
// the parse function bound to values returned by the builder's LazyArray.
func (p *Parser[O, A, OB, AB]) ParseArray(src mem.RO, span Span) (_ A, err error) {
	defer p.trace("array", span, &err)
	return parseSpan(p, src, span, '[', (*decoder[O, A, OB, AB]).parseArray)
}

// parseSpan parses a composite value of the type denoted by open, which must
// occupy exactly span in src.
func parseSpan[T, O, A, OB, AB any](p *Parser[O, A, OB, AB], src mem.RO, span Span, open byte,
	parse func(*decoder[O, A, OB, AB], int) (T, int)) (_ T, err error) {
	defer recoverSyntaxError(&err)
	if span.Pos < 0 || span.End > src.Len() || span.Pos >= span.End {
		panic(newSyntaxError(src, max(span.Pos, 0), nil, "invalid span %v (input length %d)", span, src.Len()))
	}

	// The value must not extend past its span, even if the text after the span
	// would let it parse.
	d := &decoder[O, A, OB, AB]{Parser: p, src: src.SliceTo(span.End)}
	if d.peek(span.Pos) != open {
		d.failf(span.Pos, "%s", label(d.src, span.Pos, quote(open)))
	}
	v, end := parse(d, span.Pos)
	if end != span.End {
		d.failf(end, "unexpected %s after value", describe(d.src, end))
	}
	return v, nil
}

func (p *Parser[O, A, OB, AB]) trace(kind string, span Span, errp *error) {
	if p.log == nil {
		return
	}
	log := p.log.WithFields(logrus.Fields{"kind": kind, "pos": span.Pos, "end": span.End})
	if *errp != nil {
		log.WithError(*errp).Debug("resolve failed")
	} else {
		log.Debug("resolved")
	}
}

// recoverSyntaxError recovers a *SyntaxError panic and stores it in *errp.
// Any other panic is propagated.
func recoverSyntaxError(errp *error) {
	if x := recover(); x != nil {
		serr, ok := x.(*SyntaxError)
		if !ok {
			panic(x)
		}
		*errp = serr
	}
}

// A decoder holds the state of a single call to the parser. Its methods take
// the offset where scanning begins and return the offset where it ended.
// Grammar violations panic with a *SyntaxError.
type decoder[O, A, OB, AB any] struct {
	*Parser[O, A, OB, AB]
	src mem.RO
}

// peek returns the byte at offset pos of the input, or 0 at end of input.
func (d *decoder[O, A, OB, AB]) peek(pos int) byte {
	if pos < d.src.Len() {
		return d.src.At(pos)
	}
	return 0
}

func (d *decoder[O, A, OB, AB]) fail(pos int, err error, msg string, args ...any) {
	panic(newSyntaxError(d.src, pos, err, msg, args...))
}

func (d *decoder[O, A, OB, AB]) failf(pos int, msg string, args ...any) {
	d.fail(pos, nil, msg, args...)
}

// parseValue consumes a single value of any type.
func (d *decoder[O, A, OB, AB]) parseValue(pos int) (any, int) {
	if pos >= d.src.Len() {
		d.failf(pos, "unexpected end of input")
	}
	switch c := d.src.At(pos); c {
	case '{':
		if d.eager {
			return d.parseObject(pos)
		}
		end := d.skipComposite(pos, '{', '}')
		return d.b.LazyObject(d.src, Span{Pos: pos, End: end}, d.ParseObject), end
	case '[':
		if d.eager {
			return d.parseArray(pos)
		}
		end := d.skipComposite(pos, '[', ']')
		return d.b.LazyArray(d.src, Span{Pos: pos, End: end}, d.ParseArray), end
	case '"':
		return d.parseString(pos)
	case 't':
		return d.parseLiteral(pos, trueText, true)
	case 'f':
		return d.parseLiteral(pos, falseText, false)
	case 'n':
		return d.parseLiteral(pos, nullText, nil)
	default:
		if c == '-' || isDigit(c) {
			return d.parseNumber(pos)
		}
		d.failf(pos, "unexpected %s", describe(d.src, pos))
	}
	panic("unreachable")
}

var (
	wantKey      = []string{"string"}
	wantKeyOrEnd = []string{"string", `"}"`}
)

// parseObject consumes an object and its members.
// Precondition: the input at pos is "{".
func (d *decoder[O, A, OB, AB]) parseObject(pos int) (O, int) {
	ob := d.b.StartObject()
	i := d.skipSpace(pos + 1)
	if d.peek(i) == '}' {
		return d.b.EndObject(ob), i + 1
	}
	want := wantKeyOrEnd
	for {
		// Parse a single member: "key": value
		if d.peek(i) != '"' {
			d.failf(i, "%s", label(d.src, i, want...))
		}
		key, next := d.parseString(i)
		i = d.skipSpace(next)
		if d.peek(i) != ':' {
			d.failf(i, "%s", label(d.src, i, `":"`))
		}
		val, next := d.parseValue(d.skipSpace(i + 1))
		ob = d.b.AddField(ob, key, val)

		// Check whether we have more members (",") or are done ("}").
		i = d.skipSpace(next)
		switch d.peek(i) {
		case ',':
			i = d.skipSpace(i + 1)
			if !d.tcomma {
				want = wantKey
			} else if d.peek(i) == '}' {
				return d.b.EndObject(ob), i + 1 // end of object with trailing comma
			}
		case '}':
			return d.b.EndObject(ob), i + 1
		default:
			d.failf(i, "%s", label(d.src, i, `","`, `"}"`))
		}
	}
}

// parseArray consumes an array and its elements.
// Precondition: the input at pos is "[".
func (d *decoder[O, A, OB, AB]) parseArray(pos int) (A, int) {
	ab := d.b.StartArray()
	i := d.skipSpace(pos + 1)
	if d.peek(i) == ']' {
		return d.b.EndArray(ab), i + 1
	}
	for {
		val, next := d.parseValue(i)
		ab = d.b.AddElement(ab, val)

		i = d.skipSpace(next)
		switch d.peek(i) {
		case ',':
			i = d.skipSpace(i + 1)
			if d.tcomma && d.peek(i) == ']' {
				return d.b.EndArray(ab), i + 1 // end of array with trailing comma
			}
		case ']':
			return d.b.EndArray(ab), i + 1
		default:
			d.failf(i, "%s", label(d.src, i, `","`, `"]"`))
		}
	}
}

// skipComposite returns the offset just past the delimiter that closes the
// object or array opened at pos. Only the delimiters lb and rb are counted;
// strings (and comments, if enabled) are skipped over so that delimiters
// inside them are not counted. The text between the delimiters is otherwise
// not checked.
func (d *decoder[O, A, OB, AB]) skipComposite(pos int, lb, rb byte) int {
	depth := 0
	for i := pos; i < d.src.Len(); {
		switch d.src.At(i) {
		case lb:
			depth++
		case rb:
			depth--
			if depth == 0 {
				return i + 1
			}
		case '"':
			i, _ = d.scanString(i)
			continue
		case '/':
			if d.comments {
				if next := d.skipComment(i); next != i {
					i = next
					continue
				}
			}
		}
		i++
	}
	if lb == '{' {
		d.failf(pos, "unterminated object")
	}
	d.failf(pos, "unterminated array")
	return 0
}

// scanString returns the offset just past the closing quote of the string
// that begins at pos, and reports whether the string contains escapes.
// Precondition: the input at pos is a double quote.
func (d *decoder[O, A, OB, AB]) scanString(pos int) (int, bool) {
	var esc bool
	for i := pos + 1; i < d.src.Len(); i++ {
		switch d.src.At(i) {
		case '"':
			return i + 1, esc
		case '\\':
			esc = true
			i++ // the escaped byte cannot end the string
		}
	}
	d.failf(pos, "unterminated string")
	return 0, false
}

// parseString consumes a string and returns its decoded value.
// Precondition: the input at pos is a double quote.
func (d *decoder[O, A, OB, AB]) parseString(pos int) (string, int) {
	end, esc := d.scanString(pos)
	body := d.src.Slice(pos+1, end-1)
	if d.strict {
		for i := 0; i < body.Len(); i++ {
			if c := body.At(i); c < ' ' {
				d.failf(pos+1+i, "unescaped control %q in string", c)
			}
		}
	}
	if !esc {
		return body.StringCopy(), end
	}

	dec, err := escape.Unquote(body)
	if err != nil {
		var eerr *escape.Error
		if errors.As(err, &eerr) {
			d.fail(pos+1+eerr.Offset, err, "%s", eerr.Message)
		}
		d.fail(pos, err, "invalid string: %v", err)
	}
	return string(dec), end
}

// parseNumber consumes a number and converts it with the number builder.
// Precondition: the input at pos is "-" or a digit.
func (d *decoder[O, A, OB, AB]) parseNumber(pos int) (any, int) {
	i := pos
	if d.peek(i) == '-' {
		// If there is a leading sign, we need at least one digit.
		i++
		if !isDigit(d.peek(i)) {
			d.failf(i, "invalid numeric literal: %s", label(d.src, i, "digit"))
		}
	}
	i = d.skipDigits(i)

	// Redundant leading zeroes are disallowed by RFC 8259.
	// That is: 0.12 is OK, 01.2 is not.
	if d.strict && hasExtraLeadingZeroes(d.src.Slice(pos, i)) {
		d.failf(pos, "invalid numeric literal: extra leading zeroes")
	}

	// If a decimal point follows, consume a fractional part.
	isFloat := false
	if d.peek(i) == '.' {
		j := d.skipDigits(i + 1)
		if j == i+1 {
			d.failf(j, "invalid numeric literal: no digits after decimal point")
		}
		i, isFloat = j, true
	}

	// If an exponent follows, consume it.
	if c := d.peek(i); c == 'e' || c == 'E' {
		i++
		if c := d.peek(i); c == '+' || c == '-' {
			i++
		}
		j := d.skipDigits(i)
		if j == i {
			d.failf(j, "invalid numeric literal: missing exponent digit")
		}
		i, isFloat = j, true
	}

	text := d.src.Slice(pos, i)
	conv := d.num.Integer
	if isFloat {
		conv = d.num.Float
	}
	v, err := conv(text)
	if err != nil {
		d.fail(pos, err, "invalid number %q: %v", text.StringCopy(), err)
	}
	return v, i
}

const (
	trueText  = "true"
	falseText = "false"
	nullText  = "null"
)

// parseLiteral consumes the constant word and returns v.
func (d *decoder[O, A, OB, AB]) parseLiteral(pos int, word string, v any) (any, int) {
	if !mem.HasPrefix(d.src.SliceFrom(pos), mem.S(word)) {
		d.failf(pos, "invalid literal, expected %s", word)
	}
	return v, pos + len(word)
}

func (d *decoder[O, A, OB, AB]) skipDigits(pos int) int {
	for isDigit(d.peek(pos)) {
		pos++
	}
	return pos
}

// skipSpace returns the offset of the first non-space input at or after pos.
// If comments are enabled, they are skipped like white space.
func (d *decoder[O, A, OB, AB]) skipSpace(pos int) int {
	for pos < d.src.Len() {
		c := d.src.At(pos)
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			pos++
			continue
		case c == '/' && d.comments:
			next := d.skipComment(pos)
			if next == pos {
				return pos
			}
			pos = next
			continue
		case d.strict:
			return pos
		}

		r, n := rune(c), 1
		if c >= utf8.RuneSelf {
			r, n = mem.DecodeRune(d.src.SliceFrom(pos))
		}
		if !unicode.IsSpace(r) {
			return pos
		}
		pos += n
	}
	return pos
}

// skipComment returns the offset just past the comment that begins at pos,
// or pos itself if there is no comment at pos. A line comment includes its
// terminating newline, if present.
// Precondition: the input at pos is "/".
func (d *decoder[O, A, OB, AB]) skipComment(pos int) int {
	switch d.peek(pos + 1) {
	case '/': // line comment to LF
		if i := mem.IndexByte(d.src.SliceFrom(pos+2), '\n'); i >= 0 {
			return pos + 2 + i + 1
		}
		return d.src.Len()
	case '*': // block comment
		if i := mem.Index(d.src.SliceFrom(pos+2), mem.S("*/")); i >= 0 {
			return pos + 2 + i + 2
		}
		d.failf(pos, "unterminated block comment")
	}
	return pos
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// hasExtraLeadingZeroes reports whether the representation of an integer in
// buf has redundant leading zeroes, disallowed by RFC 8259.
//
// OK: 0, 0.1, -1.0, -0.1 are all OK.
// Bad: -01, 01.2, -01.0, 00.1.
func hasExtraLeadingZeroes(buf mem.RO) bool {
	if buf.At(0) == '-' {
		buf = buf.SliceFrom(1) // skip leading sign
	}
	// A leading zero is OK if it's the only digit.
	return buf.At(0) == '0' && buf.Len() > 1
}

func quote(c byte) string { return `"` + string(rune(c)) + `"` }
