// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles unquoting of JSON strings.
package escape

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Error is the concrete type of errors reported by Unquote.
type Error struct {
	Offset  int // offset of the offending escape sequence in the input
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s (offset %d)", e.Message, e.Offset) }

func errorf(offset int, msg string, args ...any) *Error {
	return &Error{Offset: offset, Message: fmt.Sprintf(msg, args...)}
}

// Unquote decodes a byte slice containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. A \u escape
// for half of a UTF-16 surrogate pair is combined with an immediately
// following escape for the other half; an unpaired surrogate is replaced by
// the Unicode replacement rune. Unquote reports an *Error for an unknown or
// incomplete escape sequence.
func Unquote(src mem.RO) ([]byte, error) {
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(make([]byte, 0, src.Len()), src), nil
	}

	dec := make([]byte, 0, src.Len())
	putRune := func(r rune) { dec = utf8.AppendRune(dec, r) }

	var pos int // offset of src in the original input
	for {
		dec = mem.Append(dec, src.SliceTo(i))
		esc := pos + i // offset of the backslash

		src = src.SliceFrom(i + 1)
		pos = esc + 1
		if src.Len() == 0 {
			return nil, errorf(esc, "incomplete escape sequence")
		}
		c := src.At(0)
		src, pos = src.SliceFrom(1), pos+1
		switch c {
		case '"', '\\', '/':
			dec = append(dec, c)
		case 'b':
			dec = append(dec, '\b')
		case 'f':
			dec = append(dec, '\f')
		case 'n':
			dec = append(dec, '\n')
		case 'r':
			dec = append(dec, '\r')
		case 't':
			dec = append(dec, '\t')
		case 'u':
			r, err := parseHex4(src, esc)
			if err != nil {
				return nil, err
			}
			src, pos = src.SliceFrom(4), pos+4

			if utf16.IsSurrogate(r) {
				// Look for the second half of a surrogate pair.
				if lo, ok := lowSurrogate(src); ok {
					if v := utf16.DecodeRune(r, lo); v != utf8.RuneError {
						r = v
						src, pos = src.SliceFrom(6), pos+6
					}
				}
				if utf16.IsSurrogate(r) {
					r = utf8.RuneError
				}
			}
			putRune(r)
		default:
			return nil, errorf(esc, "illegal escape character %q", escapedRune(c, src))
		}

		// Look for the next escape sequence, and if one is not found we can blit
		// the rest of the input and go home.
		i = mem.IndexByte(src, '\\')
		if i < 0 {
			return mem.Append(dec, src), nil
		}
	}
}

// escapedRune returns the rune following a backslash, whose first byte is c
// and whose remaining bytes (if any) begin rest.
func escapedRune(c byte, rest mem.RO) string {
	if c < utf8.RuneSelf {
		return string(rune(c))
	}
	buf := append([]byte{c}, mem.Append(nil, rest.SliceTo(min(rest.Len(), utf8.UTFMax-1)))...)
	r, _ := utf8.DecodeRune(buf)
	return string(r)
}

// lowSurrogate reports whether src begins with a \u escape, and if so returns
// the code unit it denotes.
func lowSurrogate(src mem.RO) (rune, bool) {
	if src.Len() < 6 || src.At(0) != '\\' || src.At(1) != 'u' {
		return 0, false
	}
	r, err := parseHex4(src.SliceFrom(2), 0)
	return r, err == nil
}

// parseHex4 decodes the four hexadecimal digits at the front of src. The
// offset of the escape sequence being decoded is used to report errors.
func parseHex4(src mem.RO, esc int) (rune, error) {
	if src.Len() < 4 {
		return 0, errorf(esc, "incomplete Unicode escape")
	}
	var v rune
	for i := 0; i < 4; i++ {
		b := src.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += rune(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += rune(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += rune(b - 'A' + 10)
		} else {
			return 0, errorf(esc, "invalid hex digit %q in Unicode escape", b)
		}
	}
	return v, nil
}
