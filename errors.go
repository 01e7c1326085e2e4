// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jlazy

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go4.org/mem"
)

// SyntaxError is the concrete type of errors reported by the parser.
type SyntaxError struct {
	Offset   int     // byte offset of the error in the source text
	Location LineCol // line and column corresponding to Offset
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s (offset %d): %s", s.Location, s.Offset, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }

func newSyntaxError(src mem.RO, pos int, err error, msg string, args ...any) *SyntaxError {
	return &SyntaxError{
		Offset:   pos,
		Location: Locate(src, pos),
		Message:  fmt.Sprintf(msg, args...),
		err:      err,
	}
}

// label makes a human-readable summary of the alternatives in want and the
// input found at offset pos of src.
func label(src mem.RO, pos int, want ...string) string {
	var exp string
	if len(want) == 1 {
		exp = want[0]
	} else {
		last := len(want) - 1
		exp = strings.Join(want[:last], ", ") + " or " + want[last]
	}
	return fmt.Sprintf("expected %s, got %s", exp, describe(src, pos))
}

// describe renders the input character at offset pos of src for an error
// message.
func describe(src mem.RO, pos int) string {
	if pos >= src.Len() {
		return "end of input"
	}
	r, _ := mem.DecodeRune(src.SliceFrom(pos))
	if r == utf8.RuneError {
		return fmt.Sprintf("byte %#02x", src.At(pos))
	}
	return fmt.Sprintf("%q", string(r))
}
