// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jlazy

import (
	"errors"

	"github.com/creachadair/jlazy/internal/escape"
	"go4.org/mem"
)

// Quote encodes s as a JSON string value. The contents are escaped and double
// quotation marks are added.
func Quote(s string) string { return string(escape.AppendQuote(nil, mem.S(s))) }

// Unquote decodes the JSON string value in text. The enclosing double
// quotation marks are removed, and escape sequences are replaced with their
// unescaped equivalents. An invalid string is reported as a *SyntaxError
// with an offset relative to the start of text.
func Unquote(text string) (string, error) {
	src := mem.S(text)
	if n := len(text); n < 2 || text[0] != '"' || text[n-1] != '"' {
		return "", newSyntaxError(src, 0, nil, "missing quotation marks")
	}
	dec, err := escape.Unquote(src.Slice(1, src.Len()-1))
	if err != nil {
		var eerr *escape.Error
		if errors.As(err, &eerr) {
			return "", newSyntaxError(src, eerr.Offset+1, err, "%s", eerr.Message)
		}
		return "", newSyntaxError(src, 0, err, "%v", err)
	}
	return string(dec), nil
}
