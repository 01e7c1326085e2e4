// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package jpath implements a minimal JSONPath expression parser, and an
// evaluator for expressions over values from the tree package.
//
// Evaluation resolves only the lazy objects and arrays that a query steps
// into. Values selected by the last step of a query are returned as they are,
// and are not resolved.
package jpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/creachadair/jlazy/tree"
)

/*
Grammar:

  expr = root steps
  root = "$"
 steps = step [steps]
  step = "." name
  step = ".." name
  step = "[" value "]"
  name = WORD
  name = "'" QTEXT "'"
  name = "*"
 value = name
 value = INDEX ["," INDEX ...]
 value = slice
 value = script
 value = filter
 slice = [INDEX] ":" [INDEX]
script = "(" TEXT ")"
filter = "?(" TEXT ")"

  WORD = RE `\w+`
 QTEXT = RE `[^']*`
 INDEX = RE `-?\d+`
  TEXT = { all text with nested parentheses }

A slice must have at least one bound.

Source:
  https://www.ietf.org/archive/id/draft-goessner-dispatch-jsonpath-00.html
*/

// An Expr is a parsed JSONPath expression.
type Expr []Step

// Parse parses s as a JSONPath expression.
func Parse(s string) (Expr, error) {
	p := &parser{src: s}
	if !p.cut("$") {
		return nil, p.errorf("missing root marker")
	}
	var e Expr
	for p.pos < len(p.src) {
		step, err := p.parseStep()
		if err != nil {
			return nil, err
		}
		e = append(e, step)
	}
	return e, nil
}

// MustParse is as Parse, but panics if s is not a valid expression.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("jpath.MustParse %q: %v", s, err))
	}
	return e
}

func (e Expr) String() string {
	var buf strings.Builder
	buf.WriteString("$")
	for _, s := range e {
		buf.WriteString(s.String())
	}
	return buf.String()
}

// An Op is a path operator.
type Op byte

const (
	Invalid Op = iota // invalid operator
	Child             // member lookup (.name)
	Descend           // recursive member lookup (..name)
	Member            // bracketed member lookup ([name])
	Index             // array index lookup ([i,j])
	Slice             // array slice ([lo:hi])
	Script            // script expression ([(...)])
	Filter            // filter expression ([?(...)])
)

var opText = [...]string{
	Invalid: "invalid",
	Child:   ".",
	Descend: "..",
	Member:  "member",
	Index:   "index",
	Slice:   "slice",
	Script:  "(...)",
	Filter:  "?(...)",
}

func (o Op) String() string {
	if int(o) < len(opText) {
		return opText[o]
	}
	return opText[Invalid]
}

// A Step is a single step of a JSONPath expression.
type Step struct {
	Op Op

	// Name is the member name for Child, Descend, and Member.
	Name   string
	Quoted bool // Name was written in quotes

	// Indexes are the offsets selected by Index. Negative offsets count
	// backward from the end of the array.
	Indexes []int

	// Lo and Hi are the bounds of a Slice, or nil if omitted.
	Lo, Hi *int

	// Text is the expression text of a Script or Filter.
	Text string
}

// Wildcard reports whether s selects all the members of its input.
func (s Step) Wildcard() bool {
	switch s.Op {
	case Child, Descend, Member:
		return s.Name == "*" && !s.Quoted
	}
	return false
}

func (s Step) String() string {
	switch s.Op {
	case Child:
		return "." + s.name()
	case Descend:
		return ".." + s.name()
	case Member:
		return "[" + s.name() + "]"
	case Index:
		parts := make([]string, len(s.Indexes))
		for i, v := range s.Indexes {
			parts[i] = strconv.Itoa(v)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case Slice:
		var lo, hi string
		if s.Lo != nil {
			lo = strconv.Itoa(*s.Lo)
		}
		if s.Hi != nil {
			hi = strconv.Itoa(*s.Hi)
		}
		return "[" + lo + ":" + hi + "]"
	case Script:
		return "[(" + s.Text + ")]"
	case Filter:
		return "[?(" + s.Text + ")]"
	}
	return "[" + s.Op.String() + "]"
}

func (s Step) name() string {
	if s.Quoted {
		return "'" + s.Name + "'"
	}
	return s.Name
}

type parser struct {
	src string
	pos int
}

func (p *parser) rest() string { return p.src[p.pos:] }

func (p *parser) cut(prefix string) bool {
	if strings.HasPrefix(p.rest(), prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func (p *parser) match(re *regexp.Regexp) []string {
	m := re.FindStringSubmatch(p.rest())
	if m != nil {
		p.pos += len(m[0])
	}
	return m
}

func (p *parser) errorf(msg string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(msg, args...))
}

func (p *parser) parseStep() (Step, error) {
	switch {
	case p.cut(".."):
		name, quoted, err := p.parseName()
		if err != nil {
			return Step{}, fmt.Errorf("invalid ..name: %w", err)
		}
		return Step{Op: Descend, Name: name, Quoted: quoted}, nil

	case p.cut("."):
		name, quoted, err := p.parseName()
		if err != nil {
			return Step{}, fmt.Errorf("invalid .name: %w", err)
		}
		return Step{Op: Child, Name: name, Quoted: quoted}, nil

	case p.cut("["):
		step, err := p.parseValue()
		if err != nil {
			return Step{}, err
		}
		if !p.cut("]") {
			return Step{}, p.errorf("missing close bracket")
		}
		return step, nil
	}
	return Step{}, p.errorf("invalid path step")
}

func (p *parser) parseName() (name string, quoted bool, _ error) {
	if p.cut("*") {
		return "*", false, nil
	}
	if m := p.match(wordRE); m != nil {
		return m[1], false, nil
	}
	if m := p.match(quoteRE); m != nil {
		return m[1], true, nil
	}
	return "", false, p.errorf("invalid name")
}

func (p *parser) parseIndex() (*int, error) {
	m := p.match(indexRE)
	if m == nil {
		return nil, nil
	}
	v, err := strconv.Atoi(m[0])
	if err != nil {
		return nil, p.errorf("invalid index %q", m[0])
	}
	return &v, nil
}

func (p *parser) parseValue() (Step, error) {
	if p.cut("?(") {
		text, err := p.parseScript()
		return Step{Op: Filter, Text: text}, err
	}
	if p.cut("(") {
		text, err := p.parseScript()
		return Step{Op: Script, Text: text}, err
	}

	lo, err := p.parseIndex()
	if err != nil {
		return Step{}, err
	}
	if p.cut(":") {
		hi, err := p.parseIndex()
		if err != nil {
			return Step{}, err
		} else if lo == nil && hi == nil {
			return Step{}, p.errorf("invalid slice")
		}
		return Step{Op: Slice, Lo: lo, Hi: hi}, nil
	}
	if lo != nil {
		idx := []int{*lo}
		for p.cut(",") {
			next, err := p.parseIndex()
			if err != nil {
				return Step{}, err
			} else if next == nil {
				return Step{}, p.errorf("invalid index list")
			}
			idx = append(idx, *next)
		}
		return Step{Op: Index, Indexes: idx}, nil
	}

	name, quoted, err := p.parseName()
	if err != nil {
		return Step{}, fmt.Errorf("invalid value: %w", err)
	}
	return Step{Op: Member, Name: name, Quoted: quoted}, nil
}

func (p *parser) parseScript() (string, error) {
	s := p.rest()
	i, np := 0, 1
	for i < len(s) {
		if s[i] == ')' {
			np--
			if np == 0 {
				break
			}
		} else if s[i] == '(' {
			np++
		}
		i++
	}
	if np > 0 {
		return "", p.errorf("unbalanced parentheses")
	}
	p.pos += i + 1
	return s[:i], nil
}

var (
	wordRE  = regexp.MustCompile(`^(\w+)`)
	indexRE = regexp.MustCompile(`^-?\d+`)
	quoteRE = regexp.MustCompile(`^'([^']*)'`)
)

// ErrUnsupported is reported by Eval for script and filter steps.
var ErrUnsupported = errors.New("unsupported expression")

// Eval evaluates e starting from root, and returns the values it selects in
// order. A member or index that does not exist selects nothing. Eval reports
// an error if e contains a script or filter step, or if a lazy value it steps
// into is not valid.
func Eval(e Expr, root any) ([]any, error) {
	for _, s := range e {
		if s.Op == Script || s.Op == Filter {
			return nil, fmt.Errorf("step %v: %w", s, ErrUnsupported)
		}
	}
	cur := []any{root}
	for _, s := range e {
		var next []any
		for _, v := range cur {
			var err error
			next, err = s.eval(v, next)
			if err != nil {
				return nil, fmt.Errorf("step %v: %w", s, err)
			}
		}
		cur = next
	}
	return cur, nil
}

// Query parses path and evaluates it starting from root.
func Query(path string, root any) ([]any, error) {
	e, err := Parse(path)
	if err != nil {
		return nil, err
	}
	return Eval(e, root)
}

// eval appends the values selected by s from v to out.
func (s Step) eval(v any, out []any) ([]any, error) {
	switch s.Op {
	case Child, Member:
		return s.selectName(v, out)

	case Descend:
		return s.descend(v, out)

	case Index:
		_, arr, err := resolve(v)
		if err != nil || arr == nil {
			return out, err
		}
		n := arr.Len()
		for _, i := range s.Indexes {
			if i < 0 {
				i += n
			}
			if i >= 0 && i < n {
				out = append(out, arr.At(i))
			}
		}
		return out, nil

	case Slice:
		_, arr, err := resolve(v)
		if err != nil || arr == nil {
			return out, err
		}
		n := arr.Len()
		lo, hi := 0, n
		if s.Lo != nil {
			lo = clamp(*s.Lo, n)
		}
		if s.Hi != nil {
			hi = clamp(*s.Hi, n)
		}
		for i := lo; i < hi; i++ {
			out = append(out, arr.At(i))
		}
		return out, nil
	}
	return out, fmt.Errorf("invalid operator %v", s.Op)
}

func (s Step) selectName(v any, out []any) ([]any, error) {
	obj, arr, err := resolve(v)
	if err != nil {
		return out, err
	}
	switch {
	case obj != nil && s.Wildcard():
		for _, elt := range obj.All() {
			out = append(out, elt)
		}
	case obj != nil:
		if elt, ok := obj.Get(s.Name); ok {
			out = append(out, elt)
		}
	case arr != nil && s.Wildcard():
		for _, elt := range arr.All() {
			out = append(out, elt)
		}
	}
	return out, nil
}

// descend applies s to v and to each of the values nested inside v.
func (s Step) descend(v any, out []any) ([]any, error) {
	out, err := s.selectName(v, out)
	if err != nil {
		return out, err
	}
	switch t := v.(type) {
	case tree.Object:
		for _, elt := range t.All() {
			if out, err = s.descend(elt, out); err != nil {
				return out, err
			}
		}
	case tree.Array:
		for _, elt := range t.All() {
			if out, err = s.descend(elt, out); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

// resolve returns v as an object or an array, resolving it if it is lazy.
// If v is neither, both results are nil.
func resolve(v any) (tree.Object, tree.Array, error) {
	switch t := v.(type) {
	case tree.Object:
		return t, nil, t.Resolve()
	case tree.Array:
		return nil, t, t.Resolve()
	}
	return nil, nil, nil
}

func clamp(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}
