// Package testutil defines support code for unit tests.
package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/creachadair/jlazy"
	"go4.org/mem"
)

// A Recorder is a jlazy.Builder that records a line of text for each builder
// event it receives. Objects and arrays are represented as *Node values.
// Numbers are represented as Num values, recording their classification.
type Recorder struct {
	mu  sync.Mutex
	buf strings.Builder
}

// A Num is a number reported to a Recorder.
type Num struct {
	Text  string
	Float bool // classified as floating-point
}

func (n Num) String() string {
	if n.Float {
		return "float " + n.Text
	}
	return "int " + n.Text
}

// A Node is an object or array constructed by a Recorder.
type Node struct {
	Object bool
	Keys   []string // object keys, parallel to Values
	Values []any

	lazy *jlazy.Lazy[*Node]
}

// IsLazy reports whether n is a deferred node.
func (n *Node) IsLazy() bool { return n.lazy != nil }

// Lazy returns the deferred handle for n, or nil if n is not deferred.
func (n *Node) Lazy() *jlazy.Lazy[*Node] { return n.lazy }

// Get returns the resolved contents of n.
func (n *Node) Get() (*Node, error) {
	if n.lazy == nil {
		return n, nil
	}
	return n.lazy.Get()
}

func (n *Node) String() string {
	kind := "array"
	if n.Object {
		kind = "object"
	}
	if n.lazy != nil {
		return fmt.Sprintf("lazy %s %v", kind, n.lazy.Span())
	}
	return fmt.Sprintf("%s(%d)", kind, len(n.Values))
}

// Force resolves v and every node nested inside it, and returns an
// equivalent value built from plain Go types: map[string]any, []any, Num,
// string, bool, and nil.
func Force(v any) (any, error) {
	n, ok := v.(*Node)
	if !ok {
		return v, nil
	}
	n, err := n.Get()
	if err != nil {
		return nil, err
	}
	if n.Object {
		out := make(map[string]any, len(n.Keys))
		for i, key := range n.Keys {
			w, err := Force(n.Values[i])
			if err != nil {
				return nil, err
			}
			out[key] = w
		}
		return out, nil
	}
	out := make([]any, len(n.Values))
	for i, elt := range n.Values {
		w, err := Force(elt)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func (r *Recorder) pr(msg string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(&r.buf, msg, args...)
	r.buf.WriteByte('\n')
}

// Output returns the events recorded so far, one per line, and resets the
// recorder.
func (r *Recorder) Output() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.buf.String()
	r.buf.Reset()
	return out
}

func show(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", t)
	default:
		return fmt.Sprint(t)
	}
}

func (r *Recorder) StartObject() *Node { r.pr("StartObject"); return &Node{Object: true} }

func (r *Recorder) AddField(n *Node, key string, value any) *Node {
	r.pr("AddField %q %s", key, show(value))
	n.Keys = append(n.Keys, key)
	n.Values = append(n.Values, value)
	return n
}

func (r *Recorder) EndObject(n *Node) *Node { r.pr("EndObject"); return n }

func (r *Recorder) LazyObject(src mem.RO, span jlazy.Span, parse jlazy.ParseFunc[*Node]) *Node {
	r.pr("LazyObject %v", span)
	return &Node{Object: true, lazy: jlazy.NewLazy(src, span, parse)}
}

func (r *Recorder) StartArray() *Node { r.pr("StartArray"); return &Node{} }

func (r *Recorder) AddElement(n *Node, value any) *Node {
	r.pr("AddElement %s", show(value))
	n.Values = append(n.Values, value)
	return n
}

func (r *Recorder) EndArray(n *Node) *Node { r.pr("EndArray"); return n }

func (r *Recorder) LazyArray(src mem.RO, span jlazy.Span, parse jlazy.ParseFunc[*Node]) *Node {
	r.pr("LazyArray %v", span)
	return &Node{lazy: jlazy.NewLazy(src, span, parse)}
}

func (r *Recorder) Integer(text mem.RO) (any, error) { return Num{Text: text.StringCopy()}, nil }

func (r *Recorder) Float(text mem.RO) (any, error) {
	return Num{Text: text.StringCopy(), Float: true}, nil
}

// NewParser returns a parser that delivers events to r.
func (r *Recorder) NewParser() *jlazy.Parser[*Node, *Node, *Node, *Node] {
	return jlazy.NewParser[*Node, *Node, *Node, *Node](r)
}
