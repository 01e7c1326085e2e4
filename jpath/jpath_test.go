// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jpath_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/creachadair/jlazy"
	"github.com/creachadair/jlazy/jpath"
	"github.com/creachadair/jlazy/tree"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
	}{
		{"$"},
		{"$.store.book[*]..author"},
		{"$..author"},
		{"$.store.*"},
		{"$.store..price"},
		{"$..book[2]"},
		{"$..book[(@.length-1)]"},
		{"$..book[-1:]"},
		{"$..book[0,1]"},
		{"$..book[:2]"},
		{"$..book[1:-1]"},
		{"$..book[?(@.isbn)]"},
		{"$..book[?(@price<10)]"},
		{"$..book[?(f(@.a) && (@.b))]"},
		{"$..*"},
		{"$['apple sauce'].pearPlum..'cherry apple'"},
		{"$[a][1:3][b]['c d e']"},
		{"$['*'].*"},
	}
	for _, test := range tests {
		e, err := jpath.Parse(test.input)
		if err != nil {
			t.Errorf("Parse %q: %v", test.input, err)
			continue
		}

		want := test.input
		if got := e.String(); got != want {
			t.Errorf("Parse %q:\n got %q\nwant %q", test.input, got, want)
		}
	}
}

func TestParseSteps(t *testing.T) {
	e := jpath.MustParse("$.a..'b c'[*][1,-2][:3][(x)]")
	ops := make([]jpath.Op, len(e))
	for i, s := range e {
		ops[i] = s.Op
	}
	want := []jpath.Op{
		jpath.Child, jpath.Descend, jpath.Member, jpath.Index, jpath.Slice, jpath.Script,
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("Operators (-want, +got):\n%s", diff)
	}
	if !e[1].Quoted || e[1].Name != "b c" {
		t.Errorf("Step 1: got %+v, want quoted name", e[1])
	}
	if !e[2].Wildcard() {
		t.Errorf("Step 2: got %+v, want wildcard", e[2])
	}
	if diff := cmp.Diff([]int{1, -2}, e[3].Indexes); diff != "" {
		t.Errorf("Step 3 indexes (-want, +got):\n%s", diff)
	}
	if e[4].Lo != nil || e[4].Hi == nil || *e[4].Hi != 3 {
		t.Errorf("Step 4: got %v, want [:3]", e[4])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"store",
		"$.",
		"$..",
		"$x",
		"$[",
		"$[1",
		"$[:]",
		"$[1,]",
		"$[(a]",
		"$[?(a)",
		"$['open]",
		"$.a[99999999999999999999999]",
	}
	for _, input := range tests {
		e, err := jpath.Parse(input)
		if err == nil {
			t.Errorf("Parse %q: got %v, want error", input, e)
		} else {
			t.Logf("Parse %q: got expected error: %v", input, err)
		}
	}
}

const storeJSON = `{
  "store": {
    "book": [
      {"category": "reference", "author": "Nigel Rees",
       "title": "Sayings of the Century", "price": 8.95},
      {"category": "fiction", "author": "Evelyn Waugh",
       "title": "Sword of Honour", "price": 12.99},
      {"category": "fiction", "author": "Herman Melville",
       "title": "Moby Dick", "isbn": "0-553-21311-3", "price": 8.99},
      {"category": "fiction", "author": "J. R. R. Tolkien",
       "title": "The Lord of the Rings", "isbn": "0-395-19395-8", "price": 22.99}
    ],
    "bicycle": {"color": "red", "price": 19.95}
  }
}`

func TestEval(t *testing.T) {
	root, err := tree.Parse(storeJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	const authors = `["Nigel Rees", "Evelyn Waugh", "Herman Melville", "J. R. R. Tolkien"]`
	tests := []struct {
		path string
		want string // JSON array of selected values
	}{
		{"$.store.book[*].author", authors},
		{"$..author", authors},
		{"$.store.book..author", authors},
		{"$.store.bicycle.color", `["red"]`},
		{"$.store['bicycle']['color']", `["red"]`},
		{"$.store..price", `[8.95, 12.99, 8.99, 22.99, 19.95]`},
		{"$..isbn", `["0-553-21311-3", "0-395-19395-8"]`},
		{"$..book[2].title", `["Moby Dick"]`},
		{"$..book[-1].title", `["The Lord of the Rings"]`},
		{"$..book[-1:].title", `["The Lord of the Rings"]`},
		{"$..book[0,1].price", `[8.95, 12.99]`},
		{"$..book[3,0].price", `[22.99, 8.95]`},
		{"$..book[:2].price", `[8.95, 12.99]`},
		{"$..book[1:3].title", `["Sword of Honour", "Moby Dick"]`},
		{"$..book[1:-2].title", `["Sword of Honour"]`},
		{"$.store.*.price", `[19.95]`},
		{"$.store.bicycle.*", `["red", 19.95]`},
		{"$.store.bicycle", `[{"color": "red", "price": 19.95}]`},

		// Paths that do not match select nothing.
		{"$.nonesuch", `[]`},
		{"$.store.book[10]", `[]`},
		{"$.store.book[-10]", `[]`},
		{"$.store.book[5:10]", `[]`},
		{"$.store.book.author", `[]`},
		{"$.store.bicycle[0]", `[]`},
		{"$.store.bicycle.color.x", `[]`},
		{"$.store.bicycle.color[*]", `[]`},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, err := jpath.Query(tc.path, root)
			if err != nil {
				t.Fatalf("Query %q: unexpected error: %v", tc.path, err)
			}
			var want []any
			if err := json.Unmarshal([]byte(tc.want), &want); err != nil {
				t.Fatalf("Invalid want: %v", err)
			}
			if diff := cmp.Diff(want, mustMaterialize(t, got), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Query %q (-want, +got):\n%s", tc.path, diff)
			}
		})
	}
}

func TestEvalRecursive(t *testing.T) {
	root, err := tree.Parse(`{"a": [1, {"b": 2}], "c": {"d": [3]}}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, err := jpath.Query("$..*", root)
	if err != nil {
		t.Fatalf("Query: unexpected error: %v", err)
	}
	want := []any{
		[]any{1.0, map[string]any{"b": 2.0}},
		map[string]any{"d": []any{3.0}},
		1.0,
		map[string]any{"b": 2.0},
		2.0,
		[]any{3.0},
		3.0,
	}
	if diff := cmp.Diff(want, mustMaterialize(t, got)); diff != "" {
		t.Errorf("Query (-want, +got):\n%s", diff)
	}
}

func TestEvalLazy(t *testing.T) {
	root, err := tree.Parse(storeJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got, err := jpath.Query("$.store.bicycle", root)
	if err != nil {
		t.Fatalf("Query: unexpected error: %v", err)
	}
	if len(got) != 1 || tree.IsResolved(got[0]) {
		t.Errorf("Query: got %v, want one unresolved value", got)
	}

	if _, err := jpath.Query("$.store.bicycle.color", root); err != nil {
		t.Fatalf("Query: unexpected error: %v", err)
	}
	checkResolved := func(want bool, path ...any) {
		t.Helper()
		v, err := tree.Path(root, path...)
		if err != nil {
			t.Fatalf("Path %v: unexpected error: %v", path, err)
		}
		if got := tree.IsResolved(v); got != want {
			t.Errorf("Path %v resolved: got %v, want %v", path, got, want)
		}
	}
	checkResolved(true, "store", "bicycle")
	checkResolved(false, "store", "book")
}

func TestEvalErrors(t *testing.T) {
	root, err := tree.Parse(`{"ok": [1, 2], "bad": {"x": [1 2]}}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	t.Run("Unsupported", func(t *testing.T) {
		for _, path := range []string{"$.nonesuch[?(@.x)]", "$.ok[(@.length-1)]"} {
			got, err := jpath.Query(path, root)
			if !errors.Is(err, jpath.ErrUnsupported) {
				t.Errorf("Query %q: got %v, %v; want %v", path, got, err, jpath.ErrUnsupported)
			}
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		// Selecting the invalid value does not resolve it.
		if _, err := jpath.Query("$.bad.x", root); err != nil {
			t.Errorf("Query: unexpected error: %v", err)
		}

		got, err := jpath.Query("$.bad.x[0]", root)
		var serr *jlazy.SyntaxError
		if !errors.As(err, &serr) {
			t.Fatalf("Query: got %v, %v; want *SyntaxError", got, err)
		}
		if serr.Offset != 31 {
			t.Errorf("Error offset: got %d, want 31", serr.Offset)
		}
	})

	t.Run("Descend", func(t *testing.T) {
		// Recursive descent visits every nested value, including invalid ones.
		for _, path := range []string{"$..x", "$..*"} {
			got, err := jpath.Query(path, root)
			var serr *jlazy.SyntaxError
			if !errors.As(err, &serr) {
				t.Errorf("Query %q: got %v, %v; want *SyntaxError", path, got, err)
			}
		}
	})
}

func mustMaterialize(t *testing.T, vs []any) []any {
	t.Helper()
	out := make([]any, len(vs))
	for i, v := range vs {
		w, err := tree.Materialize(v)
		if err != nil {
			t.Fatalf("Materialize %v: %v", v, err)
		}
		out[i] = w
	}
	return out
}
