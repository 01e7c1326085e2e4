// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jlazy_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/creachadair/jlazy"
	"github.com/creachadair/jlazy/internal/testutil"
	"go.uber.org/goleak"
	"go4.org/mem"
	"golang.org/x/sync/errgroup"
)

func TestLazy(t *testing.T) {
	src := mem.S(`[1, 2, 3]`)
	span := jlazy.Span{Pos: 0, End: 9}

	var calls int
	z := jlazy.NewLazy(src, span, func(got mem.RO, s jlazy.Span) (int, error) {
		calls++
		if !got.Equal(src) || s != span {
			t.Errorf("Parse: got %q %v, want %q %v", got.StringCopy(), s, src.StringCopy(), span)
		}
		return s.Len(), nil
	})
	if z.Resolved() {
		t.Error("Resolved before Get")
	}
	if got := z.Span(); got != span {
		t.Errorf("Span: got %v, want %v", got, span)
	}
	for i := 0; i < 3; i++ {
		v, err := z.Get()
		if err != nil || v != 9 {
			t.Errorf("Get %d: got %v, %v; want 9, nil", i+1, v, err)
		}
	}
	if !z.Resolved() {
		t.Error("Not resolved after Get")
	}
	if calls != 1 {
		t.Errorf("Parse called %d times, want 1", calls)
	}
}

func TestLazyError(t *testing.T) {
	errBad := errors.New("bad input")

	var calls int
	z := jlazy.NewLazy(mem.S("{}"), jlazy.Span{Pos: 0, End: 2}, func(mem.RO, jlazy.Span) (string, error) {
		calls++
		return "", errBad
	})
	for i := 0; i < 2; i++ {
		if _, err := z.Get(); err != errBad {
			t.Errorf("Get %d: got error %v, want %v", i+1, err, errBad)
		}
	}
	if calls != 1 {
		t.Errorf("Parse called %d times, want 1", calls)
	}
}

func TestLazyConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	var r testutil.Recorder
	p := r.NewParser()

	var calls atomic.Int32
	counting := func(src mem.RO, span jlazy.Span) (*testutil.Node, error) {
		calls.Add(1)
		return p.ParseObject(src, span)
	}
	z := jlazy.NewLazy(mem.S(`{"a": [1, 2], "b": {"c": true}}`), jlazy.Span{Pos: 0, End: 31}, counting)

	const workers = 16
	results := make([]*testutil.Node, workers)
	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			n, err := z.Get()
			results[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("Parse called %d times, want 1", n)
	}
	for i, n := range results {
		if n != results[0] {
			t.Errorf("Result %d: got %p, want %p", i, n, results[0])
		}
	}

	// Resolving the nested values concurrently also works.
	var h errgroup.Group
	for i := range workers {
		h.Go(func() error {
			_, err := testutil.Force(results[i%len(results)])
			return err
		})
	}
	if err := h.Wait(); err != nil {
		t.Fatalf("Force failed: %v", err)
	}
}
