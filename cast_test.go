package xtl_test

import (
	"errors"
	"strings"
	"testing"

	xtl "github.com/reoring/xtl"
	"github.com/reoring/xtl/variant"
)

var asBaseOfB = xtl.MustRelate[*B, *A]()

// mustPanic runs f and returns the *xtl.Error it panicked with.
func mustPanic(t *testing.T, f func()) *xtl.Error {
	t.Helper()
	var got any
	func() {
		defer func() { got = recover() }()
		f()
	}()
	if got == nil {
		t.Fatalf("expected a panic")
	}
	err, ok := got.(error)
	if !ok {
		t.Fatalf("panic value is not an error: %v", got)
	}
	xe, ok := xtl.AsError(err)
	if !ok {
		t.Fatalf("panic value is not an *xtl.Error: %v", err)
	}
	return xe
}

func TestCast_Hierarchy(t *testing.T) {
	b := &B{A: A{N: 7}, Bv: 1}
	if a := xtl.Cast[*A](b); a != &b.A {
		t.Fatalf("*B -> *A must address the embedded A")
	}
	if a := xtl.Cast[A](*b); a.N != 7 {
		t.Fatalf("B -> A copies the base part, got %+v", a)
	}
	if a := xtl.Cast[*A]((*B)(nil)); a != nil {
		t.Fatalf("nil stays nil")
	}
	if a := asBaseOfB.Cast(b); a != &b.A {
		t.Fatalf("compiled relation must address the embedded A")
	}
	var zero xtl.Relation[*B, *A]
	if a := zero.Cast(b); a != &b.A {
		t.Fatalf("zero relation falls back to Cast")
	}
	if asBaseOfB.String() != "*xtl_test.B <: *xtl_test.A" {
		t.Fatalf("unexpected relation rendering %q", asBaseOfB)
	}

	d := &D{}
	if c := xtl.Cast[*C](d); c != &d.C {
		t.Fatalf("*D -> *C")
	}
	if bb := xtl.Cast[*B](d); bb != &d.B {
		t.Fatalf("*D -> *B must adjust to the second base")
	}
}

func TestCast_VirtualBase(t *testing.T) {
	z := xtl.New[Z]()
	if z.X.A == nil || z.X.A != z.Y.A {
		t.Fatalf("New must share one A between X and Y")
	}
	if a := xtl.Cast[*A](z); a != z.X.A {
		t.Fatalf("*Z -> *A must reach the shared A")
	}
	if a := xtl.Cast[*A](&z.Y); a != z.X.A {
		t.Fatalf("*Y -> *A must reach the shared A")
	}
}

func TestRelate_Ambiguous(t *testing.T) {
	_, err := xtl.Relate[*D, *A]()
	xe, ok := xtl.AsError(err)
	if !ok || xe.Code != xtl.CodeAmbiguousBase {
		t.Fatalf("want ambiguous_base, got %v", err)
	}
	if len(xe.Paths) != 2 {
		t.Fatalf("want both routes, got %v", xe.Paths)
	}
	if !strings.Contains(xe.Paths[0], "xtl_test.C") || !strings.Contains(xe.Paths[1], "xtl_test.B") {
		t.Fatalf("routes should go through C then B: %v", xe.Paths)
	}
	pe := mustPanic(t, func() { xtl.Cast[A](D{}) })
	if pe.Code != xtl.CodeAmbiguousBase {
		t.Fatalf("Cast must panic with ambiguous_base, got %v", pe)
	}
	// a virtual base is never ambiguous
	if _, err := xtl.Relate[*Z, *A](); err != nil {
		t.Fatalf("Z -> A: %v", err)
	}
}

func TestRelate_NotSubtype(t *testing.T) {
	_, err := xtl.Relate[A, B]()
	var xe *xtl.Error
	if !errors.As(err, &xe) || xe.Code != xtl.CodeNotSubtype {
		t.Fatalf("want not_subtype, got %v", err)
	}
	if err.Error() != "xtl: xtl_test.A is not a subtype of xtl_test.B" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	pe := mustPanic(t, func() { xtl.MustRelate[*A, *B]() })
	if pe.Code != xtl.CodeNotSubtype {
		t.Fatalf("MustRelate must panic with not_subtype, got %v", pe)
	}
	pe = mustPanic(t, func() { xtl.Cast[variant.Empty](1) })
	if pe.Code != xtl.CodeNotSubtype {
		t.Fatalf("nothing converts to the empty sum, got %v", pe)
	}
}

func TestCast_Sum(t *testing.T) {
	v1 := xtl.Cast[V](3.1415)
	if v1.Which() != 0 || v1.String() != "(0,3.1415)" {
		t.Fatalf("double goes to alternative 0, got %s", v1)
	}
	v2 := xtl.Cast[V](42)
	if v2.Which() != 2 || v2.String() != "(2,42)" {
		t.Fatalf("int goes to alternative 2, got %s", v2)
	}
	u := uint(5)
	if v3 := xtl.Cast[V](&u); v3.Which() != 3 || *variant.Get[*uint](&v3, 3) != &u {
		t.Fatalf("*uint goes to alternative 3, got %s", v3)
	}
}

func TestCast_SumConvertsToTheMatchedAlternative(t *testing.T) {
	// *B converts to *A before it is stored: the sum never holds a *B
	b := &B{}
	s := xtl.Cast[variant.V2[string, *A]](b)
	if p := variant.Get[*A](&s, 1); p == nil || *p != &b.A {
		t.Fatalf("want the adjusted *A in alternative 1, got %s", s)
	}
	// the first admitting alternative wins even if a later one is exact
	z := xtl.New[Z]()
	w := xtl.Cast[variant.V2[*X, *Z]](z)
	if w.Which() != 0 || *variant.Get[*X](&w, 0) != &z.X {
		t.Fatalf("want *X in alternative 0, got %s", w)
	}
}

func TestCast_NestedSum(t *testing.T) {
	type Inner = variant.V2[float64, int]
	type Outer = variant.V2[string, Inner]
	o := xtl.Cast[Outer](42)
	if o.Which() != 1 {
		t.Fatalf("int reaches Outer through Inner, got %s", o)
	}
	in := variant.Get[Inner](&o, 1)
	if in == nil || in.Which() != 1 || *variant.Get[int](in, 1) != 42 {
		t.Fatalf("unexpected inner value %v", in)
	}
}

func TestCast_Custom(t *testing.T) {
	if n := xtl.Cast[Number](3); n.F != 3 {
		t.Fatalf("Number built through Inject, got %+v", n)
	}
	_, err := xtl.Relate[int, Opaque]()
	if xe, ok := xtl.AsError(err); !ok || xe.Code != xtl.CodeNotInjectable {
		t.Fatalf("want not_injectable, got %v", err)
	}
	s := xtl.Cast[variant.V2[string, Number]](int8(-2))
	if n := variant.Get[Number](&s, 1); n == nil || n.F != -2 {
		t.Fatalf("custom alternative inside a sum, got %s", s)
	}
}
