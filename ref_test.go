package xtl_test

import (
	"reflect"
	"testing"

	xtl "github.com/reoring/xtl"
)

func TestRef_Basics(t *testing.T) {
	var nilRef xtl.Ref[A]
	if !nilRef.IsNil() || nilRef.Ptr() != nil || nilRef.Dynamic() != nil || nilRef.Complete() != nil {
		t.Fatalf("zero Ref must be nil")
	}
	if nilRef.String() != "Ref[xtl_test.A](nil)" {
		t.Fatalf("unexpected rendering %q", nilRef)
	}
	if !xtl.RefOf[A](nil).IsNil() {
		t.Fatalf("RefOf(nil) must be nil")
	}
	if up := xtl.Up[A](xtl.Ref[B]{}); !up.IsNil() {
		t.Fatalf("Up of nil stays nil")
	}

	z := xtl.New[Z]()
	a := xtl.Up[A](xtl.RefOf(z))
	if a.Dynamic() != reflect.TypeFor[Z]() || a.Complete() != any(z) {
		t.Fatalf("the view must remember the complete Z")
	}
	if got := a.String(); got != "Ref[xtl_test.A](xtl_test.Z -> xtl_test.X -> virtual xtl_test.A)" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestWire(t *testing.T) {
	z := &Z{}
	if err := xtl.Wire(z); err != nil {
		t.Fatal(err)
	}
	if z.X.A == nil || z.X.A != z.Y.A {
		t.Fatalf("Wire must share one A")
	}

	// an instance already present becomes the shared one
	shared := &A{N: 9}
	z = &Z{Y: Y{A: shared}}
	if err := xtl.Wire(z); err != nil {
		t.Fatal(err)
	}
	if z.X.A != shared {
		t.Fatalf("the existing A must be shared")
	}

	z = &Z{X: X{A: &A{}}, Y: Y{A: &A{}}}
	err := xtl.Wire(z)
	if xe, ok := xtl.AsError(err); !ok || xe.Code != xtl.CodeConflictBase {
		t.Fatalf("want conflicting_base, got %v", err)
	}

	// instances are gathered from every path before any is allocated
	type W struct {
		Z
		*A
	}
	w := &W{A: shared}
	if err := xtl.Wire(w); err != nil {
		t.Fatal(err)
	}
	if w.Z.X.A != shared || w.Z.Y.A != shared {
		t.Fatalf("the instance on the last path must be shared by all")
	}
	w = &W{Z: Z{Y: Y{A: &A{}}}, A: shared}
	if err := xtl.Wire(w); err == nil {
		t.Fatalf("two instances of A must conflict")
	}
	if w.Z.X.A != nil {
		t.Fatalf("a conflicting object is left untouched")
	}

	// non-hierarchy values are left alone
	n := 1
	if err := xtl.Wire(&n); err != nil {
		t.Fatal(err)
	}
}

func TestUnwired(t *testing.T) {
	z := &Z{}
	pe := mustPanic(t, func() { xtl.Cast[*A](z) })
	if pe.Code != xtl.CodeUnwiredBase {
		t.Fatalf("want unwired_base, got %v", pe)
	}
	if _, ok := xtl.TryCast[*A](z); ok {
		t.Fatalf("an unwired base is absent")
	}
	a := xtl.Up[A](xtl.RefOf(z))
	if a.Ptr() != nil {
		t.Fatalf("a view into an unwired base has no address")
	}
	// the view becomes usable once the object is wired
	if err := xtl.Wire(z); err != nil {
		t.Fatal(err)
	}
	if a.Ptr() != z.X.A {
		t.Fatalf("the view must follow the wired base")
	}
}
