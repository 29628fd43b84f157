package xtl_test

import (
	"reflect"
	"testing"

	xtl "github.com/reoring/xtl"
	"github.com/reoring/xtl/variant"
)

func TestIsSubtype_Reflexive(t *testing.T) {
	if !xtl.IsSubtype[int, int]() || !xtl.IsSubtype[A, A]() || !xtl.IsSubtype[*A, *A]() {
		t.Fatalf("reflexivity broken")
	}
	if !xtl.IsSubtype[V, V]() || !xtl.IsSubtype[xtl.Ref[D], xtl.Ref[D]]() {
		t.Fatalf("reflexivity broken for sums and views")
	}
	// reflexivity wins over the empty-sum rule
	if !xtl.IsSubtype[variant.Empty, variant.Empty]() {
		t.Fatalf("Empty <: Empty expected")
	}
}

func TestIsSubtype_Hierarchy(t *testing.T) {
	cases := []struct {
		name string
		got  bool
		want bool
	}{
		{"B <: A", xtl.IsSubtype[B, A](), true},
		{"D <: B", xtl.IsSubtype[D, B](), true},
		{"D <: A (ambiguous)", xtl.IsSubtype[D, A](), true},
		{"Z <: A (virtual)", xtl.IsSubtype[Z, A](), true},
		{"A <: B", xtl.IsSubtype[A, B](), false},
		{"X <: Y", xtl.IsSubtype[X, Y](), false},
		{"*D <: *A", xtl.IsSubtype[*D, *A](), true},
		{"*A <: *D", xtl.IsSubtype[*A, *D](), false},
		{"*B <: A", xtl.IsSubtype[*B, A](), false},
		{"Ref[Z] <: Ref[Y]", xtl.IsSubtype[xtl.Ref[Z], xtl.Ref[Y]](), true},
		{"Ref[A] <: Ref[Z]", xtl.IsSubtype[xtl.Ref[A], xtl.Ref[Z]](), false},
		{"*Z <: Ref[A]", xtl.IsSubtype[*Z, xtl.Ref[A]](), false},
		{"Tagged <: A", xtl.IsSubtype[Tagged, A](), false},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Fatalf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestIsSubtype_Sum(t *testing.T) {
	if !xtl.IsSubtype[int, V]() {
		t.Fatalf("int is a member of V")
	}
	if !xtl.IsSubtype[*uint, V]() {
		t.Fatalf("*uint is a member of V")
	}
	if xtl.IsSubtype[byte, V]() {
		t.Fatalf("byte is not a member of V")
	}
	if !xtl.IsSubtype[*Z, variant.V2[string, *A]]() {
		t.Fatalf("*Z reaches *A through the hierarchy")
	}
	if !xtl.IsSubtype[int, variant.V2[string, variant.V2[float64, int]]]() {
		t.Fatalf("membership must recurse into nested sums")
	}
	for _, typ := range []reflect.Type{reflect.TypeFor[int](), reflect.TypeFor[A](), reflect.TypeFor[V]()} {
		if xtl.IsSubtypeOf(typ, reflect.TypeFor[variant.Empty]()) {
			t.Fatalf("%s must not be a subtype of the empty sum", typ)
		}
	}
}

func TestIsSubtype_Custom(t *testing.T) {
	if !xtl.IsSubtype[int, Number]() || !xtl.IsSubtype[float32, Number]() {
		t.Fatalf("Number admits numbers")
	}
	if xtl.IsSubtype[string, Number]() {
		t.Fatalf("Number rejects strings")
	}
	if !xtl.IsSubtype[int8, variant.V2[string, Number]]() {
		t.Fatalf("custom targets take part in sums")
	}
}

func TestCategory(t *testing.T) {
	cases := []struct {
		got, want xtl.Category
	}{
		{xtl.Target[int]{}.Category(), xtl.Identity},
		{xtl.Target[error]{}.Category(), xtl.Identity},
		{xtl.Target[A]{}.Category(), xtl.Hierarchy},
		{xtl.Target[*A]{}.Category(), xtl.Pointer},
		{xtl.Target[*int]{}.Category(), xtl.Identity},
		{xtl.Target[xtl.Ref[A]]{}.Category(), xtl.View},
		{xtl.Target[V]{}.Category(), xtl.SumType},
		{xtl.Target[variant.Empty]{}.Category(), xtl.SumType},
		{xtl.Target[Number]{}.Category(), xtl.Custom},
	}
	for i, c := range cases {
		if c.got != c.want {
			t.Fatalf("case %d: got %s, want %s", i, c.got, c.want)
		}
	}
	if xtl.CategoryOf(reflect.TypeFor[Z]()) != xtl.Hierarchy {
		t.Fatalf("Z is a hierarchy member")
	}
}

func TestIsSubtype_SameNamedLocalTypes(t *testing.T) {
	type M struct{ K int }
	type L struct{ M }
	{
		type M struct{ A }
		type R struct{ M }
		type S struct {
			L
			R
		}
		if !xtl.IsSubtype[R, A]() {
			t.Fatalf("R reaches A through its own M")
		}
		if !xtl.IsSubtype[S, A]() {
			t.Fatalf("S reaches A through R although L embeds a different M")
		}
		if got := xtl.Cast[A](S{R: R{M: M{A: A{N: 3}}}}); got.N != 3 {
			t.Fatalf("cast took the wrong M: %+v", got)
		}
	}
}
