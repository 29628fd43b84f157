package a

import (
	"reflect"

	"github.com/reoring/xtl"
	"github.com/reoring/xtl/variant"
)

type A struct{ N int }
type B struct{ A }
type C struct{ A }
type D struct {
	C
	B
}
type X struct{ *A }
type Y struct{ *A }
type Z struct {
	X
	Y
}

type hidden struct{ A }
type Private struct{ hidden }
type Tagged struct {
	A `xtl:"-"`
}

type Num struct{}

func (Num) Admits(s reflect.Type, _ func(s, t reflect.Type) bool) bool { return true }

type V = variant.V4[float64, float32, int, *uint]

var (
	_ = xtl.MustRelate[*B, *A]()
	_ = xtl.MustRelate[*A, *B]() // want `xtl.MustRelate: \*a.A is not a subtype of \*a.B`
	_ = xtl.MustRelate[Z, A]()
	_ = xtl.MustRelate[D, A]() // want `xtl.MustRelate: a.A is an ambiguous base of a.D`
)

func casts(b B, z *Z, d *D, r xtl.Ref[D]) {
	_ = xtl.Cast[A](b)
	_ = xtl.Cast[*A](z)
	_ = xtl.Cast[*A](d)        // want `xtl.Cast: a.A is an ambiguous base of a.D`
	_ = xtl.Cast[B](A{})       // want `xtl.Cast: a.A is not a subtype of a.B`
	_ = xtl.Cast[A](Private{}) // want `xtl.Cast: a.Private is not a subtype of a.A`
	_ = xtl.Cast[A](Tagged{})  // want `xtl.Cast: a.Tagged is not a subtype of a.A`
	_ = xtl.Cast[xtl.Ref[C]](r)
	_ = xtl.Up[B](r)
	_ = xtl.Up[A](r)            // want `xtl.Up: a.A is an ambiguous base of a.D`
	_ = xtl.Up[X](xtl.Ref[Y]{}) // want `xtl.Up: a.Y is not a subtype of a.X`
}

func sums() {
	_ = xtl.Cast[V](42)
	_ = xtl.Cast[V](new(uint))
	_ = xtl.Cast[V]("x")           // want `xtl.Cast: string is not a subtype of`
	_ = xtl.Cast[variant.Empty](0) // want `xtl.Cast: int is not a subtype of variant.Empty`
	_ = xtl.Cast[variant.V2[*A, int]](&B{})
	_ = xtl.Cast[Num](1.5)
}

func generic[T any](t T) A {
	return xtl.Cast[A](t)
}

func proven(r xtl.Relation[*B, *A], b *B) *A {
	return r.Cast(b)
}

func locals() {
	type M struct{ K int }
	type L struct{ M }
	{
		type M struct{ A }
		type R struct{ M }
		type S struct {
			L
			R
		}
		_ = xtl.Cast[A](S{})
		_ = xtl.Cast[B](S{}) // want `xtl.Cast: a.S is not a subtype of a.B`
	}
}
