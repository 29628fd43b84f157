// Package xtl provides one subtype relation and one pair of casts for the two
// kinds of "is-a" a Go program meets:
//
// - Struct embedding as inheritance: an exported embedded struct is a base, an
//   exported embedded pointer to a struct is a virtual base shared by every
//   path of the complete object (see New and Wire).
// - Closed sum types: any type whose pointer implements Storage, such as the
//   generic containers of package variant.
//
// Operations:
//
// - IsSubtype[S, T]() reports whether every S can be viewed as a T.
// - Cast[T](s) performs the view when it is provable: a base copy, an adjusted
//   pointer, a narrowed Ref, or a sum holding s in the matching alternative.
//   Unprovable casts are reported by the castcheck analyzer and by
//   MustRelate at initialization.
// - TryCast[T](src) recovers a more specific T from a Ref or a sum at run time
//   and reports absence with false.
//
// Design policy:
// - Keep only public APIs in the root package; put the shared algorithms under
//   internal/lattice.
// - No package state: every operation is a pure function of its arguments and
//   is safe for concurrent use on distinct values, and on shared values as far
//   as the values themselves allow concurrent reads.
//
// Typical usage:
//
//	type Animal struct{ Name string }
//	type Dog struct{ Animal }
//
//	d := xtl.New[Dog]()
//	a := xtl.Up[Animal](xtl.RefOf(d))
//	if back, ok := xtl.Down[Dog](a); ok {
//		back.Ptr().Name = "rex"
//	}
//
//	type Shape = variant.V2[float64, int]
//	s := xtl.Cast[Shape](42)
//	if p, ok := xtl.TryCast[*int](&s); ok {
//		*p++
//	}
package xtl
