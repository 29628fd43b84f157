// Package variant provides generic tagged unions that satisfy xtl.Storage.
//
// Vn holds at most one of its n alternative types. The zero value holds none
// (Which returns -1). Values are normally built with xtl.Cast, which picks the
// alternative, and read with xtl.TryCast or Get.
//
// Alternatives are distinguished by position, so V2[int, int] is legal and
// its two alternatives are distinct.
package variant

import (
	"fmt"
	"reflect"
)

// Empty is the sum type without alternatives. Nothing but Empty itself is a
// subtype of it, and it can never hold a value.
type Empty struct{}

func (Empty) Alternatives() []reflect.Type { return nil }
func (Empty) Which() int                   { return -1 }
func (*Empty) Alt(int) any                 { return nil }
func (*Empty) Emplace(i int, _ any)        { panic(badIndex(i, 0)) }
func (Empty) String() string               { return "()" }

// V1 is a sum of one alternative.
type V1[A any] struct {
	which int
	a     A
}

func (V1[A]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[A]()}
}

func (v V1[A]) Which() int { return v.which - 1 }

func (v *V1[A]) Alt(i int) any {
	if i != 0 || v.Which() != 0 {
		return nil
	}
	return &v.a
}

func (v *V1[A]) Emplace(i int, x any) {
	if i != 0 {
		panic(badIndex(i, 1))
	}
	*v = V1[A]{which: 1, a: as[A](x)}
}

func (v V1[A]) Value() any     { return value(&v) }
func (v V1[A]) String() string { return format(&v) }

// V2 is a sum of two alternatives.
type V2[A, B any] struct {
	which int
	a     A
	b     B
}

func (V2[A, B]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()}
}

func (v V2[A, B]) Which() int { return v.which - 1 }

func (v *V2[A, B]) Alt(i int) any {
	if i != v.Which() {
		return nil
	}
	switch i {
	case 0:
		return &v.a
	case 1:
		return &v.b
	}
	return nil
}

func (v *V2[A, B]) Emplace(i int, x any) {
	if i < 0 || i >= 2 {
		panic(badIndex(i, 2))
	}
	*v = V2[A, B]{which: i + 1}
	switch i {
	case 0:
		v.a = as[A](x)
	case 1:
		v.b = as[B](x)
	}
}

func (v V2[A, B]) Value() any     { return value(&v) }
func (v V2[A, B]) String() string { return format(&v) }

// V3 is a sum of three alternatives.
type V3[A, B, C any] struct {
	which int
	a     A
	b     B
	c     C
}

func (V3[A, B, C]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C]()}
}

func (v V3[A, B, C]) Which() int { return v.which - 1 }

func (v *V3[A, B, C]) Alt(i int) any {
	if i != v.Which() {
		return nil
	}
	switch i {
	case 0:
		return &v.a
	case 1:
		return &v.b
	case 2:
		return &v.c
	}
	return nil
}

func (v *V3[A, B, C]) Emplace(i int, x any) {
	if i < 0 || i >= 3 {
		panic(badIndex(i, 3))
	}
	*v = V3[A, B, C]{which: i + 1}
	switch i {
	case 0:
		v.a = as[A](x)
	case 1:
		v.b = as[B](x)
	case 2:
		v.c = as[C](x)
	}
}

func (v V3[A, B, C]) Value() any     { return value(&v) }
func (v V3[A, B, C]) String() string { return format(&v) }

// V4 is a sum of four alternatives.
type V4[A, B, C, D any] struct {
	which int
	a     A
	b     B
	c     C
	d     D
}

func (V4[A, B, C, D]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C](), reflect.TypeFor[D]()}
}

func (v V4[A, B, C, D]) Which() int { return v.which - 1 }

func (v *V4[A, B, C, D]) Alt(i int) any {
	if i != v.Which() {
		return nil
	}
	switch i {
	case 0:
		return &v.a
	case 1:
		return &v.b
	case 2:
		return &v.c
	case 3:
		return &v.d
	}
	return nil
}

func (v *V4[A, B, C, D]) Emplace(i int, x any) {
	if i < 0 || i >= 4 {
		panic(badIndex(i, 4))
	}
	*v = V4[A, B, C, D]{which: i + 1}
	switch i {
	case 0:
		v.a = as[A](x)
	case 1:
		v.b = as[B](x)
	case 2:
		v.c = as[C](x)
	case 3:
		v.d = as[D](x)
	}
}

func (v V4[A, B, C, D]) Value() any     { return value(&v) }
func (v V4[A, B, C, D]) String() string { return format(&v) }

// V5 is a sum of five alternatives.
type V5[A, B, C, D, E any] struct {
	which int
	a     A
	b     B
	c     C
	d     D
	e     E
}

func (V5[A, B, C, D, E]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C](), reflect.TypeFor[D](), reflect.TypeFor[E]()}
}

func (v V5[A, B, C, D, E]) Which() int { return v.which - 1 }

func (v *V5[A, B, C, D, E]) Alt(i int) any {
	if i != v.Which() {
		return nil
	}
	switch i {
	case 0:
		return &v.a
	case 1:
		return &v.b
	case 2:
		return &v.c
	case 3:
		return &v.d
	case 4:
		return &v.e
	}
	return nil
}

func (v *V5[A, B, C, D, E]) Emplace(i int, x any) {
	if i < 0 || i >= 5 {
		panic(badIndex(i, 5))
	}
	*v = V5[A, B, C, D, E]{which: i + 1}
	switch i {
	case 0:
		v.a = as[A](x)
	case 1:
		v.b = as[B](x)
	case 2:
		v.c = as[C](x)
	case 3:
		v.d = as[D](x)
	case 4:
		v.e = as[E](x)
	}
}

func (v V5[A, B, C, D, E]) Value() any     { return value(&v) }
func (v V5[A, B, C, D, E]) String() string { return format(&v) }

// Get returns a pointer to alternative i of the sum p points to, typed as T,
// or nil when i is not active or is not a T.
func Get[T any](p interface{ Alt(int) any }, i int) *T {
	t, _ := p.Alt(i).(*T)
	return t
}

type storage interface {
	Which() int
	Alt(int) any
}

// value returns a copy of the active alternative, or nil.
func value(s storage) any {
	p := s.Alt(s.Which())
	if p == nil {
		return nil
	}
	return reflect.ValueOf(p).Elem().Interface()
}

// format renders "(which,value)".
func format(s storage) string {
	if s.Which() < 0 {
		return "()"
	}
	return fmt.Sprintf("(%d,%v)", s.Which(), value(s))
}

func as[T any](x any) T {
	if x == nil {
		var zero T
		return zero
	}
	return x.(T)
}

func badIndex(i, n int) string {
	return fmt.Sprintf("variant: alternative %d out of range [0,%d)", i, n)
}
