package xtl_test

import (
	"reflect"

	"github.com/reoring/xtl/variant"
)

// B, C <: A; D <: C, B holds two A subobjects.
type A struct{ N int }
type B struct {
	A
	Bv int
}
type C struct {
	A
	Cv float64
}
type D struct {
	C
	B
	Dv float32
}

// X, Y <: virtual A; Z <: X, Y holds one shared A once wired.
type X struct {
	*A
	Xv byte
}
type Y struct {
	*A
	Yv int16
}
type Z struct {
	X
	Y
	Zv byte
}

// Tagged embeds A without deriving from it.
type Tagged struct {
	A `xtl:"-"`
}

// V mirrors a sum of double, float, int and unsigned*.
type V = variant.V4[float64, float32, int, *uint]

// Number admits every integer and float type and stores it as a float64.
type Number struct{ F float64 }

func (Number) Admits(s reflect.Type, _ func(s, t reflect.Type) bool) bool {
	switch s.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (n *Number) Inject(v any) {
	n.F = reflect.ValueOf(v).Convert(reflect.TypeFor[float64]()).Float()
}

// Opaque admits anything but cannot be constructed.
type Opaque struct{}

func (Opaque) Admits(reflect.Type, func(s, t reflect.Type) bool) bool { return true }
