package xtl

import (
	"reflect"

	"github.com/reoring/xtl/internal/lattice"
)

// TryCast recovers a T from src, checking at run time. The result is present
// exactly when the object src designates holds a T:
//
//   - src may be a Ref[S] (the complete object is searched from the viewed
//     subobject, including cross-casts to sibling bases), a pointer to a
//     complete object, a sum type or a pointer to one (the active alternative
//     is searched; pointers and Refs held by the alternative are followed),
//     or any other value (searched as a complete object of its own; pointer
//     results then address a copy);
//   - T may be *U (the address of the located U, inside live storage when src
//     is a pointer or Ref), Ref[U] (a view of it) or U itself (a copy).
//
// TryCast never panics and never mutates src; absence is reported with the
// zero T and false.
func TryCast[T any](src any) (T, bool) {
	return tryCastTo(Target[T]{}, src)
}

type resultShape int

const (
	resultValue resultShape = iota
	resultPointer
	resultView
)

func tryCastTo[T any](to Target[T], src any) (T, bool) {
	var zero T
	want, shape := to.Type(), resultValue
	switch {
	case to.Category() == View:
		want, _ = (graph{}).Elem(want)
		shape = resultView
	case want.Kind() == reflect.Pointer:
		want = want.Elem()
		shape = resultPointer
	}
	found, ok := extract(reflect.ValueOf(src), want)
	if !ok {
		return zero, false
	}
	obj, err := found.object()
	if err != nil {
		return zero, false
	}
	var out reflect.Value
	switch shape {
	case resultView:
		out = reflect.ValueOf(bindView(to.Type(), found))
	case resultPointer:
		out = obj.Addr()
	default:
		out = obj
	}
	var t T
	reflect.ValueOf(&t).Elem().Set(out)
	return t, true
}

// Down is the checked downcast of views: it recovers a Ref[T] from any view of
// an object that has a T, whether T derives from S or is a sibling base.
func Down[T, S any](r Ref[S]) (Ref[T], bool) {
	return TryCast[Ref[T]](r)
}

// extract locates a want-typed object starting from a source value.
func extract(v reflect.Value, want reflect.Type) (view, bool) {
	if !v.IsValid() {
		return view{}, false
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return view{}, false
		}
		v = v.Elem()
	}
	t := v.Type()
	switch {
	case t.Kind() == reflect.Struct && t.Implements(viewerIface):
		top, path := v.Interface().(viewer).object()
		if !top.IsValid() {
			return view{}, false
		}
		return downcast(view{top: top, path: path}, want)
	case t.Kind() == reflect.Pointer:
		if v.IsNil() {
			return view{}, false
		}
		return extractAt(v, want)
	}
	c := reflect.New(t)
	c.Elem().Set(v)
	return extractAt(c, want)
}

// extractAt locates a want-typed object inside the object p points to. p is
// the complete object unless it is a sum, a Ref or a pointer that leads
// further.
func extractAt(p reflect.Value, want reflect.Type) (view, bool) {
	t := p.Type().Elem()
	if t == want {
		return view{top: p}, true
	}
	switch classify(t) {
	case SumType:
		return applyVisitor(p.Interface().(Storage), castVisitor{want: want})
	case View:
		return extract(p.Elem(), want)
	}
	if found, ok := downcast(view{top: p}, want); ok {
		return found, true
	}
	if t.Kind() == reflect.Pointer && !p.Elem().IsNil() {
		return extractAt(p.Elem(), want)
	}
	return view{}, false
}

// downcast runs the checked downcast inside the complete object of v. An
// object whose virtual base embeds disagree on the instance has no reliable
// subobject identity, so nothing is found in it.
func downcast(v view, want reflect.Type) (view, bool) {
	complete := v.top.Type().Elem()
	path, ok := lattice.Downcast[reflect.Type](graph{}, complete, v.path, want)
	if !ok {
		return view{}, false
	}
	if _, bad := conflicting(v.top.Elem()); bad {
		return view{}, false
	}
	found := view{top: v.top, path: path}
	if _, err := found.object(); err != nil {
		// the located subobject lies behind an unwired virtual base
		return view{}, false
	}
	return found, true
}
