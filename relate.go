package xtl

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/reoring/xtl/internal/lattice"
)

// conv is a compiled upcast or injection from one static type to another.
type conv func(v reflect.Value) (reflect.Value, error)

// compile proves s <: t and turns the proof into a conversion.
func compile(s, t reflect.Type) (conv, error) {
	pf, err := relation.Prove(s, t)
	if err != nil {
		return nil, proofError(s, t, err)
	}
	return build(s, t, pf)
}

func proofError(s, t reflect.Type, err error) error {
	var pe *lattice.ProofError
	if !errors.As(err, &pe) {
		return err
	}
	code := CodeNotSubtype
	if pe.Reason == lattice.Ambiguous {
		code = CodeAmbiguousBase
	}
	return &Error{Code: code, From: s.String(), To: t.String(), Paths: pe.Paths}
}

// build dispatches on the category of the target recorded in the proof.
func build(s, t reflect.Type, pf *lattice.Proof) (conv, error) {
	switch pf.Category {
	case Identity:
		return func(v reflect.Value) (reflect.Value, error) { return v, nil }, nil
	case Hierarchy:
		return fieldConv(s, t, pf.Path), nil
	case Pointer:
		return pointerConv(s, t, pf.Path), nil
	case View:
		return viewConv(t, pf.Path), nil
	case SumType:
		alt := relation.Graph().Alternatives(t)[pf.Alt]
		inner, err := build(s, alt, pf.Inner)
		if err != nil {
			return nil, err
		}
		return sumConv(t, pf.Alt, inner), nil
	case Custom:
		if !reflect.PointerTo(t).Implements(injectorIface) {
			return nil, &Error{Code: CodeNotInjectable, From: s.String(), To: t.String()}
		}
		return customConv(t), nil
	}
	return nil, &Error{Code: CodeNotSubtype, From: s.String(), To: t.String()}
}

// fieldConv copies the base subobject out of a derived value.
func fieldConv(s, t reflect.Type, path []int) conv {
	virtual := crossesVirtual(s, path)
	return func(v reflect.Value) (reflect.Value, error) {
		f, err := subobject(v, path)
		if err != nil {
			return reflect.Value{}, unwired(s, t)
		}
		if virtual {
			if vt, bad := conflicting(v); bad {
				return reflect.Value{}, conflict(s, vt)
			}
		}
		return f, nil
	}
}

// pointerConv adjusts a derived pointer to the address of its base
// subobject, following shared virtual base pointers. Nil stays nil.
func pointerConv(s, t reflect.Type, path []int) conv {
	virtual := crossesVirtual(s.Elem(), path)
	return func(v reflect.Value) (reflect.Value, error) {
		if v.IsNil() {
			return reflect.Zero(t), nil
		}
		f, err := locate(v, path)
		if err != nil {
			return reflect.Value{}, unwired(s.Elem(), t.Elem())
		}
		if virtual {
			if vt, bad := conflicting(v.Elem()); bad {
				return reflect.Value{}, conflict(s.Elem(), vt)
			}
		}
		return f.Addr(), nil
	}
}

// crossesVirtual reports whether path from s goes through a virtual base.
func crossesVirtual(s reflect.Type, path []int) bool {
	so, ok := lattice.Resolve[reflect.Type](graph{}, s, path)
	return ok && so.Virtual
}

// viewConv extends the subobject path of a view; the complete object is kept.
func viewConv(t reflect.Type, path []int) conv {
	return func(v reflect.Value) (reflect.Value, error) {
		top, from := v.Interface().(viewer).object()
		if !top.IsValid() {
			return reflect.Zero(t), nil
		}
		to := append(slices.Clip(from), path...)
		return reflect.ValueOf(bindView(t, view{top: top, path: to})), nil
	}
}

// sumConv constructs the sum holding the value converted to the exact
// alternative the proof matched.
func sumConv(t reflect.Type, alt int, inner conv) conv {
	return func(v reflect.Value) (reflect.Value, error) {
		w, err := inner(v)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(t)
		out.Interface().(Storage).Emplace(alt, w.Interface())
		return out.Elem(), nil
	}
}

func customConv(t reflect.Type) conv {
	return func(v reflect.Value) (reflect.Value, error) {
		out := reflect.New(t)
		out.Interface().(Injector).Inject(v.Interface())
		return out.Elem(), nil
	}
}

func unwired(s, t reflect.Type) error {
	return &Error{Code: CodeUnwiredBase, From: s.String(), To: t.String()}
}

// Relation is the proof that S <: T, compiled into a conversion. Obtain one
// with Relate or MustRelate; the zero Relation proves nothing and makes Cast
// compute the proof on every call.
//
// Declaring relations as package variables moves every failure to program
// initialization:
//
//	var asAnimal = xtl.MustRelate[*Dog, *Animal]()
type Relation[S, T any] struct {
	c conv
}

// Relate proves S <: T. It returns an *Error with code CodeNotSubtype when the
// relation does not hold, CodeAmbiguousBase when T is reached through more
// than one non-virtual path, and CodeNotInjectable for Relator targets that
// cannot be constructed.
func Relate[S, T any]() (Relation[S, T], error) {
	c, err := compile(reflect.TypeFor[S](), reflect.TypeFor[T]())
	if err != nil {
		return Relation[S, T]{}, err
	}
	return Relation[S, T]{c: c}, nil
}

// MustRelate is like Relate but panics if the relation cannot be proven.
func MustRelate[S, T any]() Relation[S, T] {
	r, err := Relate[S, T]()
	if err != nil {
		panic(err)
	}
	return r
}

// Cast views s as a T. It panics only when a virtual base of s is not wired
// or is wired to more than one instance.
func (r Relation[S, T]) Cast(s S) T {
	if r.c == nil {
		return Cast[T](s)
	}
	return run[T](r.c, s)
}

func (r Relation[S, T]) String() string {
	return fmt.Sprintf("%s <: %s", reflect.TypeFor[S](), reflect.TypeFor[T]())
}

func run[T, S any](c conv, s S) T {
	out, err := c(reflect.ValueOf(&s).Elem())
	if err != nil {
		panic(err)
	}
	var t T
	reflect.ValueOf(&t).Elem().Set(out)
	return t
}
