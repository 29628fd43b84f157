package xtl

import (
	"fmt"
	"reflect"

	"github.com/reoring/xtl/internal/lattice"
)

// Category classifies a Go type for relation routing.
type Category = lattice.Category

const (
	Identity  = lattice.Identity  // Related only to itself: basic types, interfaces, funcs, ...
	Hierarchy = lattice.Hierarchy // Structs; exported embedded fields are their bases.
	Pointer   = lattice.Pointer   // Pointers to Hierarchy types.
	View      = lattice.View      // Ref[T].
	SumType   = lattice.Sum       // Types whose pointer implements Storage.
	Custom    = lattice.Custom    // Types implementing Relator.
)

var (
	sumIface      = reflect.TypeFor[Sum]()
	storageIface  = reflect.TypeFor[Storage]()
	relatorIface  = reflect.TypeFor[Relator]()
	injectorIface = reflect.TypeFor[Injector]()
	viewerIface   = reflect.TypeFor[viewer]()
)

// Target carries a target type into a single dispatch entry point. It has no
// fields; it exists because a Go function cannot be selected by its result
// type alone.
type Target[T any] struct{}

// Type returns T.
func (Target[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

// Category returns the category of T.
func (tt Target[T]) Category() Category { return classify(tt.Type()) }

// CategoryOf returns the category of t.
func CategoryOf(t reflect.Type) Category { return classify(t) }

func classify(t reflect.Type) Category {
	switch {
	case t == nil || t.Kind() == reflect.Interface:
		return Identity
	case t.Kind() == reflect.Struct && t.Implements(viewerIface):
		return View
	case t.Kind() == reflect.Pointer:
		if classify(t.Elem()) == Hierarchy {
			return Pointer
		}
		return Identity
	case t.Implements(sumIface) && reflect.PointerTo(t).Implements(storageIface):
		return SumType
	case t.Implements(relatorIface):
		return Custom
	case t.Kind() == reflect.Struct:
		return Hierarchy
	}
	return Identity
}

// graph exposes Go types to the lattice algorithms. Bases are the exported
// embedded fields: a struct embed is a non-virtual base and a pointer embed is
// a virtual base, shared by every path once the object is wired (see Wire).
// Unexported embeds are private and take no part in the relation, nor do
// embeds tagged `xtl:"-"`.
type graph struct{}

var _ lattice.Graph[reflect.Type] = graph{}

func (graph) Same(a, b reflect.Type) bool { return a == b }

// Key is the identity of the type descriptor: types declared in different
// scopes may share a name.
func (graph) Key(t reflect.Type) string { return fmt.Sprintf("%p", t) }

func (graph) Name(t reflect.Type) string { return t.String() }

func (graph) Category(t reflect.Type) Category { return classify(t) }

func (graph) Bases(t reflect.Type) []lattice.Base[reflect.Type] {
	if classify(t) != Hierarchy {
		return nil
	}
	var out []lattice.Base[reflect.Type]
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !isBaseField(f) {
			continue
		}
		switch classify(f.Type) {
		case Hierarchy:
			out = append(out, lattice.Base[reflect.Type]{Type: f.Type, Index: i})
		case Pointer:
			out = append(out, lattice.Base[reflect.Type]{Type: f.Type.Elem(), Index: i, Virtual: true})
		}
	}
	return out
}

func (graph) Elem(t reflect.Type) (reflect.Type, bool) {
	switch classify(t) {
	case Pointer:
		return t.Elem(), true
	case View:
		return reflect.Zero(t).Interface().(viewer).static(), true
	}
	return nil, false
}

func (graph) Alternatives(t reflect.Type) []reflect.Type {
	if classify(t) != SumType {
		return nil
	}
	return reflect.Zero(t).Interface().(Sum).Alternatives()
}

func isBaseField(f reflect.StructField) bool {
	return f.Anonymous && f.IsExported() && f.Tag.Get("xtl") != "-"
}
