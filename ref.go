package xtl

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/reoring/xtl/internal/lattice"
)

// view addresses a subobject: top points to the complete object and path is
// the embedded-field route from it.
type view struct {
	top  reflect.Value
	path []int
}

func (v view) object() (reflect.Value, error) { return locate(v.top, v.path) }

var errNilBase = errors.New("xtl: nil virtual base")

// locate walks path from the object top points to. Walking through a nil
// virtual base pointer is an error.
func locate(top reflect.Value, path []int) (reflect.Value, error) {
	return subobject(top.Elem(), path)
}

// subobject walks path from obj. Embedded pointers are followed, the last
// one included, so the result is always the base struct itself.
func subobject(obj reflect.Value, path []int) (reflect.Value, error) {
	if len(path) == 0 {
		return obj, nil
	}
	f, err := obj.FieldByIndexErr(path)
	if err != nil {
		return reflect.Value{}, err
	}
	if f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return reflect.Value{}, errNilBase
		}
		f = f.Elem()
	}
	return f, nil
}

// conflicting reports a virtual base of obj that is reached as more than one
// instance. Routes through unwired bases are ignored.
func conflicting(obj reflect.Value) (reflect.Type, bool) {
	seen := map[string]uintptr{}
	for _, so := range lattice.Subobjects[reflect.Type](graph{}, obj.Type()) {
		if so.Key.VBase == "" || so.Key.Path != "" {
			continue
		}
		f, err := subobject(obj, so.Path)
		if err != nil {
			continue
		}
		addr := f.Addr().Pointer()
		if prev, ok := seen[so.Key.VBase]; ok && prev != addr {
			return so.Type, true
		}
		seen[so.Key.VBase] = addr
	}
	return nil, false
}

func conflict(complete, base reflect.Type) error {
	return &Error{Code: CodeConflictBase, From: complete.String(), To: base.String()}
}

// viewer is implemented by every Ref instantiation.
type viewer interface {
	object() (top reflect.Value, path []int)
	static() reflect.Type
	bind(v view) any
}

func bindView(t reflect.Type, v view) any {
	return reflect.Zero(t).Interface().(viewer).bind(v)
}

// Ref is a checked pointer to a T subobject. Unlike *T it remembers the
// complete object it belongs to, which is what makes downcasts and
// cross-casts possible: Go offers no way back from a pointer to an embedded
// field to the struct that embeds it.
//
// The zero Ref is nil. Refs are values; copying one copies the view, not the
// object.
type Ref[T any] struct {
	top  reflect.Value
	path []int
}

// RefOf returns a view of the complete object p points to. The dynamic type of
// the view is T itself.
func RefOf[T any](p *T) Ref[T] {
	if p == nil {
		return Ref[T]{}
	}
	return Ref[T]{top: reflect.ValueOf(p)}
}

// IsNil reports whether r views nothing.
func (r Ref[T]) IsNil() bool { return !r.top.IsValid() }

// Ptr returns the address of the viewed subobject, or nil when r is nil or the
// subobject lies behind an unwired virtual base.
func (r Ref[T]) Ptr() *T {
	if r.IsNil() {
		return nil
	}
	obj, err := locate(r.top, r.path)
	if err != nil {
		return nil
	}
	return obj.Addr().Interface().(*T)
}

// Dynamic returns the type of the complete object, or nil for a nil Ref.
func (r Ref[T]) Dynamic() reflect.Type {
	if r.IsNil() {
		return nil
	}
	return r.top.Type().Elem()
}

// Complete returns the pointer to the complete object, or nil.
func (r Ref[T]) Complete() any {
	if r.IsNil() {
		return nil
	}
	return r.top.Interface()
}

// String renders the route, e.g. "Ref[pkg.A](pkg.Z -> pkg.X -> virtual pkg.A)".
func (r Ref[T]) String() string {
	name := reflect.TypeFor[T]().String()
	if r.IsNil() {
		return "Ref[" + name + "](nil)"
	}
	route := lattice.Describe[reflect.Type](graph{}, r.Dynamic(), r.path)
	return fmt.Sprintf("Ref[%s](%s)", name, route)
}

func (r Ref[T]) object() (reflect.Value, []int) { return r.top, r.path }

func (Ref[T]) static() reflect.Type { return reflect.TypeFor[T]() }

func (Ref[T]) bind(v view) any { return Ref[T]{top: v.top, path: v.path} }

// New allocates a T and wires its virtual bases so that every pointer embed of
// the same base type refers to one shared instance, the way a complete object
// owns a single copy of each virtual base.
func New[T any]() *T {
	p := new(T)
	if err := Wire(p); err != nil {
		// a fresh object has no instances that could conflict
		panic(err)
	}
	return p
}

// Wire completes the virtual bases of the object p points to. Nil pointer
// embeds receive the shared instance of their base type, allocating it only
// when the object holds none; an instance already present on any path becomes
// the shared one. Two distinct instances of one virtual base are reported as
// CodeConflictBase and leave the object untouched.
func Wire(p any) error {
	v := reflect.ValueOf(p)
	if v.Kind() != reflect.Pointer || v.IsNil() || classify(v.Type().Elem()) != Hierarchy {
		return nil
	}
	w := wirer{complete: v.Type().Elem(), shared: map[reflect.Type]reflect.Value{}}
	if err := w.collect(v.Elem()); err != nil {
		return err
	}
	w.fill(v.Elem(), map[uintptr]bool{})
	return nil
}

type wirer struct {
	complete reflect.Type
	shared   map[reflect.Type]reflect.Value
}

// collect records the virtual base instances obj already holds.
func (w *wirer) collect(obj reflect.Value) error {
	for _, b := range (graph{}).Bases(obj.Type()) {
		f := obj.Field(b.Index)
		if !b.Virtual {
			if err := w.collect(f); err != nil {
				return err
			}
			continue
		}
		if f.IsNil() {
			continue
		}
		inst, seen := w.shared[b.Type]
		if seen {
			if inst.Pointer() != f.Pointer() {
				return conflict(w.complete, b.Type)
			}
			continue
		}
		w.shared[b.Type] = f
		if err := w.collect(f.Elem()); err != nil {
			return err
		}
	}
	return nil
}

// fill points every nil virtual base embed at the shared instance.
func (w *wirer) fill(obj reflect.Value, done map[uintptr]bool) {
	for _, b := range (graph{}).Bases(obj.Type()) {
		f := obj.Field(b.Index)
		if !b.Virtual {
			w.fill(f, done)
			continue
		}
		if f.IsNil() {
			inst, ok := w.shared[b.Type]
			if !ok {
				inst = reflect.New(b.Type)
				w.shared[b.Type] = inst
			}
			f.Set(inst)
		}
		if !done[f.Pointer()] {
			done[f.Pointer()] = true
			w.fill(f.Elem(), done)
		}
	}
}
