package xtl

import "reflect"

// Sum is implemented by closed sum types (tagged unions). Alternatives must
// work on the zero value: it is how the relation enumerates the members of a
// sum type without holding one.
type Sum interface {
	Alternatives() []reflect.Type
	// Which returns the index of the active alternative, or -1 when none is.
	Which() int
}

// Storage is implemented by pointers to sum types. A type takes part in the
// relation as a sum only when its pointer implements Storage.
type Storage interface {
	Sum
	// Alt returns a pointer to the live storage of alternative i, or nil when
	// i is not the active alternative.
	Alt(i int) any
	// Emplace makes alternative i active, holding v. v always has the exact
	// type Alternatives()[i].
	Emplace(i int, v any)
}

// Relator lets a target type define its own membership rule, extending the
// relation with a new category without touching the existing rules. Admits
// is called on the zero value of the target; isSubtype is the relation itself
// for recursive questions.
type Relator interface {
	Admits(s reflect.Type, isSubtype func(s, t reflect.Type) bool) bool
}

// Injector is implemented by pointers to Relator types that can be
// constructed from the values they admit.
type Injector interface {
	Inject(v any)
}

// castVisitor locates a want-typed object inside the active alternative of a
// sum. It is handed the live storage of the alternative, whose type is the
// declared alternative type, so extraction from a sum reduces to the
// hierarchy algorithm on the alternative.
type castVisitor struct {
	want reflect.Type
}

func (cv castVisitor) visit(slot reflect.Value) (view, bool) {
	return extractAt(slot, cv.want)
}

// applyVisitor dispatches vis over the active alternative of s. A container
// that reports no active alternative, or whose storage does not match the
// declared alternative type, yields nothing.
func applyVisitor(s Storage, vis castVisitor) (view, bool) {
	i := s.Which()
	alts := s.Alternatives()
	if i < 0 || i >= len(alts) {
		return view{}, false
	}
	p := s.Alt(i)
	if p == nil {
		return view{}, false
	}
	slot := reflect.ValueOf(p)
	if slot.Kind() != reflect.Pointer || slot.IsNil() || slot.Type().Elem() != alts[i] {
		return view{}, false
	}
	return vis.visit(slot)
}
