package xtl

import (
	"reflect"

	"github.com/reoring/xtl/internal/lattice"
)

// relation is immutable after package initialization.
var relation = lattice.NewRelation[reflect.Type](graph{}, map[Category]lattice.Rule[reflect.Type]{
	Custom: customRule,
})

func customRule(r *lattice.Relation[reflect.Type], s, t reflect.Type) bool {
	return reflect.Zero(t).Interface().(Relator).Admits(s, r.Holds)
}

// IsSubtype reports whether every S can be viewed as a T:
//
//   - a type is a subtype of itself;
//   - a struct is a subtype of each of its exported embedded structs, through
//     any number of levels and through value or pointer embeds alike;
//   - *S is a subtype of *T, and Ref[S] of Ref[T], when S is a subtype of the
//     struct T;
//   - S is a subtype of a sum type when it is a subtype of one of its
//     alternatives (never of a sum without alternatives);
//   - a Relator target decides for itself.
//
// IsSubtype says nothing about ambiguity; Relate does.
func IsSubtype[S, T any]() bool {
	return relation.Holds(reflect.TypeFor[S](), reflect.TypeFor[T]())
}

// IsSubtypeOf is IsSubtype for types known only at run time.
func IsSubtypeOf(s, t reflect.Type) bool {
	if s == nil || t == nil {
		return s == t
	}
	return relation.Holds(s, t)
}
