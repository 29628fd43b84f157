package xtl

import "reflect"

// Cast views s as a T, where T is a supertype of S:
//
//   - struct to embedded struct copies the base part (a := Cast[Animal](dog));
//   - *S to *T returns the address of the T subobject, adjusted through
//     embedded fields and shared virtual bases; nil stays nil;
//   - Ref[S] to Ref[T] narrows the view, keeping the complete object;
//   - to a sum type, constructs the sum holding s converted to the first
//     alternative S is a subtype of;
//   - to a Relator target, constructs it through its Injector.
//
// Cast panics with an *Error when S <: T cannot be proven. Run the castcheck
// analyzer (cmd/xtlvet) to report such calls before the program runs, or use
// MustRelate in a package variable to fail at initialization.
func Cast[T, S any](s S) T {
	return castTo(Target[T]{}, s)
}

func castTo[T, S any](to Target[T], s S) T {
	c, err := compile(reflect.TypeFor[S](), to.Type())
	if err != nil {
		panic(err)
	}
	return run[T](c, s)
}

// Up narrows a view to one of its bases. It is Cast for views with the element
// types spelled out.
func Up[T, S any](r Ref[S]) Ref[T] {
	return Cast[Ref[T]](r)
}
