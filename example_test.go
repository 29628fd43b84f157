package xtl_test

import (
	"fmt"

	xtl "github.com/reoring/xtl"
	"github.com/reoring/xtl/variant"
)

type Animal struct{ Name string }
type Dog struct {
	Animal
	Breed string
}
type Cat struct{ Animal }

func ExampleDown() {
	d := xtl.New[Dog]()
	a := xtl.Up[Animal](xtl.RefOf(d))
	if back, ok := xtl.Down[Dog](a); ok {
		back.Ptr().Breed = "beagle"
	}
	_, isCat := xtl.Down[Cat](a)
	fmt.Println(d.Breed, isCat)
	// Output: beagle false
}

func ExampleCast_sum() {
	type Shape = variant.V2[float64, int]
	s := xtl.Cast[Shape](42)
	if p, ok := xtl.TryCast[*int](&s); ok {
		*p++
	}
	fmt.Println(s)
	// Output: (1,43)
}

func ExampleRelate() {
	_, err := xtl.Relate[*D, *A]()
	if e, ok := xtl.AsError(err); ok {
		fmt.Println(e.Code, len(e.Paths))
	}
	fmt.Println(xtl.IsSubtype[*D, *A]())
	// Output:
	// ambiguous_base 2
	// true
}
