package xtl

import "reflect"

type Ref[T any] struct{ p *T }

type Relation[S, T any] struct{}

func (Relation[S, T]) Cast(s S) T { var t T; return t }

type Relator interface {
	Admits(s reflect.Type, isSubtype func(s, t reflect.Type) bool) bool
}

func Cast[T, S any](s S) T { var t T; return t }

func Up[T, S any](r Ref[S]) Ref[T] { return Ref[T]{} }

func Relate[S, T any]() (Relation[S, T], error) { return Relation[S, T]{}, nil }

func MustRelate[S, T any]() Relation[S, T] { return Relation[S, T]{} }
