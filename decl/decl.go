// Package decl models a declared type universe: classes with (virtual) bases,
// sums of alternatives, builtin scalars and pointers, loaded from YAML or JSON.
//
// Classes get a concrete byte layout. Non-virtual bases are embedded at fixed
// offsets; every virtual base is stored once at the end of the complete object
// and reached through a vbptr slot that indexes a table of displacements. The
// simulated objects built by New carry that layout, and Upcast and Downcast
// adjust addresses through it instead of through Go's own field layout.
package decl

import "strings"

// Kind is the shape of a declared type.
type Kind int

const (
	KindBuiltin Kind = iota // Scalar; only related to itself.
	KindClass               // Has bases and a byte layout.
	KindSum                 // Closed set of alternatives.
	KindPointer             // T* for any declared T.
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindClass:
		return "class"
	case KindSum:
		return "sum"
	case KindPointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// PtrSize is the size and alignment of pointers and vbptr slots.
const PtrSize = 8

// FormatVersion is the version of the universe file format understood by this
// package. Files state the versions they accept in their "xtl" key.
const FormatVersion = "1.0.0"

// File is one universe document.
type File struct {
	// Version is a semver constraint on FormatVersion, e.g. ">= 1.0, < 2.0".
	Version string `yaml:"xtl,omitempty" json:"xtl,omitempty"`
	Types   []Decl `yaml:"types" json:"types"`
}

// Decl declares a class or a sum.
type Decl struct {
	Name         string     `yaml:"name" json:"name"`
	Kind         string     `yaml:"kind" json:"kind"` // "class" or "sum"
	Size         int        `yaml:"size,omitempty" json:"size,omitempty"`
	Align        int        `yaml:"align,omitempty" json:"align,omitempty"`
	Bases        []BaseDecl `yaml:"bases,omitempty" json:"bases,omitempty"`
	Alternatives []string   `yaml:"alternatives,omitempty" json:"alternatives,omitempty"`
}

// BaseDecl names a direct base of a class.
type BaseDecl struct {
	Name    string `yaml:"name" json:"name"`
	Virtual bool   `yaml:"virtual,omitempty" json:"virtual,omitempty"`
}

// Base is a resolved direct base.
type Base struct {
	Type    *Type
	Virtual bool
}

// Type is a resolved type of a Universe. Types are immutable once built.
type Type struct {
	ID    int // Dense ordinal; -1 for pointer types.
	Name  string
	Kind  Kind
	Size  int // Own size: fields of a class excluding its bases.
	Align int

	bases []Base
	alts  []*Type
	elem  *Type
	nv    nvLayout
}

// Bases returns the direct bases in declaration order.
func (t *Type) Bases() []Base { return t.bases }

// Alternatives returns the alternatives of a sum.
func (t *Type) Alternatives() []*Type { return t.alts }

// Elem returns the pointee of a pointer type.
func (t *Type) Elem() *Type { return t.elem }

func (t *Type) String() string { return t.Name }

// builtins are the scalar types every universe starts with.
var builtins = []struct {
	name string
	size int
}{
	{"bool", 1},
	{"char", 1},
	{"short", 2},
	{"int", 4},
	{"unsigned", 4},
	{"long", 8},
	{"float", 4},
	{"double", 8},
}

// pointee splits "T*" into "T".
func pointee(name string) (string, bool) {
	if !strings.HasSuffix(name, "*") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimSuffix(name, "*")), true
}
