// Package lattice holds the subtype relation and subobject algorithms shared
// by every type representation the module understands: Go types seen through
// reflect, static types seen by the vet analyzer, and declared universes.
//
// This package is internal and not part of the public API.
package lattice

// Category classifies a type for relation routing.
type Category int

const (
	Identity  Category = iota // Only related to itself.
	Hierarchy                 // Participates in base/derived relations.
	Pointer                   // Pointer to a Hierarchy type.
	View                      // Checked view (Ref) of a Hierarchy type.
	Sum                       // Closed set of alternatives.
	Custom                    // Target decides membership itself.
)

func (c Category) String() string {
	switch c {
	case Identity:
		return "identity"
	case Hierarchy:
		return "hierarchy"
	case Pointer:
		return "pointer"
	case View:
		return "view"
	case Sum:
		return "sum"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

// Base is a direct base edge of a Hierarchy type.
type Base[N any] struct {
	Type    N
	Index   int  // Position used to address the base subobject (field index, ordinal).
	Virtual bool // Shared by every path of the complete object.
}

// Graph exposes the structure the algorithms need from a type representation.
// Implementations must be immutable.
type Graph[N any] interface {
	Same(a, b N) bool
	// Key is a stable identity usable as a map key.
	Key(t N) string
	// Name is a human readable name for diagnostics.
	Name(t N) string
	Category(t N) Category
	Bases(t N) []Base[N]
	// Elem returns the pointee of Pointer and the viewed type of View.
	Elem(t N) (N, bool)
	Alternatives(t N) []N
}
