package decl

import (
	"fmt"

	xtl "github.com/reoring/xtl"
	"github.com/reoring/xtl/internal/lattice"
)

// Value is a value of a declared type. Scalars carry Data, classes and
// pointers carry Ptr (a class value is its subobject), and sums carry the
// active alternative in Inner.
type Value struct {
	Type  *Type
	Data  any
	Ptr   Pointer
	Which int
	Inner *Value
}

func (v Value) String() string {
	switch v.Type.Kind {
	case KindSum:
		if v.Inner == nil {
			return v.Type.Name + "()"
		}
		return fmt.Sprintf("%s(%d,%s)", v.Type.Name, v.Which, v.Inner)
	case KindClass, KindPointer:
		return v.Ptr.String()
	}
	return fmt.Sprintf("%s(%v)", v.Type.Name, v.Data)
}

// Scalar returns a value of the builtin or pointer-to-builtin type name.
func (u *Universe) Scalar(name string, data any) (Value, error) {
	ts, err := u.must(name)
	if err != nil {
		return Value{}, err
	}
	return Value{Type: ts[0], Data: data}, nil
}

// PtrValue wraps p as a value of type Static* (or, with class set, of the
// class itself).
func (u *Universe) PtrValue(p Pointer, class bool) Value {
	if class {
		return Value{Type: p.Static, Ptr: p}
	}
	t, _ := u.Lookup(p.Static.Name + "*")
	return Value{Type: t, Ptr: p}
}

// Inject converts v to its supertype to. For a sum target the value is first
// converted to the exact alternative the relation matched, then wrapped; the
// choice is the first alternative v's type is a subtype of.
func (u *Universe) Inject(v Value, to string) (Value, error) {
	ts, err := u.must(to)
	if err != nil {
		return Value{}, err
	}
	pf, err := u.prove(v.Type, ts[0])
	if err != nil {
		return Value{}, err
	}
	return u.inject(v, ts[0], pf)
}

func (u *Universe) inject(v Value, t *Type, pf *lattice.Proof) (Value, error) {
	switch pf.Category {
	case lattice.Identity:
		return v, nil
	case lattice.Hierarchy, lattice.Pointer:
		target := t
		if t.Kind == KindPointer {
			target = t.elem
		}
		p, err := u.Upcast(v.Ptr, target.Name)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Ptr: p}, nil
	case lattice.Sum:
		alt := t.alts[pf.Alt]
		inner, err := u.inject(v, alt, pf.Inner)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Which: pf.Alt, Inner: &inner}, nil
	}
	return Value{}, &xtl.Error{Code: xtl.CodeNotSubtype, From: v.Type.Name, To: t.Name}
}

// Extract recovers a value of type want from v: through the active
// alternatives of sums, then by exact type for scalars and by checked
// downcast for classes and pointers to classes.
func (u *Universe) Extract(v Value, want string) (Value, bool) {
	t, ok := u.Lookup(want)
	if !ok {
		return Value{}, false
	}
	return u.extract(v, t)
}

func (u *Universe) extract(v Value, t *Type) (Value, bool) {
	if v.Type == nil {
		return Value{}, false
	}
	if v.Type.Name == t.Name {
		return v, true
	}
	switch v.Type.Kind {
	case KindSum:
		if v.Inner == nil {
			return Value{}, false
		}
		return u.extract(*v.Inner, t)
	case KindClass, KindPointer:
		target := t
		if t.Kind == KindPointer {
			target = t.elem
		}
		if v.Ptr.IsNil() {
			return Value{}, false
		}
		p, ok := u.Downcast(v.Ptr, target.Name)
		if !ok {
			return Value{}, false
		}
		return Value{Type: t, Ptr: p}, true
	}
	return Value{}, false
}
