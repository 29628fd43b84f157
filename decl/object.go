package decl

import (
	"encoding/binary"
	"fmt"

	xtl "github.com/reoring/xtl"
	"github.com/reoring/xtl/internal/lattice"
)

// Object is a simulated complete object: raw memory laid out as its Layout
// says, with every vbptr slot holding the index of its table in VBTabs.
type Object struct {
	Type   *Type
	Layout *Layout
	Mem    []byte
	VBTabs []map[string]int
}

// New allocates a complete object of the class name and initializes its vbptr
// slots.
func (u *Universe) New(name string) (*Object, error) {
	l, err := u.Layout(name)
	if err != nil {
		return nil, err
	}
	t, _ := u.Lookup(name)
	o := &Object{Type: t, Layout: l, Mem: make([]byte, l.Size)}
	for i, vt := range l.VBTables {
		tab := make(map[string]int, len(vt.Entries))
		for _, e := range vt.Entries {
			tab[e.Base] = e.Delta
		}
		o.VBTabs = append(o.VBTabs, tab)
		binary.LittleEndian.PutUint64(o.Mem[vt.At:], uint64(i))
	}
	return o, nil
}

// Ptr returns a pointer to the complete object.
func (o *Object) Ptr() Pointer { return Pointer{Obj: o, Static: o.Type} }

// Pointer is an address inside a simulated object, seen through a static
// class type. The zero Pointer is nil.
type Pointer struct {
	Obj    *Object
	Static *Type
	Off    int
}

// IsNil reports whether p points nowhere.
func (p Pointer) IsNil() bool { return p.Obj == nil }

func (p Pointer) String() string {
	if p.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%s*(%s+%d)", p.Static.Name, p.Obj.Type.Name, p.Off)
}

// vbase follows the vbptr of the subobject at off to the virtual base name.
func (o *Object) vbase(off int, name string) (int, bool) {
	if off < 0 || off+PtrSize > len(o.Mem) {
		return 0, false
	}
	i := binary.LittleEndian.Uint64(o.Mem[off:])
	if i >= uint64(len(o.VBTabs)) {
		return 0, false
	}
	d, ok := o.VBTabs[i][name]
	return off + d, ok
}

// Upcast converts p to a pointer to its base class to. Non-virtual hops add
// the static base offset; virtual hops go through the vbptr stored in the
// object, as compiled code would. Nil stays nil.
func (u *Universe) Upcast(p Pointer, to string) (Pointer, error) {
	ts, err := u.must(to)
	if err != nil {
		return Pointer{}, err
	}
	target := ts[0]
	if target.Kind != KindClass {
		return Pointer{}, &xtl.Error{Code: xtl.CodeNotSubtype, From: p.Static.Name + "*", To: target.Name}
	}
	if p.IsNil() {
		return Pointer{Static: target}, nil
	}
	pf, err := u.prove(p.Static, target)
	if err != nil {
		return Pointer{}, err
	}
	off, cur := p.Off, p.Static
	for _, idx := range pf.Path {
		b := cur.bases[idx]
		if b.Virtual {
			next, ok := p.Obj.vbase(off, b.Type.Name)
			if !ok {
				return Pointer{}, &xtl.Error{Code: xtl.CodeUnwiredBase, From: cur.Name, To: b.Type.Name}
			}
			off = next
		} else {
			off += cur.nv.bases[idx]
		}
		cur = b.Type
	}
	return Pointer{Obj: p.Obj, Static: target, Off: off}, nil
}

// Downcast recovers a pointer to the class to from p, following the rules of
// checked downcasts over the complete object: the unique to-subobject that
// contains *p, or else the unique to-subobject of the whole object
// (cross-cast). Absence is reported with false.
func (u *Universe) Downcast(p Pointer, to string) (Pointer, bool) {
	target, ok := u.Lookup(to)
	if !ok || target.Kind != KindClass || p.IsNil() {
		return Pointer{}, false
	}
	src, ok := p.Obj.Layout.slotAt(p.Static.Name, p.Off)
	if !ok {
		return Pointer{}, false
	}
	path, ok := lattice.Downcast[*Type](typeGraph{}, p.Obj.Type, src.Path, target)
	if !ok {
		return Pointer{}, false
	}
	return Pointer{Obj: p.Obj, Static: target, Off: p.Obj.Layout.offset(p.Obj.Type, path)}, true
}
